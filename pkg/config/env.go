package config

// EnvPrefix is handed to envconfig; every field carries an explicit name tag.
const EnvPrefix = "NAZORAT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "NAZORAT_APP_ENV"
	EnvPort         = "NAZORAT_APP_PORT"
	EnvLogLevel     = "NAZORAT_LOG_LEVEL"
	EnvDBDSN        = "NAZORAT_DB_DSN"
	EnvDBDriver     = "NAZORAT_DB_DRIVER"
	EnvDBSQLitePath = "NAZORAT_DB_SQLITE_PATH"
	EnvDBHost       = "NAZORAT_DB_HOST"
	EnvDBUser       = "NAZORAT_DB_USER"
	EnvDBName       = "NAZORAT_DB_NAME"
	EnvDBPassword   = "NAZORAT_DB_PASSWORD"
	EnvUseSQLite    = "NAZORAT_USE_SQLITE"
	EnvAdminUser    = "NAZORAT_ADMIN_USERNAME"
	EnvAdminPass    = "NAZORAT_ADMIN_PASSWORD"
	EnvUploadDir    = "NAZORAT_MEDIA_UPLOAD_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
