package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Password     PasswordConfig
	Admin        AdminConfig
	Media        MediaConfig
	Reports      ReportsConfig
	Numbering    NumberingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NAZORAT_APP_ENV" required:"true"`
	Port         string `envconfig:"NAZORAT_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"NAZORAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NAZORAT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"NAZORAT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"NAZORAT_DB_DSN"`
	Driver     string `envconfig:"NAZORAT_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"NAZORAT_DB_SQLITE_PATH" default:"instance/site.db"`

	LegacyHost     string `envconfig:"NAZORAT_DB_HOST"`
	LegacyPort     int    `envconfig:"NAZORAT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NAZORAT_DB_USER"`
	LegacyPassword string `envconfig:"NAZORAT_DB_PASSWORD"`
	LegacyName     string `envconfig:"NAZORAT_DB_NAME"`
	LegacySSLMode  string `envconfig:"NAZORAT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NAZORAT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NAZORAT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NAZORAT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NAZORAT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NAZORAT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NAZORAT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NAZORAT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NAZORAT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NAZORAT_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig holds the credentials used when no administrator exists yet.
type AdminConfig struct {
	Username string `envconfig:"NAZORAT_ADMIN_USERNAME" default:"admin"`
	Password string `envconfig:"NAZORAT_ADMIN_PASSWORD" default:"admin123"`
}

type MediaConfig struct {
	UploadDir         string   `envconfig:"NAZORAT_MEDIA_UPLOAD_DIR" default:"static/uploads"`
	MaxUploadMB       int      `envconfig:"NAZORAT_MAX_UPLOAD_MB" default:"50"`
	AllowedExtensions []string `envconfig:"NAZORAT_MEDIA_ALLOWED_EXTENSIONS" default:"png,jpg,jpeg,gif,mp4,mov,avi,webm"`
}

type ReportsConfig struct {
	ImageWidthInches float64 `envconfig:"NAZORAT_REPORTS_IMAGE_WIDTH_INCHES" default:"5"`
	ImageMaxPixels   int     `envconfig:"NAZORAT_REPORTS_IMAGE_MAX_PIXELS" default:"1600"`
	JPEGQuality      int     `envconfig:"NAZORAT_REPORTS_JPEG_QUALITY" default:"90"`
	WorkerRowCap     int     `envconfig:"NAZORAT_REPORTS_WORKER_ROW_CAP" default:"50"`
	WordCommentLimit int     `envconfig:"NAZORAT_REPORTS_WORD_COMMENT_LIMIT" default:"50"`
	XLSXCommentLimit int     `envconfig:"NAZORAT_REPORTS_XLSX_COMMENT_LIMIT" default:"100"`
	TimeZone         string  `envconfig:"NAZORAT_REPORTS_TIME_ZONE" default:"Asia/Dushanbe"`
}

// Location resolves the configured report time zone, falling back to UTC.
func (r ReportsConfig) Location() *time.Location {
	if strings.TrimSpace(r.TimeZone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type NumberingConfig struct {
	MaxRetries int `envconfig:"NAZORAT_NUMBERING_MAX_RETRIES" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NAZORAT_USE_SQLITE" default:"false"`
	AutoUpgrade bool `envconfig:"NAZORAT_AUTO_UPGRADE" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		if db.DSN == "" {
			return fmt.Errorf("%s or %s is required for sqlite", EnvDBDSN, EnvDBSQLitePath)
		}
		return nil
	}

	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
