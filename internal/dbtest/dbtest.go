// Package dbtest opens throwaway sqlite databases carrying the application schema.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenEmpty returns a private in-memory database with no tables.
func OpenEmpty(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return conn
}

// Open returns a private in-memory database with every table migrated.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	conn := OpenEmpty(t)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Topic{}, &models.Request{}, &models.SchemaUpgrade{}))
	return conn
}

// Client wraps conn in the shared transaction helper.
func Client(conn *gorm.DB) *db.Client {
	return db.NewFromGorm(conn)
}

func SeedUser(t *testing.T, conn *gorm.DB, username string, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func SeedTopic(t *testing.T, conn *gorm.DB, title string) *models.Topic {
	t.Helper()
	topic := &models.Topic{Title: title, Color: models.DefaultTopicColor}
	require.NoError(t, conn.Create(topic).Error)
	return topic
}

// RequestSeed describes a row inserted directly, bypassing numbering.
type RequestSeed struct {
	UserID      *uint64
	TopicID     uint64
	Status      enums.RequestStatus
	AdminReadAt *time.Time
	RegNumber   *string
	CreatedAt   time.Time
	Media       *string
	Comment     string
}

func SeedRequest(t *testing.T, conn *gorm.DB, seed RequestSeed) *models.Request {
	t.Helper()
	if seed.Status == "" {
		seed.Status = enums.RequestStatusUnderReview
	}
	if seed.CreatedAt.IsZero() {
		seed.CreatedAt = time.Now().UTC()
	}
	req := &models.Request{
		UserID:        seed.UserID,
		TopicID:       seed.TopicID,
		Status:        seed.Status,
		AdminReadAt:   seed.AdminReadAt,
		RegNumber:     seed.RegNumber,
		CreatedAt:     seed.CreatedAt,
		MediaFilename: seed.Media,
		Comment:       seed.Comment,
	}
	require.NoError(t, conn.Create(req).Error)
	return req
}

func Ptr[T any](v T) *T { return &v }
