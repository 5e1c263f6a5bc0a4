package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/nazorat-backend/internal/dbtest"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Admin: config.AdminConfig{Username: "boss", Password: "admin123"},
		Media: config.MediaConfig{
			UploadDir:         t.TempDir(),
			MaxUploadMB:       1,
			AllowedExtensions: []string{"png"},
		},
		Reports:   config.ReportsConfig{TimeZone: "UTC", WorkerRowCap: 50},
		Numbering: config.NumberingConfig{MaxRetries: 3},
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, nil, nil, Options{})
	assert.Error(t, err)
}

func TestPrepareUpgradesAndBootstrapsOnce(t *testing.T) {
	conn := dbtest.OpenEmpty(t)
	clock := func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

	a, err := New(testConfig(t), nil, dbtest.Client(conn), Options{Clock: clock})
	require.NoError(t, err)

	ctx := context.Background()
	report, err := a.Prepare(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.Applied)

	var admin models.User
	require.NoError(t, conn.Where("username = ?", "boss").First(&admin).Error)
	assert.Equal(t, enums.UserRoleAdmin, admin.Role)

	report, err = a.Prepare(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Applied)

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestServicesShareOneRegistry(t *testing.T) {
	conn := dbtest.Open(t)
	a, err := New(testConfig(t), nil, dbtest.Client(conn), Options{})
	require.NoError(t, err)

	user := dbtest.SeedUser(t, conn, "karim", enums.UserRoleUser)
	topic := dbtest.SeedTopic(t, conn, "Роҳ")
	_, err = a.Requests.Create(context.Background(), requests.CreateInput{UserID: &user.ID, TopicID: topic.ID})
	require.NoError(t, err)

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["numbering_assigned_total"], "numbering metrics land on the app registry")
}
