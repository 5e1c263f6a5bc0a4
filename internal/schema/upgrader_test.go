package schema

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/dbtest"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUpgraderForTests(t *testing.T, conn *gorm.DB, opts ...Option) *Upgrader {
	t.Helper()
	opts = append(opts, WithMetrics(metrics.NewUpgradeMetrics(prometheus.NewRegistry())))
	u, err := NewUpgrader(dbtest.Client(conn), nil, opts...)
	require.NoError(t, err)
	return u
}

func stepNames() []string {
	var names []string
	for _, s := range Steps(time.Now) {
		names = append(names, s.Name)
	}
	return names
}

func TestRunOnEmptyStoreAppliesEveryStepOnce(t *testing.T) {
	conn := dbtest.OpenEmpty(t)
	u := newUpgraderForTests(t, conn)
	ctx := context.Background()

	report, err := u.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, stepNames(), report.Applied)
	assert.Empty(t, report.Skipped)
	assert.True(t, report.OK())

	migrator := conn.Migrator()
	for _, model := range []any{&models.User{}, &models.Topic{}, &models.Request{}} {
		assert.True(t, migrator.HasTable(model))
	}
	assert.True(t, migrator.HasIndex(&models.Request{}, "idx_requests_reg_number"))

	again, err := u.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Applied)
	assert.Equal(t, stepNames(), again.Skipped)
}

const legacyUsersDDL = `
CREATE TABLE users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username VARCHAR(80) NOT NULL UNIQUE,
  full_name VARCHAR(150),
  password_hash VARCHAR(128) NOT NULL,
  role VARCHAR(20) NOT NULL DEFAULT 'user',
  avatar VARCHAR(255),
  created_at DATETIME
);`

const legacyTopicsDDL = `
CREATE TABLE topics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title VARCHAR(100) NOT NULL,
  created_at DATETIME
);`

const legacyRequestsDDL = `
CREATE TABLE requests (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
  topic_id INTEGER NOT NULL REFERENCES topics(id),
  latitude FLOAT,
  longitude FLOAT,
  comment TEXT,
  media_filename VARCHAR(255),
  status VARCHAR(20) NOT NULL DEFAULT 'new',
  created_at DATETIME
);`

type legacyRow struct {
	status  string
	created time.Time
}

func seedLegacyStore(t *testing.T, conn *gorm.DB, rows []legacyRow) {
	t.Helper()
	for _, ddl := range []string{legacyUsersDDL, legacyTopicsDDL, legacyRequestsDDL} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	require.NoError(t, conn.Exec("INSERT INTO topics (title, created_at) VALUES (?, ?)", "Роҳ", time.Now().UTC()).Error)
	for _, r := range rows {
		var created any
		if !r.created.IsZero() {
			created = r.created
		}
		require.NoError(t, conn.Exec(
			"INSERT INTO requests (topic_id, comment, status, created_at) VALUES (1, '', ?, ?)",
			r.status, created,
		).Error)
	}
}

func TestRunUpgradesLegacyStore(t *testing.T) {
	conn := dbtest.OpenEmpty(t)
	y24 := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	y25 := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	seedLegacyStore(t, conn, []legacyRow{
		{status: "new", created: y25},
		{status: "in_progress", created: y24},
		{status: "completed", created: y25.Add(time.Hour)},
		{status: "rejected", created: y24.Add(time.Hour)},
		{status: "new", created: y25.Add(2 * time.Hour)},
	})

	report, err := newUpgraderForTests(t, conn).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Applied, len(Steps(time.Now)))

	var topic models.Topic
	require.NoError(t, conn.First(&topic, 1).Error)
	assert.Equal(t, models.DefaultTopicColor, topic.Color)

	var reqs []models.Request
	require.NoError(t, conn.Order("id ASC").Find(&reqs).Error)
	require.Len(t, reqs, 5)

	wantNumbers := []string{"NAZ-2025-0001", "NAZ-2024-0001", "NAZ-2025-0002", "NAZ-2024-0002", "NAZ-2025-0003"}
	for i, r := range reqs {
		require.NotNil(t, r.RegNumber, "row %d", r.ID)
		assert.Equal(t, wantNumbers[i], *r.RegNumber, "row %d", r.ID)
		assert.True(t, r.Status.IsStorable(), "row %d kept status %s", r.ID, r.Status)
	}

	// new rows stay unread, handled rows are stamped, completed is untouched.
	assert.Nil(t, reqs[0].AdminReadAt)
	assert.NotNil(t, reqs[1].AdminReadAt)
	assert.Equal(t, enums.RequestStatusCompleted, reqs[2].Status)
	assert.Nil(t, reqs[2].AdminReadAt)
	assert.NotNil(t, reqs[3].AdminReadAt)
	assert.Nil(t, reqs[4].AdminReadAt)
	assert.Equal(t, enums.RequestStatusUnderReview, reqs[3].Status)
}

func TestFailedStepRollsBackAndLaterStepsStillRun(t *testing.T) {
	conn := dbtest.OpenEmpty(t)
	broken := true
	steps := []Step{
		{Name: "first", Apply: func(ctx context.Context, tx *gorm.DB) error {
			return tx.Exec("CREATE TABLE first_marker (id INTEGER)").Error
		}},
		{Name: "second", Apply: func(ctx context.Context, tx *gorm.DB) error {
			if err := tx.Exec("CREATE TABLE second_marker (id INTEGER)").Error; err != nil {
				return err
			}
			if broken {
				return errors.New("disk on fire")
			}
			return nil
		}},
		{Name: "third", Apply: func(ctx context.Context, tx *gorm.DB) error {
			return tx.Exec("CREATE TABLE third_marker (id INTEGER)").Error
		}},
	}
	u := newUpgraderForTests(t, conn, WithSteps(steps))

	report, err := u.Run(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSchemaMigration))
	assert.Equal(t, []string{"first", "third"}, report.Applied)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "second", report.Failed[0].Name)
	assert.False(t, conn.Migrator().HasTable("second_marker"), "failed step must roll back")
	assert.True(t, conn.Migrator().HasTable("third_marker"))

	broken = false
	report, err = u.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, report.Applied)
	assert.Equal(t, []string{"first", "third"}, report.Skipped)
}

func TestUpgradeNumbersUndatedRowsWithInjectedClock(t *testing.T) {
	conn := dbtest.OpenEmpty(t)
	y25 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	seedLegacyStore(t, conn, []legacyRow{
		{status: "new", created: y25},
		{status: "new"},
	})
	clock := func() time.Time { return time.Date(2031, 7, 1, 0, 0, 0, 0, time.UTC) }

	_, err := newUpgraderForTests(t, conn, WithClock(clock)).Run(context.Background())
	require.NoError(t, err)

	var numbers []string
	require.NoError(t, conn.Model(&models.Request{}).Order("id ASC").Pluck("reg_number", &numbers).Error)
	assert.Equal(t, []string{"NAZ-2025-0001", "NAZ-2031-0001"}, numbers)
}
