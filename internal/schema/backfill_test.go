package schema

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/dbtest"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillIsDensePerYear(t *testing.T) {
	conn := dbtest.Open(t)
	topic := dbtest.SeedTopic(t, conn, "Обтаъминкунӣ")

	const n = 12
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		dbtest.SeedRequest(t, conn, dbtest.RequestSeed{TopicID: topic.ID, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	assigned, err := BackfillRegNumbers(context.Background(), conn, base)
	require.NoError(t, err)
	assert.Equal(t, n, assigned)

	var numbers []string
	require.NoError(t, conn.Model(&models.Request{}).Order("id ASC").Pluck("reg_number", &numbers).Error)
	want := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		want = append(want, fmt.Sprintf("NAZ-2025-%04d", i))
	}
	assert.Equal(t, want, numbers)

	again, err := BackfillRegNumbers(context.Background(), conn, base)
	require.NoError(t, err)
	assert.Zero(t, again, "second pass has nothing to do")
}

func TestBackfillInterleavedYearsAndExistingNumbers(t *testing.T) {
	conn := dbtest.Open(t)
	topic := dbtest.SeedTopic(t, conn, "Кишоварзӣ")
	y24 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	y25 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	r1 := dbtest.SeedRequest(t, conn, dbtest.RequestSeed{TopicID: topic.ID, CreatedAt: y25})
	r2 := dbtest.SeedRequest(t, conn, dbtest.RequestSeed{TopicID: topic.ID, CreatedAt: y24})
	r3 := dbtest.SeedRequest(t, conn, dbtest.RequestSeed{TopicID: topic.ID, CreatedAt: y25})
	r4 := dbtest.SeedRequest(t, conn, dbtest.RequestSeed{TopicID: topic.ID, CreatedAt: y24})
	// A later row already numbered under the live generator.
	r5 := dbtest.SeedRequest(t, conn, dbtest.RequestSeed{TopicID: topic.ID, CreatedAt: y25, RegNumber: dbtest.Ptr("NAZ-2025-0002")})

	_, err := BackfillRegNumbers(context.Background(), conn, y25)
	require.NoError(t, err)

	got := map[uint64]string{}
	var rows []models.Request
	require.NoError(t, conn.Find(&rows).Error)
	for _, r := range rows {
		require.NotNil(t, r.RegNumber)
		got[r.ID] = *r.RegNumber
	}
	assert.Equal(t, "NAZ-2025-0001", got[r1.ID])
	assert.Equal(t, "NAZ-2024-0001", got[r2.ID])
	assert.Equal(t, "NAZ-2025-0003", got[r3.ID], "0002 is held by a later row")
	assert.Equal(t, "NAZ-2024-0002", got[r4.ID])
	assert.Equal(t, "NAZ-2025-0002", got[r5.ID])

	values := make([]string, 0, len(got))
	for _, v := range got {
		values = append(values, v)
	}
	sort.Strings(values)
	for i := 1; i < len(values); i++ {
		assert.NotEqual(t, values[i-1], values[i], "duplicate number")
	}
}

func TestBackfillUndatedRowUsesGivenTime(t *testing.T) {
	conn := dbtest.OpenEmpty(t)
	seedLegacyStore(t, conn, []legacyRow{{status: "new"}, {status: "new"}})
	require.NoError(t, addRequestRegNumber(context.Background(), conn))

	now := time.Date(2030, 12, 31, 23, 0, 0, 0, time.UTC)
	assigned, err := BackfillRegNumbers(context.Background(), conn, now)
	require.NoError(t, err)
	assert.Equal(t, 2, assigned)

	var numbers []string
	require.NoError(t, conn.Model(&models.Request{}).Order("id ASC").Pluck("reg_number", &numbers).Error)
	assert.Equal(t, []string{"NAZ-2030-0001", "NAZ-2030-0002"}, numbers)
}
