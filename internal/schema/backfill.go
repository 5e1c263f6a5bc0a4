package schema

import (
	"context"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/numbering"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"gorm.io/gorm"
)

type backfillRow struct {
	ID        uint64
	RegNumber *string
	CreatedAt *time.Time
}

// BackfillRegNumbers gives every request without a registration number one,
// walking rows in ascending id. A row's sequence is one more than the number
// of lower-id rows already numbered in its creation year, which keeps each
// year dense and in creation order. If that number is held by a higher-id
// row the next free sequence is used. Rows without a creation time are
// numbered in the year of now. Returns how many rows were numbered.
func BackfillRegNumbers(ctx context.Context, tx *gorm.DB, now time.Time) (int, error) {
	var rows []backfillRow
	if err := tx.WithContext(ctx).
		Model(&models.Request{}).
		Select("id, reg_number, created_at").
		Order("id ASC").
		Scan(&rows).Error; err != nil {
		return 0, err
	}

	taken := make(map[string]bool, len(rows))
	for _, row := range rows {
		if hasNumber(row) {
			taken[*row.RegNumber] = true
		}
	}

	numberedInYear := map[int]int{}
	assigned := 0
	for _, row := range rows {
		if hasNumber(row) {
			if _, year, _, err := numbering.Parse(*row.RegNumber); err == nil {
				numberedInYear[year]++
			}
			continue
		}

		created := now
		if row.CreatedAt != nil {
			created = *row.CreatedAt
		}
		year := numbering.YearOf(created)

		seq := numberedInYear[year] + 1
		number := numbering.Format(enums.NumberPrefixRegistration, year, seq)
		for taken[number] {
			seq++
			number = numbering.Format(enums.NumberPrefixRegistration, year, seq)
		}

		if err := tx.WithContext(ctx).
			Model(&models.Request{}).
			Where("id = ?", row.ID).
			UpdateColumn("reg_number", number).Error; err != nil {
			return assigned, err
		}
		taken[number] = true
		numberedInYear[year]++
		assigned++
	}
	return assigned, nil
}

func hasNumber(row backfillRow) bool {
	return row.RegNumber != nil && *row.RegNumber != ""
}
