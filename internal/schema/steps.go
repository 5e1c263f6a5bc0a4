package schema

import (
	"context"
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"gorm.io/gorm"
)

// Step names are persisted in schema_upgrades; never rename one.
const (
	StepCreateBaseTables        = "create_base_tables"
	StepAddTopicColor           = "add_topic_color"
	StepAddRequestRegNumber     = "add_request_reg_number"
	StepBackfillRegNumbers      = "backfill_reg_numbers"
	StepAddRequestDocNumber     = "add_request_document_number"
	StepAddRequestAdminReadAt   = "add_request_admin_read_at"
	StepAddRequestReply         = "add_request_reply"
	StepNarrowRequestStatus     = "narrow_request_status"
	StepIndexRequestForeignKeys = "index_request_foreign_keys"
)

const regNumberIndex = "idx_requests_reg_number"

// Steps returns the ordered upgrade list. now stamps rows that carry no
// creation time of their own.
func Steps(now func() time.Time) []Step {
	return []Step{
		{Name: StepCreateBaseTables, Apply: createBaseTables},
		{Name: StepAddTopicColor, Apply: addTopicColor},
		{Name: StepAddRequestRegNumber, Apply: addRequestRegNumber},
		{Name: StepBackfillRegNumbers, Apply: backfillRegNumbers(now)},
		{Name: StepAddRequestDocNumber, Apply: addColumns(&models.Request{}, "DocumentNumber")},
		{Name: StepAddRequestAdminReadAt, Apply: addColumns(&models.Request{}, "AdminReadAt")},
		{Name: StepAddRequestReply, Apply: addColumns(&models.Request{}, "Reply", "RepliedAt")},
		{Name: StepNarrowRequestStatus, Apply: narrowRequestStatus},
		{Name: StepIndexRequestForeignKeys, Apply: indexRequestForeignKeys},
	}
}

func createBaseTables(ctx context.Context, tx *gorm.DB) error {
	migrator := tx.WithContext(ctx).Migrator()
	// Order matters: requests references users and topics.
	for _, model := range []any{&models.User{}, &models.Topic{}, &models.Request{}} {
		if migrator.HasTable(model) {
			continue
		}
		if err := migrator.CreateTable(model); err != nil {
			return err
		}
	}
	return nil
}

func addColumns(model any, fields ...string) func(context.Context, *gorm.DB) error {
	return func(ctx context.Context, tx *gorm.DB) error {
		migrator := tx.WithContext(ctx).Migrator()
		for _, field := range fields {
			if migrator.HasColumn(model, field) {
				continue
			}
			if err := migrator.AddColumn(model, field); err != nil {
				return err
			}
		}
		return nil
	}
}

func addTopicColor(ctx context.Context, tx *gorm.DB) error {
	if err := addColumns(&models.Topic{}, "Color")(ctx, tx); err != nil {
		return err
	}
	return tx.WithContext(ctx).
		Model(&models.Topic{}).
		Where("color IS NULL OR color = ''").
		UpdateColumn("color", models.DefaultTopicColor).Error
}

func addRequestRegNumber(ctx context.Context, tx *gorm.DB) error {
	if err := addColumns(&models.Request{}, "RegNumber")(ctx, tx); err != nil {
		return err
	}
	migrator := tx.WithContext(ctx).Migrator()
	if migrator.HasIndex(&models.Request{}, regNumberIndex) {
		return nil
	}
	return migrator.CreateIndex(&models.Request{}, regNumberIndex)
}

func backfillRegNumbers(now func() time.Time) func(context.Context, *gorm.DB) error {
	return func(ctx context.Context, tx *gorm.DB) error {
		_, err := BackfillRegNumbers(ctx, tx, now())
		return err
	}
}

// narrowRequestStatus folds every retired status into under_review in one
// pass. Rows that had been handled under the old model (anything but new)
// are stamped as read so they derive to under_review rather than new.
func narrowRequestStatus(ctx context.Context, tx *gorm.DB) error {
	db := tx.WithContext(ctx)
	storable := []string{string(enums.RequestStatusUnderReview), string(enums.RequestStatusCompleted)}
	keepUnread := append([]string{string(enums.RequestStatusNew)}, storable...)

	if err := db.Exec(
		"UPDATE requests SET admin_read_at = created_at WHERE admin_read_at IS NULL AND status IS NOT NULL AND status NOT IN ?",
		keepUnread,
	).Error; err != nil {
		return err
	}
	return db.Exec(
		"UPDATE requests SET status = ? WHERE status IS NULL OR status NOT IN ?",
		string(enums.RequestStatusUnderReview), storable,
	).Error
}

func indexRequestForeignKeys(ctx context.Context, tx *gorm.DB) error {
	migrator := tx.WithContext(ctx).Migrator()
	for _, name := range []string{"idx_requests_user_id", "idx_requests_topic_id", "idx_requests_created_at"} {
		if migrator.HasIndex(&models.Request{}, name) {
			continue
		}
		if err := migrator.CreateIndex(&models.Request{}, name); err != nil {
			return err
		}
	}
	return nil
}
