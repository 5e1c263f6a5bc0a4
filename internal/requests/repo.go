package requests

import (
	"context"
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/angelmondragon/nazorat-backend/pkg/pagination"
	"gorm.io/gorm"
)

const detailColumns = "requests.id, requests.reg_number, requests.document_number, requests.user_id, " +
	"requests.topic_id, requests.latitude, requests.longitude, requests.comment, requests.media_filename, " +
	"requests.status, requests.admin_read_at, requests.reply, requests.replied_at, requests.created_at, " +
	"users.username AS username, users.full_name AS user_full_name, " +
	"topics.title AS topic_title, topics.color AS topic_color"

// mutableColumns are the only columns admin mutations write back.
var mutableColumns = []string{"reg_number", "document_number", "status", "admin_read_at", "reply", "replied_at"}

// Repository persists requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) requestsRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, req *models.Request) error {
	return r.db.WithContext(ctx).Omit("User", "Topic").Create(req).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.Request, error) {
	var req models.Request
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Save writes back the admin-editable columns, including NULLs.
func (r *Repository) Save(ctx context.Context, req *models.Request) error {
	return r.db.WithContext(ctx).
		Model(&models.Request{ID: req.ID}).
		Select(mutableColumns).
		Omit("User", "Topic").
		Updates(req).Error
}

func (r *Repository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Request{}, id).Error
}

func (r *Repository) TopicExists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *Repository) UserExists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// FindDetail loads one request joined with its topic and submitter.
func (r *Repository) FindDetail(ctx context.Context, id uint64) (*Detail, error) {
	var rows []detailRow
	err := r.joined(ctx).Where("requests.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	d := rows[0].toDetail()
	return &d, nil
}

// List returns up to LimitWithBuffer rows newest first, starting after cursor.
func (r *Repository) List(ctx context.Context, params ListParams, cursor *pagination.Cursor) ([]Detail, error) {
	q := r.joined(ctx)
	if params.TopicID != nil {
		q = q.Where("requests.topic_id = ?", *params.TopicID)
	}
	if params.UserID != nil {
		q = q.Where("requests.user_id = ?", *params.UserID)
	}
	if params.Status != nil {
		q = q.Scopes(ScopeEffective(*params.Status))
	}
	if cursor != nil {
		q = q.Where("(requests.created_at < ?) OR (requests.created_at = ? AND requests.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []detailRow
	err := q.Order("requests.created_at DESC").
		Order("requests.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Detail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDetail())
	}
	return out, nil
}

// ListByUser returns every request of one submitter newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uint64, from, to *time.Time) ([]Detail, error) {
	q := r.joined(ctx).Where("requests.user_id = ?", userID)
	if from != nil {
		q = q.Where("requests.created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("requests.created_at < ?", *to)
	}
	var rows []detailRow
	if err := q.Order("requests.created_at DESC").Order("requests.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Detail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDetail())
	}
	return out, nil
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("requests").
		Select(detailColumns).
		Joins("JOIN topics ON topics.id = requests.topic_id").
		Joins("LEFT JOIN users ON users.id = requests.user_id")
}

// ScopeEffective narrows a requests query to one effective status. It
// mirrors EffectiveStatus in SQL.
func ScopeEffective(status enums.EffectiveStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case enums.EffectiveStatusCompleted:
			return db.Where("requests.status = ?", enums.RequestStatusCompleted)
		case enums.EffectiveStatusNew:
			return db.Where("requests.status <> ? AND requests.admin_read_at IS NULL", enums.RequestStatusCompleted)
		case enums.EffectiveStatusUnderReview:
			return db.Where("requests.status <> ? AND requests.admin_read_at IS NOT NULL", enums.RequestStatusCompleted)
		default:
			return db.Where("1 = 0")
		}
	}
}
