package topics

import (
	"context"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists topics.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) topicsRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

// List returns every topic ordered by title.
func (r *Repository) List(ctx context.Context) ([]models.Topic, error) {
	var out []models.Topic
	err := r.db.WithContext(ctx).Order("title ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func (r *Repository) Update(ctx context.Context, id uint64, title, color string) error {
	return r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "color": color}).Error
}

// CountRequests counts requests filed under the topic.
func (r *Repository) CountRequests(ctx context.Context, id uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Request{}).Where("topic_id = ?", id).Count(&n).Error
	return n, err
}

func (r *Repository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Topic{}, id).Error
}
