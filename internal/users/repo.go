package users

import (
	"context"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) usersRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every user, newest first.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *Repository) CountByRole(ctx context.Context, role enums.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *Repository) UpdateRole(ctx context.Context, id uint64, role enums.UserRole) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("role", role).Error
}

func (r *Repository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// DetachRequests clears user_id on every request owned by the user.
func (r *Repository) DetachRequests(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("user_id = ?", userID).
		UpdateColumn("user_id", gorm.Expr("NULL"))
	return res.RowsAffected, res.Error
}

// DeleteRequests removes the user's requests and returns their media names.
func (r *Repository) DeleteRequests(ctx context.Context, userID uint64) ([]string, int64, error) {
	var media []string
	if err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("user_id = ? AND media_filename IS NOT NULL AND media_filename <> ''", userID).
		Pluck("media_filename", &media).Error; err != nil {
		return nil, 0, err
	}
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Request{})
	return media, res.RowsAffected, res.Error
}
