package users

import (
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        uint64         `json:"id"`
	Username  string         `json:"username"`
	FullName  *string        `json:"full_name,omitempty"`
	Role      enums.UserRole `json:"role"`
	Avatar    *string        `json:"avatar,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateUserInput holds what an admin supplies to register an account.
type CreateUserInput struct {
	Username string
	FullName *string
	Password string
	Role     enums.UserRole
}

// DeleteResult reports what a deletion touched.
type DeleteResult struct {
	UserID          uint64               `json:"user_id"`
	Mode            enums.UserDeleteMode `json:"mode"`
	DetachedCount   int64                `json:"detached_requests"`
	DeletedRequests int64                `json:"deleted_requests"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func (c CreateUserInput) toModel(passwordHash string) *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	return &models.User{
		Username:     c.Username,
		FullName:     c.FullName,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
