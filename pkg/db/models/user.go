package models

import (
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/enums"
)

// User is an account that submits requests or administers them.
type User struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string         `gorm:"column:username;size:80;not null;uniqueIndex" json:"username"`
	FullName     *string        `gorm:"column:full_name;size:150" json:"full_name,omitempty"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;size:20;not null;default:user" json:"role"`
	Avatar       *string        `gorm:"column:avatar;size:255" json:"avatar,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

func (u User) IsAdmin() bool { return u.Role == enums.UserRoleAdmin }
