package models

import (
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/enums"
)

// Request is a citizen submission. UserID and TopicID are plain foreign keys;
// reverse lookups go through the repositories.
type Request struct {
	ID             uint64              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RegNumber      *string             `gorm:"column:reg_number;size:20;uniqueIndex:idx_requests_reg_number" json:"reg_number,omitempty"`
	DocumentNumber *string             `gorm:"column:document_number;size:100" json:"document_number,omitempty"`
	UserID         *uint64             `gorm:"column:user_id;index:idx_requests_user_id" json:"user_id,omitempty"`
	TopicID        uint64              `gorm:"column:topic_id;not null;index:idx_requests_topic_id" json:"topic_id"`
	Latitude       *float64            `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude      *float64            `gorm:"column:longitude" json:"longitude,omitempty"`
	Comment        string              `gorm:"column:comment;type:text" json:"comment"`
	MediaFilename  *string             `gorm:"column:media_filename;size:255" json:"media_filename,omitempty"`
	Status         enums.RequestStatus `gorm:"column:status;size:20;not null;default:under_review" json:"status"`
	AdminReadAt    *time.Time          `gorm:"column:admin_read_at" json:"admin_read_at,omitempty"`
	Reply          *string             `gorm:"column:reply;type:text" json:"reply,omitempty"`
	RepliedAt      *time.Time          `gorm:"column:replied_at" json:"replied_at,omitempty"`
	CreatedAt      time.Time           `gorm:"column:created_at;index:idx_requests_created_at" json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Topic *Topic `gorm:"foreignKey:TopicID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Request) TableName() string { return "requests" }

// HasCoordinates is true when both halves of the location are present.
func (r Request) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}
