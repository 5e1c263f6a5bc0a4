package requests

import (
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/angelmondragon/nazorat-backend/pkg/pagination"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

// CreateInput is what a citizen submits.
type CreateInput struct {
	UserID        *uint64  `json:"-"`
	TopicID       uint64   `json:"topic_id"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Comment       string   `json:"comment"`
	MediaFilename *string  `json:"media_filename,omitempty"`
}

// ListParams filters the request listing. Status filters on the effective
// status, not the stored one.
type ListParams struct {
	TopicID *uint64
	UserID  *uint64
	Status  *enums.EffectiveStatus
	Limit   int
	Cursor  string
}

// Detail is a request joined with its topic and submitter.
type Detail struct {
	ID             uint64                `json:"id"`
	RegNumber      *string               `json:"reg_number,omitempty"`
	DocumentNumber *string               `json:"document_number,omitempty"`
	UserID         *uint64               `json:"user_id,omitempty"`
	Username       *string               `json:"username,omitempty"`
	UserFullName   *string               `json:"user_full_name,omitempty"`
	TopicID        uint64                `json:"topic_id"`
	TopicTitle     string                `json:"topic_title"`
	TopicColor     string                `json:"topic_color"`
	Coordinates    *types.Coordinates    `json:"coordinates,omitempty"`
	Comment        string                `json:"comment"`
	MediaFilename  *string               `json:"media_filename,omitempty"`
	Status         enums.RequestStatus   `json:"status"`
	Effective      enums.EffectiveStatus `json:"effective_status"`
	StatusLabel    string                `json:"status_label"`
	StatusClass    string                `json:"status_class"`
	AdminReadAt    *time.Time            `json:"admin_read_at,omitempty"`
	Reply          *string               `json:"reply,omitempty"`
	RepliedAt      *time.Time            `json:"replied_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// SubmitterName prefers the full name over the login.
func (d Detail) SubmitterName() string {
	if d.UserFullName != nil && *d.UserFullName != "" {
		return *d.UserFullName
	}
	if d.Username != nil {
		return *d.Username
	}
	return ""
}

// detailRow is the scan target of the joined detail query.
type detailRow struct {
	ID             uint64              `gorm:"column:id"`
	RegNumber      *string             `gorm:"column:reg_number"`
	DocumentNumber *string             `gorm:"column:document_number"`
	UserID         *uint64             `gorm:"column:user_id"`
	TopicID        uint64              `gorm:"column:topic_id"`
	Latitude       *float64            `gorm:"column:latitude"`
	Longitude      *float64            `gorm:"column:longitude"`
	Comment        string              `gorm:"column:comment"`
	MediaFilename  *string             `gorm:"column:media_filename"`
	Status         enums.RequestStatus `gorm:"column:status"`
	AdminReadAt    *time.Time          `gorm:"column:admin_read_at"`
	Reply          *string             `gorm:"column:reply"`
	RepliedAt      *time.Time          `gorm:"column:replied_at"`
	CreatedAt      time.Time           `gorm:"column:created_at"`
	Username       *string             `gorm:"column:username"`
	UserFullName   *string             `gorm:"column:user_full_name"`
	TopicTitle     string              `gorm:"column:topic_title"`
	TopicColor     string              `gorm:"column:topic_color"`
}

func (r detailRow) toDetail() Detail {
	eff := EffectiveStatus(r.Status, r.AdminReadAt)
	d := Detail{
		ID:             r.ID,
		RegNumber:      r.RegNumber,
		DocumentNumber: r.DocumentNumber,
		UserID:         r.UserID,
		Username:       r.Username,
		UserFullName:   r.UserFullName,
		TopicID:        r.TopicID,
		TopicTitle:     r.TopicTitle,
		TopicColor:     r.TopicColor,
		Comment:        r.Comment,
		MediaFilename:  r.MediaFilename,
		Status:         r.Status,
		Effective:      eff,
		StatusLabel:    eff.Label(),
		StatusClass:    eff.CSSClass(),
		AdminReadAt:    r.AdminReadAt,
		Reply:          r.Reply,
		RepliedAt:      r.RepliedAt,
		CreatedAt:      r.CreatedAt,
	}
	if r.Latitude != nil && r.Longitude != nil {
		d.Coordinates = &types.Coordinates{Lat: *r.Latitude, Lng: *r.Longitude}
	}
	return d
}

func cursorOf(d Detail) pagination.Cursor {
	return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
}
