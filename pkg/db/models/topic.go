package models

import "time"

// DefaultTopicColor is applied when a topic is created without a color.
const DefaultTopicColor = "#40916c"

// Topic groups requests by subject.
type Topic struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"column:title;size:100;not null;uniqueIndex" json:"title"`
	Color     string    `gorm:"column:color;size:7;default:#40916c" json:"color"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Topic) TableName() string { return "topics" }
