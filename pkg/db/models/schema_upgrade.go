package models

import "time"

// SchemaUpgrade records a completed upgrade step so reruns skip it.
type SchemaUpgrade struct {
	Name      string    `gorm:"column:name;primaryKey;size:100"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (SchemaUpgrade) TableName() string { return "schema_upgrades" }
