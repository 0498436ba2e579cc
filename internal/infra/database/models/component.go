package models

import (
	"time"
)

// Component is one encoded component of an entity. Entities exist
// implicitly as the set of rows sharing a link.
type Component struct {
	Link  string    `json:"link" gorm:"primaryKey;type:text"`
	Name  string    `json:"name" gorm:"primaryKey;type:text"`
	Data  []byte    `json:"data" gorm:"type:bytea;not null"`
	MDate time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
