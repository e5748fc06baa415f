package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a label attachable to many notes. Names are unique across the whole
// system, not per user; tags are created lazily and never deleted.
type Tag struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
