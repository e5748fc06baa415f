package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a user-owned rich-text document. Content is an opaque string (the
// editor stores HTML). Every read and write is scoped to the owning user.
type Note struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Content    string    `json:"content" gorm:"type:longtext"`
	IsPinned   bool      `json:"isPinned" gorm:"default:false;index"`
	IsArchived bool      `json:"isArchived" gorm:"default:false;index"`

	UserID uuid.UUID `json:"userId" gorm:"type:char(36);not null;index"`
	Tags   []Tag     `json:"tags" gorm:"many2many:note_tags"`

	ReminderDate *time.Time `json:"reminderDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
