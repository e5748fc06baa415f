package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notekeep/internal/model"
)

// NoteFilter narrows a note listing. Zero values mean "no filter" except for
// OnlyArchived: false is the default view and returns unarchived notes only,
// true returns archived notes only. The two sets are never mixed.
type NoteFilter struct {
	Search       string
	IsPinned     *bool
	OnlyArchived bool
	TagID        *uuid.UUID
	Page         int
	Limit        int
}

// NoteRepository defines note persistence operations. Every query is scoped to
// the owning user; there is no unscoped variant.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	Save(ctx context.Context, note *model.Note) error
	ReplaceTags(ctx context.Context, note *model.Note, tags []model.Tag) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Note, error)
	List(ctx context.Context, userID uuid.UUID, filter NoteFilter) ([]model.Note, int64, error)
	Delete(ctx context.Context, note *model.Note) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository builds a GORM-backed repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// Save persists scalar fields. Tag associations are managed separately through
// ReplaceTags so an update without tags never touches the join table.
func (r *noteRepository) Save(ctx context.Context, note *model.Note) error {
	return r.db.WithContext(ctx).Omit("Tags").Save(note).Error
}

// ReplaceTags swaps the note's tag set for the given one.
func (r *noteRepository) ReplaceTags(ctx context.Context, note *model.Note, tags []model.Tag) error {
	return r.db.WithContext(ctx).Model(note).Association("Tags").Replace(tags)
}

// FindByIDAndUser returns gorm.ErrRecordNotFound for foreign notes as well as
// truly absent ones, so callers cannot distinguish the two.
func (r *noteRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Note, error) {
	var note model.Note
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("id = ? AND user_id = ?", id, userID).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// List applies the filter and returns one page of notes plus the total count
// of matches. Pinned notes sort first, most recently updated first within each
// pin group.
func (r *noteRepository) List(ctx context.Context, userID uuid.UUID, filter NoteFilter) ([]model.Note, int64, error) {
	// Applied twice (count and page query) so neither chain is reused after
	// execution.
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&model.Note{}).
			Where("notes.user_id = ?", userID).
			Where("notes.is_archived = ?", filter.OnlyArchived)

		if filter.Search != "" {
			pattern := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("LOWER(notes.title) LIKE ? OR LOWER(notes.content) LIKE ?", pattern, pattern)
		}
		if filter.IsPinned != nil {
			q = q.Where("notes.is_pinned = ?", *filter.IsPinned)
		}
		if filter.TagID != nil {
			q = q.Joins("JOIN note_tags ON note_tags.note_id = notes.id").
				Where("note_tags.tag_id = ?", *filter.TagID)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notes []model.Note
	err := scoped().Preload("Tags").
		Order("notes.is_pinned DESC, notes.updated_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&notes).Error
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// Delete removes the note and its tag associations. Tags themselves stay;
// orphaned tags are tolerated.
func (r *noteRepository) Delete(ctx context.Context, note *model.Note) error {
	if err := r.db.WithContext(ctx).Model(note).Association("Tags").Clear(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(note).Error
}
