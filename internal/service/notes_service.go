package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "notekeep/internal/errors"
	"notekeep/internal/model"
	"notekeep/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// CreateNoteInput carries the fields accepted when creating a note.
type CreateNoteInput struct {
	Title        string
	Content      string
	IsPinned     bool
	IsArchived   bool
	Tags         []string
	ReminderDate *time.Time
}

// UpdateNoteInput is a patch: nil pointers mean "field not supplied". Tags are
// replaced only when non-empty; an absent or empty list leaves the existing
// set untouched. ReminderDate distinguishes "omitted" (ReminderDateSet false)
// from "explicitly cleared" (ReminderDateSet true, ReminderDate nil).
type UpdateNoteInput struct {
	Title           *string
	Content         *string
	IsPinned        *bool
	IsArchived      *bool
	Tags            []string
	ReminderDate    *time.Time
	ReminderDateSet bool
}

// ListNotesParams narrows and paginates a note listing.
type ListNotesParams struct {
	Search       string
	IsPinned     *bool
	OnlyArchived bool
	TagID        *uuid.UUID
	Page         int
	Limit        int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NoteList is the findAll result envelope.
type NoteList struct {
	Notes      []model.Note `json:"notes"`
	Pagination Pagination   `json:"pagination"`
}

// NotesService handles note CRUD, filtering and tag reconciliation. Every
// operation takes the calling user's ID and never reads or writes notes of
// other users.
type NotesService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateNoteInput) (*model.Note, error)
	FindAll(ctx context.Context, userID uuid.UUID, params ListNotesParams) (*NoteList, error)
	FindOne(ctx context.Context, userID, noteID uuid.UUID) (*model.Note, error)
	Update(ctx context.Context, userID, noteID uuid.UUID, input UpdateNoteInput) (*model.Note, error)
	Remove(ctx context.Context, userID, noteID uuid.UUID) error
}

type notesService struct {
	noteRepo repository.NoteRepository
	tagRepo  repository.TagRepository
}

// NewNotesService creates a new notes service.
func NewNotesService(noteRepo repository.NoteRepository, tagRepo repository.TagRepository) NotesService {
	return &notesService{
		noteRepo: noteRepo,
		tagRepo:  tagRepo,
	}
}

// reconcileTags resolves tag names to Tag rows, creating the missing ones.
// The insert ignores duplicate-key conflicts and the final lookup runs after
// it, so a concurrent request introducing the same name resolves to the one
// surviving row on both sides.
func (s *notesService) reconcileTags(ctx context.Context, names []string) ([]model.Tag, error) {
	distinct := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}
	if len(distinct) == 0 {
		return nil, nil
	}

	existing, err := s.tagRepo.FindByNames(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}

	if len(existing) < len(distinct) {
		have := make(map[string]struct{}, len(existing))
		for _, tag := range existing {
			have[tag.Name] = struct{}{}
		}
		missing := make([]string, 0, len(distinct)-len(existing))
		for _, name := range distinct {
			if _, ok := have[name]; !ok {
				missing = append(missing, name)
			}
		}
		if err := s.tagRepo.CreateMissing(ctx, missing); err != nil {
			return nil, fmt.Errorf("create tags: %w", err)
		}
		existing, err = s.tagRepo.FindByNames(ctx, distinct)
		if err != nil {
			return nil, fmt.Errorf("reload tags: %w", err)
		}
	}
	return existing, nil
}

// Create persists a new note for the user with its tag names reconciled to
// Tag rows.
func (s *notesService) Create(ctx context.Context, userID uuid.UUID, input CreateNoteInput) (*model.Note, error) {
	tags, err := s.reconcileTags(ctx, input.Tags)
	if err != nil {
		return nil, err
	}

	note := &model.Note{
		ID:           uuid.New(),
		Title:        input.Title,
		Content:      input.Content,
		IsPinned:     input.IsPinned,
		IsArchived:   input.IsArchived,
		UserID:       userID,
		Tags:         tags,
		ReminderDate: input.ReminderDate,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// FindAll lists the user's notes matching the filter, one page at a time.
func (s *notesService) FindAll(ctx context.Context, userID uuid.UUID, params ListNotesParams) (*NoteList, error) {
	page := params.Page
	if page < 1 {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	notes, total, err := s.noteRepo.List(ctx, userID, repository.NoteFilter{
		Search:       params.Search,
		IsPinned:     params.IsPinned,
		OnlyArchived: params.OnlyArchived,
		TagID:        params.TagID,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	if notes == nil {
		notes = []model.Note{}
	}
	return &NoteList{
		Notes: notes,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// FindOne loads a single note owned by the user. A note owned by someone else
// produces the same ErrNoteNotFound as a note that does not exist.
func (s *notesService) FindOne(ctx context.Context, userID, noteID uuid.UUID) (*model.Note, error) {
	note, err := s.noteRepo.FindByIDAndUser(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// Update applies the supplied fields to the note. Archiving always unpins,
// whatever IsPinned value came with the request.
func (s *notesService) Update(ctx context.Context, userID, noteID uuid.UUID, input UpdateNoteInput) (*model.Note, error) {
	note, err := s.FindOne(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}
	if input.IsPinned != nil {
		note.IsPinned = *input.IsPinned
	}
	if input.IsArchived != nil {
		note.IsArchived = *input.IsArchived
	}
	if note.IsArchived {
		note.IsPinned = false
	}
	if input.ReminderDateSet {
		note.ReminderDate = input.ReminderDate
	}

	if len(input.Tags) > 0 {
		tags, err := s.reconcileTags(ctx, input.Tags)
		if err != nil {
			return nil, err
		}
		if err := s.noteRepo.ReplaceTags(ctx, note, tags); err != nil {
			return nil, fmt.Errorf("replace tags: %w", err)
		}
		note.Tags = tags
	}

	note.UpdatedAt = time.Now()
	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}
	return note, nil
}

// Remove deletes the user's note by id.
func (s *notesService) Remove(ctx context.Context, userID, noteID uuid.UUID) error {
	note, err := s.FindOne(ctx, userID, noteID)
	if err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, note); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
