package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "notekeep/internal/errors"
	"notekeep/internal/model"
	"notekeep/internal/repository"
)

// MockNoteRepository is a mock implementation of NoteRepository.
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) Save(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) ReplaceTags(ctx context.Context, note *model.Note, tags []model.Tag) error {
	args := m.Called(ctx, note, tags)
	return args.Error(0)
}

func (m *MockNoteRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, userID uuid.UUID, filter repository.NoteFilter) ([]model.Note, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Note), args.Get(1).(int64), args.Error(2)
}

func (m *MockNoteRepository) Delete(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

// MockTagRepository is a mock implementation of TagRepository.
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) FindByNames(ctx context.Context, names []string) ([]model.Tag, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockTagRepository) CreateMissing(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func TestNotesService_Create_ReusesExistingTags(t *testing.T) {
	userID := uuid.New()
	existingA := model.Tag{ID: uuid.New(), Name: "a"}
	createdB := model.Tag{ID: uuid.New(), Name: "b"}

	mockTags := new(MockTagRepository)
	// "a" already exists, only "b" is inserted, then both are reloaded.
	mockTags.On("FindByNames", mock.Anything, []string{"a", "b"}).Return([]model.Tag{existingA}, nil).Once()
	mockTags.On("CreateMissing", mock.Anything, []string{"b"}).Return(nil).Once()
	mockTags.On("FindByNames", mock.Anything, []string{"a", "b"}).Return([]model.Tag{existingA, createdB}, nil).Once()

	mockNotes := new(MockNoteRepository)
	mockNotes.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)

	service := NewNotesService(mockNotes, mockTags)
	note, err := service.Create(context.Background(), userID, CreateNoteInput{
		Title:   "Tagged",
		Content: "<p>hi</p>",
		Tags:    []string{"a", "b"},
	})

	assert.NoError(t, err)
	assert.Equal(t, userID, note.UserID)
	assert.Len(t, note.Tags, 2)
	assert.Equal(t, existingA.ID, note.Tags[0].ID)
	mockTags.AssertExpectations(t)
	mockNotes.AssertExpectations(t)
}

func TestNotesService_Create_WithoutTags(t *testing.T) {
	mockTags := new(MockTagRepository)
	mockNotes := new(MockNoteRepository)
	mockNotes.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)

	service := NewNotesService(mockNotes, mockTags)
	note, err := service.Create(context.Background(), uuid.New(), CreateNoteInput{Title: "Plain"})

	assert.NoError(t, err)
	assert.Empty(t, note.Tags)
	mockTags.AssertNotCalled(t, "FindByNames", mock.Anything, mock.Anything)
	mockTags.AssertNotCalled(t, "CreateMissing", mock.Anything, mock.Anything)
}

func TestNotesService_Create_DeduplicatesTagNames(t *testing.T) {
	tag := model.Tag{ID: uuid.New(), Name: "a"}

	mockTags := new(MockTagRepository)
	mockTags.On("FindByNames", mock.Anything, []string{"a"}).Return([]model.Tag{tag}, nil)

	mockNotes := new(MockNoteRepository)
	mockNotes.On("Create", mock.Anything, mock.AnythingOfType("*model.Note")).Return(nil)

	service := NewNotesService(mockNotes, mockTags)
	note, err := service.Create(context.Background(), uuid.New(), CreateNoteInput{
		Title: "Dups",
		Tags:  []string{"a", "a", " a ", ""},
	})

	assert.NoError(t, err)
	assert.Len(t, note.Tags, 1)
	mockTags.AssertNotCalled(t, "CreateMissing", mock.Anything, mock.Anything)
}

func TestNotesService_FindAll_Pagination(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name               string
		params             ListNotesParams
		repoNotes          []model.Note
		repoTotal          int64
		expectedPage       int
		expectedLimit      int
		expectedTotalPages int
	}{
		{
			name:               "defaults applied",
			params:             ListNotesParams{},
			repoNotes:          make([]model.Note, 10),
			repoTotal:          25,
			expectedPage:       1,
			expectedLimit:      10,
			expectedTotalPages: 3,
		},
		{
			name:               "last partial page",
			params:             ListNotesParams{Page: 3, Limit: 10},
			repoNotes:          make([]model.Note, 5),
			repoTotal:          25,
			expectedPage:       3,
			expectedLimit:      10,
			expectedTotalPages: 3,
		},
		{
			name:               "empty result",
			params:             ListNotesParams{Page: 1, Limit: 10},
			repoNotes:          nil,
			repoTotal:          0,
			expectedPage:       1,
			expectedLimit:      10,
			expectedTotalPages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockNotes := new(MockNoteRepository)
			mockNotes.On("List", mock.Anything, userID, repository.NoteFilter{
				OnlyArchived: tt.params.OnlyArchived,
				Page:         tt.expectedPage,
				Limit:        tt.expectedLimit,
			}).Return(tt.repoNotes, tt.repoTotal, nil)

			service := NewNotesService(mockNotes, new(MockTagRepository))
			list, err := service.FindAll(context.Background(), userID, tt.params)

			assert.NoError(t, err)
			assert.NotNil(t, list.Notes)
			assert.Len(t, list.Notes, len(tt.repoNotes))
			assert.Equal(t, tt.expectedPage, list.Pagination.Page)
			assert.Equal(t, tt.expectedLimit, list.Pagination.Limit)
			assert.Equal(t, tt.repoTotal, list.Pagination.Total)
			assert.Equal(t, tt.expectedTotalPages, list.Pagination.TotalPages)
			mockNotes.AssertExpectations(t)
		})
	}
}

// The default listing must never include archived notes; asking for archived
// notes must flip the filter, not widen it.
func TestNotesService_FindAll_ArchiveFilter(t *testing.T) {
	userID := uuid.New()

	for _, onlyArchived := range []bool{false, true} {
		mockNotes := new(MockNoteRepository)
		mockNotes.On("List", mock.Anything, userID, mock.MatchedBy(func(f repository.NoteFilter) bool {
			return f.OnlyArchived == onlyArchived
		})).Return([]model.Note{}, int64(0), nil)

		service := NewNotesService(mockNotes, new(MockTagRepository))
		_, err := service.FindAll(context.Background(), userID, ListNotesParams{OnlyArchived: onlyArchived})

		assert.NoError(t, err)
		mockNotes.AssertExpectations(t)
	}
}

func TestNotesService_FindOne_CrossUserIsNotFound(t *testing.T) {
	intruderID := uuid.New()
	noteID := uuid.New()

	mockNotes := new(MockNoteRepository)
	// The repository scopes by user, so someone else's note misses entirely.
	mockNotes.On("FindByIDAndUser", mock.Anything, noteID, intruderID).Return(nil, gorm.ErrRecordNotFound)

	service := NewNotesService(mockNotes, new(MockTagRepository))
	note, err := service.FindOne(context.Background(), intruderID, noteID)

	assert.Equal(t, apperrors.ErrNoteNotFound, err)
	assert.Nil(t, note)
}

func TestNotesService_Update_ArchivingUnpins(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()
	existing := &model.Note{ID: noteID, UserID: userID, Title: "Pinned", IsPinned: true}

	mockNotes := new(MockNoteRepository)
	mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(existing, nil)
	mockNotes.On("Save", mock.Anything, existing).Return(nil)

	archived := true
	pinned := true
	service := NewNotesService(mockNotes, new(MockTagRepository))
	note, err := service.Update(context.Background(), userID, noteID, UpdateNoteInput{
		IsArchived: &archived,
		IsPinned:   &pinned, // ignored: archiving wins
	})

	assert.NoError(t, err)
	assert.True(t, note.IsArchived)
	assert.False(t, note.IsPinned)
	mockNotes.AssertExpectations(t)
}

func TestNotesService_Update_OmittedTagsStay(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()
	existing := &model.Note{
		ID:     noteID,
		UserID: userID,
		Tags:   []model.Tag{{ID: uuid.New(), Name: "keep"}},
	}

	mockNotes := new(MockNoteRepository)
	mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(existing, nil)
	mockNotes.On("Save", mock.Anything, existing).Return(nil)

	title := "Renamed"
	service := NewNotesService(mockNotes, new(MockTagRepository))
	note, err := service.Update(context.Background(), userID, noteID, UpdateNoteInput{Title: &title})

	assert.NoError(t, err)
	assert.Equal(t, "Renamed", note.Title)
	assert.Len(t, note.Tags, 1)
	mockNotes.AssertNotCalled(t, "ReplaceTags", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotesService_Update_ReplacesTags(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()
	existing := &model.Note{
		ID:     noteID,
		UserID: userID,
		Tags:   []model.Tag{{ID: uuid.New(), Name: "old"}},
	}
	newTag := model.Tag{ID: uuid.New(), Name: "new"}

	mockTags := new(MockTagRepository)
	mockTags.On("FindByNames", mock.Anything, []string{"new"}).Return([]model.Tag{newTag}, nil)

	mockNotes := new(MockNoteRepository)
	mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(existing, nil)
	mockNotes.On("ReplaceTags", mock.Anything, existing, []model.Tag{newTag}).Return(nil)
	mockNotes.On("Save", mock.Anything, existing).Return(nil)

	service := NewNotesService(mockNotes, mockTags)
	note, err := service.Update(context.Background(), userID, noteID, UpdateNoteInput{Tags: []string{"new"}})

	assert.NoError(t, err)
	assert.Equal(t, []model.Tag{newTag}, note.Tags)
	mockNotes.AssertExpectations(t)
	mockTags.AssertExpectations(t)
}

func TestNotesService_Update_ReminderDate(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()
	was := time.Now().Add(time.Hour)

	t.Run("explicit clear", func(t *testing.T) {
		existing := &model.Note{ID: noteID, UserID: userID, ReminderDate: &was}

		mockNotes := new(MockNoteRepository)
		mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(existing, nil)
		mockNotes.On("Save", mock.Anything, existing).Return(nil)

		service := NewNotesService(mockNotes, new(MockTagRepository))
		note, err := service.Update(context.Background(), userID, noteID, UpdateNoteInput{
			ReminderDateSet: true,
			ReminderDate:    nil,
		})

		assert.NoError(t, err)
		assert.Nil(t, note.ReminderDate)
	})

	t.Run("omitted stays", func(t *testing.T) {
		existing := &model.Note{ID: noteID, UserID: userID, ReminderDate: &was}

		mockNotes := new(MockNoteRepository)
		mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(existing, nil)
		mockNotes.On("Save", mock.Anything, existing).Return(nil)

		service := NewNotesService(mockNotes, new(MockTagRepository))
		note, err := service.Update(context.Background(), userID, noteID, UpdateNoteInput{})

		assert.NoError(t, err)
		assert.NotNil(t, note.ReminderDate)
		assert.Equal(t, was, *note.ReminderDate)
	})
}

func TestNotesService_Remove(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()

	t.Run("deletes own note", func(t *testing.T) {
		existing := &model.Note{ID: noteID, UserID: userID}

		mockNotes := new(MockNoteRepository)
		mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(existing, nil)
		mockNotes.On("Delete", mock.Anything, existing).Return(nil)

		service := NewNotesService(mockNotes, new(MockTagRepository))
		err := service.Remove(context.Background(), userID, noteID)

		assert.NoError(t, err)
		mockNotes.AssertExpectations(t)
	})

	t.Run("missing note is not found", func(t *testing.T) {
		mockNotes := new(MockNoteRepository)
		mockNotes.On("FindByIDAndUser", mock.Anything, noteID, userID).Return(nil, gorm.ErrRecordNotFound)

		service := NewNotesService(mockNotes, new(MockTagRepository))
		err := service.Remove(context.Background(), userID, noteID)

		assert.Equal(t, apperrors.ErrNoteNotFound, err)
		mockNotes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
