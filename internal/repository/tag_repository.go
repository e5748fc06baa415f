package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notekeep/internal/model"
)

// TagRepository defines tag persistence operations. Tags are global, created
// lazily and never deleted.
type TagRepository interface {
	FindByNames(ctx context.Context, names []string) ([]model.Tag, error)
	CreateMissing(ctx context.Context, names []string) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository builds a GORM-backed repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindByNames(ctx context.Context, names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateMissing inserts one tag per name, ignoring rows that already exist.
// Two requests introducing the same new name concurrently both succeed here;
// the unique index on name guarantees a single row, the insert that loses the
// race is dropped by the ON CONFLICT clause.
func (r *tagRepository) CreateMissing(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, model.Tag{Name: name})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags).Error
}
