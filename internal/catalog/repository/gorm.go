// Package repository implements catalog persistence over gorm.
package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smallbiznis/royaltyflow/internal/catalog/domain"
)

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByTitles(ctx context.Context, artistID snowflake.ID, titles []string) ([]domain.Track, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	var tracks []domain.Track
	err := r.db.WithContext(ctx).
		Where("artist_id = ? AND title IN ?", artistID, titles).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("find tracks by title: %w", err)
	}
	return tracks, nil
}

func (r *Repository) CreateIgnoringConflicts(ctx context.Context, tracks []*domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artist_id"}, {Name: "title"}},
			DoNothing: true,
		}).
		Create(tracks).Error
	if err != nil {
		return fmt.Errorf("bulk create tracks: %w", err)
	}
	return nil
}
