// Package repository implements royalty persistence over gorm.
package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smallbiznis/royaltyflow/internal/royalty/domain"
	"github.com/smallbiznis/royaltyflow/pkg/repository"
)

type Repository struct {
	db      *gorm.DB
	records repository.Repository[domain.Record]
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		db:      db,
		records: repository.ProvideStore[domain.Record](db),
	}
}

// InsertBatch writes one batch as a single multi-row insert inside a
// transaction, so a failed batch leaves no partial rows behind.
func (r *Repository) InsertBatch(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(records).Error
	})
	if err != nil {
		return fmt.Errorf("insert royalty batch: %w", err)
	}
	return nil
}

func (r *Repository) FindByQuarter(ctx context.Context, artistID snowflake.ID, year, quarter int) ([]*domain.Record, error) {
	return r.records.Find(ctx, &domain.Record{
		ArtistID: artistID,
		Year:     year,
		Quarter:  quarter,
	})
}

func (r *Repository) UpsertSummaries(ctx context.Context, summaries []*domain.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "artist_id"}, {Name: "track_id"}, {Name: "year"}, {Name: "quarter"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_streams", "total_gross", "total_net", "avg_per_stream",
				"top_platform", "top_territory",
				"platform_share", "territory_share", "month_share",
				"row_count", "updated_at",
			}),
		}).
		Create(summaries).Error
	if err != nil {
		return fmt.Errorf("upsert royalty summaries: %w", err)
	}
	return nil
}

func (r *Repository) ListSummaries(ctx context.Context, artistID snowflake.ID, year, quarter int) ([]*domain.Summary, error) {
	var out []*domain.Summary
	q := r.db.WithContext(ctx).Where("artist_id = ?", artistID)
	if year != 0 {
		q = q.Where("year = ?", year)
	}
	if quarter != 0 {
		q = q.Where("quarter = ?", quarter)
	}
	if err := q.Order("track_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list royalty summaries: %w", err)
	}
	return out, nil
}
