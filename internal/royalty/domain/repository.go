package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository provides royalty persistence. InsertBatch is all-or-nothing:
// either every record in the slice lands or none do, which is what lets the
// batch engine account whole batches on failure.
type Repository interface {
	InsertBatch(ctx context.Context, records []*Record) error
	FindByQuarter(ctx context.Context, artistID snowflake.ID, year, quarter int) ([]*Record, error)

	// UpsertSummaries replaces any existing summary with the same
	// aggregation key. Never merges: re-ingested quarters must not
	// double-count prior totals.
	UpsertSummaries(ctx context.Context, summaries []*Summary) error
	ListSummaries(ctx context.Context, artistID snowflake.ID, year, quarter int) ([]*Summary, error)
}
