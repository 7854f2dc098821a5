package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service computes and serves quarterly per-track summaries.
type Service interface {
	// Rebuild aggregates the given records for one artist/quarter and
	// upserts one Summary per track, fully replacing prior rows for the
	// same keys.
	Rebuild(ctx context.Context, artistID snowflake.ID, year, quarter int, records []*Record) ([]*Summary, error)

	// RebuildFromStore re-reads the quarter's persisted records and
	// rebuilds its summaries.
	RebuildFromStore(ctx context.Context, artistID snowflake.ID, year, quarter int) ([]*Summary, error)

	ListSummaries(ctx context.Context, req ListSummariesRequest) (ListSummariesResponse, error)
}

// ListSummariesRequest selects summaries for one artist quarter.
type ListSummariesRequest struct {
	ArtistID snowflake.ID
	Year     int
	Quarter  int
}

// ListSummariesResponse is the dashboard-facing read model.
type ListSummariesResponse struct {
	Summaries []Summary `json:"summaries"`
}
