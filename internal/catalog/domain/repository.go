package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository provides catalog persistence. Title lookups are issued in
// bounded-size chunks by the caller to respect backend query limits.
type Repository interface {
	FindByTitles(ctx context.Context, artistID snowflake.ID, titles []string) ([]Track, error)

	// CreateIgnoringConflicts bulk-inserts tracks, silently skipping rows
	// that collide with the (artist_id, title) unique index.
	CreateIgnoringConflicts(ctx context.Context, tracks []*Track) error
}
