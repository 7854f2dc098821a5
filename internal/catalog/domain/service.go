package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service resolves track titles to persistent catalog identifiers, creating
// missing entries in bulk.
type Service interface {
	// Resolve returns a complete title -> track id table for the given
	// seeds. A failure here is fatal to an ingestion run: without resolved
	// identifiers no royalty record can be safely attributed.
	Resolve(ctx context.Context, artistID snowflake.ID, seeds []TrackSeed) (*Resolution, error)
}
