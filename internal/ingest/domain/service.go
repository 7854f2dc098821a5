package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidArtist  = errors.New("invalid_artist")
	ErrInvalidYear    = errors.New("invalid_year")
	ErrInvalidQuarter = errors.New("invalid_quarter")
	ErrEmptyPayload   = errors.New("empty_payload")
	ErrNoValidRows    = errors.New("no_valid_rows")
)

// ImportRequest describes one file ingestion run. Payload is the complete
// UTF-8 file text, header row first, supplied by the upload collaborator.
type ImportRequest struct {
	ArtistID snowflake.ID
	Year     int
	Quarter  int
	Payload  string

	Batch    BatchConfig
	Progress ProgressSink
}

// Validate rejects configuration errors before any processing begins.
func (r ImportRequest) Validate() error {
	if r.ArtistID == 0 {
		return ErrInvalidArtist
	}
	if r.Year < 1000 || r.Year > 9999 {
		return ErrInvalidYear
	}
	if r.Quarter < 1 || r.Quarter > 4 {
		return ErrInvalidQuarter
	}
	if r.Payload == "" {
		return ErrEmptyPayload
	}
	return nil
}

// Service runs the ingestion pipeline end to end.
type Service interface {
	// ImportFile parses, validates, resolves, persists and aggregates one
	// royalty statement. A non-nil result is returned together with
	// ErrNoValidRows so callers can still hand the rejection file back.
	ImportFile(ctx context.Context, req ImportRequest) (*ProcessingResult, error)
}
