// Package domain contains catalog models and the resolver contract.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidArtist = errors.New("invalid_artist")
	ErrBulkCreate    = errors.New("track_bulk_create_failed")
)

// Track is one catalog entry. Created lazily the first time a title is seen
// for an artist; never deleted by the ingestion pipeline. The (artist_id,
// title) unique index makes concurrent ingestion runs conflict-safe.
type Track struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ArtistID snowflake.ID `gorm:"not null;uniqueIndex:idx_tracks_artist_title,priority:1" json:"artist_id"`
	Title    string       `gorm:"type:text;not null;uniqueIndex:idx_tracks_artist_title,priority:2" json:"title"`

	Composer     string `gorm:"type:text" json:"composer,omitempty"`
	ExternalCode string `gorm:"type:text" json:"external_code,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Track) TableName() string { return "tracks" }

// TrackSeed carries the metadata used when a missing title has to be created,
// taken from the title's first occurring row.
type TrackSeed struct {
	Title        string
	Composer     string
	ExternalCode string
}

// Resolution is the lookup table produced by one resolver run.
type Resolution struct {
	// Tracks maps title to the persistent track id.
	Tracks map[string]snowflake.ID

	Created int
	Matched int
}
