// Package domain contains royalty persistence models and the aggregation
// contract.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrInvalidArtist  = errors.New("invalid_artist")
	ErrInvalidYear    = errors.New("invalid_year")
	ErrInvalidQuarter = errors.New("invalid_quarter")
)

// Record is the unit of royalty persistence. Net is stored exactly as the
// source file reported it, never recomputed from gross and admin percent.
type Record struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ArtistID snowflake.ID `gorm:"not null;index:idx_royalty_records_key" json:"artist_id"`
	TrackID  snowflake.ID `gorm:"not null;index:idx_royalty_records_key" json:"track_id"`
	Year     int          `gorm:"not null;index:idx_royalty_records_key" json:"year"`
	Quarter  int          `gorm:"not null;index:idx_royalty_records_key" json:"quarter"`

	UsageCount   int64           `gorm:"not null" json:"usage_count"`
	Gross        decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"gross"`
	AdminPercent decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"admin_percent"`
	Net          decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"net"`

	BroadcastDate *time.Time `gorm:"" json:"broadcast_date,omitempty"`
	Platform      string     `gorm:"type:text" json:"platform"`
	Territory     string     `gorm:"type:text" json:"territory"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "royalty_records" }

// AggregationKey uniquely identifies one summary row.
type AggregationKey struct {
	ArtistID snowflake.ID
	TrackID  snowflake.ID
	Year     int
	Quarter  int
}

// Summary is the derived per-track quarterly rollup. It is a replaceable
// cache: re-ingestion of a quarter fully replaces the row for its key.
type Summary struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ArtistID snowflake.ID `gorm:"not null;uniqueIndex:idx_royalty_summaries_key,priority:1" json:"artist_id"`
	TrackID  snowflake.ID `gorm:"not null;uniqueIndex:idx_royalty_summaries_key,priority:2" json:"track_id"`
	Year     int          `gorm:"not null;uniqueIndex:idx_royalty_summaries_key,priority:3" json:"year"`
	Quarter  int          `gorm:"not null;uniqueIndex:idx_royalty_summaries_key,priority:4" json:"quarter"`

	TotalStreams int64           `gorm:"not null" json:"total_streams"`
	TotalGross   decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"total_gross"`
	TotalNet     decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"total_net"`
	AvgPerStream decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"avg_per_stream"`

	TopPlatform  string `gorm:"type:text" json:"top_platform"`
	TopTerritory string `gorm:"type:text" json:"top_territory"`

	// Percentage-of-total revenue shares, values rendered as exact decimal
	// strings.
	PlatformShare  datatypes.JSONMap `gorm:"type:jsonb" json:"platform_share"`
	TerritoryShare datatypes.JSONMap `gorm:"type:jsonb" json:"territory_share"`
	MonthShare     datatypes.JSONMap `gorm:"type:jsonb" json:"month_share"`

	RowCount int `gorm:"not null" json:"row_count"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Summary) TableName() string { return "royalty_summaries" }

// Key returns the summary's aggregation key.
func (s Summary) Key() AggregationKey {
	return AggregationKey{ArtistID: s.ArtistID, TrackID: s.TrackID, Year: s.Year, Quarter: s.Quarter}
}
