// Package domain holds the data model and contract for the royalty ingestion
// pipeline.
package domain

import (
	"time"
)

// RawRow maps source column names to raw string values for one data line.
// Discarded after normalization.
type RawRow map[string]string

// NormalizedRow carries the ten canonical fields of one row. Numeric fields
// stay in string form so no precision is lost before arithmetic. Index is the
// zero-based data-row position for error attribution.
type NormalizedRow struct {
	Index int

	SongTitle    string
	ISWC         string
	Composer     string
	Date         string
	Territory    string
	Source       string
	UsageCount   string
	Gross        string
	AdminPercent string
	Net          string
}

// ValidatedRow is a NormalizedRow plus its validation verdict. Invalid rows
// never reach persistence.
type ValidatedRow struct {
	NormalizedRow

	Valid  bool
	Errors []string
}

// FailedRow records a rejected row for the re-uploadable rejection file.
type FailedRow struct {
	Index    int
	Raw      RawRow
	Message  string
	FailedAt time.Time
}

// BatchConfig tunes the batch insert engine. It is an explicit value passed
// in per run so concurrent runs with different tuning cannot interfere.
type BatchConfig struct {
	BatchSize      int
	MaxConcurrency int
	RetryAttempts  int
	RetryDelay     time.Duration

	// StopOnError aborts the run after the first failed batch. The zero
	// value keeps going, so later batches still get their attempts.
	StopOnError bool
}

// DefaultBatchConfig returns the stock tuning.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:      500,
		MaxConcurrency: 3,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
	}
}

// WithDefaults fills zero or negative fields from DefaultBatchConfig.
// RetryAttempts of zero is a valid setting and is kept.
func (c BatchConfig) WithDefaults() BatchConfig {
	defaults := DefaultBatchConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = defaults.MaxConcurrency
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = defaults.RetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaults.RetryDelay
	}
	return c
}

// BatchResult accounts for one attempted batch. Never mutated after the
// engine returns it.
type BatchResult struct {
	BatchIndex int
	Size       int
	Inserted   int
	Failed     int
	RetryCount int
	Error      string
	Elapsed    time.Duration
}

// ProcessingResult is the outcome of one ingestion run. A run with rejected
// rows is still a success as long as the catalog resolved and at least one
// row was valid.
type ProcessingResult struct {
	Success bool

	RowsProcessed int
	ValidRows     int
	InvalidRows   int
	Inserted      int
	Failed        int
	TracksCreated int
	TracksMatched int

	Batches []BatchResult

	FailedRows    []FailedRow
	RejectionFile string

	Duration      time.Duration
	RowsPerSecond float64
}
