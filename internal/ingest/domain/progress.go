package domain

import "time"

// Stage identifies where a run is in its lifecycle. Stages are emitted in
// strict order: parsing, processing, inserting, then completed or failed.
type Stage string

const (
	StageParsing    Stage = "parsing"
	StageProcessing Stage = "processing"
	StageInserting  Stage = "inserting"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// ProgressEvent is a point-in-time snapshot of a running ingestion.
type ProgressEvent struct {
	Stage         Stage
	Percent       float64
	Processed     int
	Total         int
	Inserted      int
	Failed        int
	Elapsed       time.Duration
	RowsPerSecond float64
	Remaining     time.Duration
}

// ProgressSink receives progress events. Implementations must be safe for
// use from a single goroutine at a time; the pipeline publishes sequentially.
type ProgressSink interface {
	Publish(ProgressEvent)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Publish(ProgressEvent) {}
