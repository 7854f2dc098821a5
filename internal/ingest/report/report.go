// Package report renders rejection files and publishes ingestion progress.
package report

import (
	"bytes"
	"encoding/csv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/royaltyflow/internal/ingest/domain"
)

// LogSink publishes progress events to the structured log.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.Named("ingest.progress")}
}

func (s *LogSink) Publish(e domain.ProgressEvent) {
	s.log.Info("ingestion progress",
		zap.String("stage", string(e.Stage)),
		zap.Float64("percent", e.Percent),
		zap.Int("processed", e.Processed),
		zap.Int("total", e.Total),
		zap.Int("inserted", e.Inserted),
		zap.Int("failed", e.Failed),
		zap.Duration("elapsed", e.Elapsed),
		zap.Float64("rows_per_second", e.RowsPerSecond),
		zap.Duration("remaining", e.Remaining),
	)
}

// Recorder collects every published event. Used by tests and by callers that
// relay progress elsewhere.
type Recorder struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (r *Recorder) Publish(e domain.ProgressEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []domain.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

// RenderRejections writes the failed rows back into the tabular format the
// pipeline accepts as input: the original header row and column order, plus
// appended Error and Timestamp columns, so a caller can fix and re-submit
// only the rejected subset.
func RenderRejections(headers []string, rows []domain.FailedRow) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(headers)+2)
	header = append(header, headers...)
	header = append(header, "Error", "Timestamp")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, row := range rows {
		record := make([]string, 0, len(headers)+2)
		for _, col := range headers {
			record = append(record, row.Raw[col])
		}
		record = append(record, row.Message, row.FailedAt.UTC().Format(time.RFC3339))
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
