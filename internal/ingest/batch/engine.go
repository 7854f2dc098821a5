// Package batch persists records in fixed-size batches with bounded
// concurrency, per-batch retry with exponential backoff, and independent
// success/failure accounting.
package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/royaltyflow/internal/ingest/domain"
)

// Writer commits one batch. The write must be all-or-nothing: a returned
// error means none of the batch's records were persisted.
type Writer[T any] interface {
	WriteBatch(ctx context.Context, records []T) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc[T any] func(ctx context.Context, records []T) error

func (f WriterFunc[T]) WriteBatch(ctx context.Context, records []T) error {
	return f(ctx, records)
}

// Outcome is the combined accounting of one engine run. Inserted plus Failed
// always equals the number of input records.
type Outcome struct {
	Inserted int
	Failed   int
	Batches  []domain.BatchResult
	Elapsed  time.Duration
}

type Engine[T any] struct {
	writer Writer[T]
	cfg    domain.BatchConfig
	sink   domain.ProgressSink
	log    *zap.Logger
}

func NewEngine[T any](writer Writer[T], cfg domain.BatchConfig, sink domain.ProgressSink, log *zap.Logger) *Engine[T] {
	if sink == nil {
		sink = domain.NopSink{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine[T]{
		writer: writer,
		cfg:    cfg.WithDefaults(),
		sink:   sink,
		log:    log.Named("ingest.batch"),
	}
}

// Run partitions records in original order and processes them in sequential
// waves of at most MaxConcurrency concurrent batch writes. Wave N+1 never
// starts before every batch in wave N has terminated. Cancellation is
// honored between waves; batches not yet dispatched are accounted as failed.
func (e *Engine[T]) Run(ctx context.Context, records []T) (*Outcome, error) {
	started := time.Now()
	batches := partition(records, e.cfg.BatchSize)
	outcome := &Outcome{Batches: make([]domain.BatchResult, len(batches))}

	aborted := false
	var abortErr error
	for waveStart := 0; waveStart < len(batches); waveStart += e.cfg.MaxConcurrency {
		if err := ctx.Err(); err != nil {
			aborted = true
			abortErr = err
			e.failRemaining(outcome, batches, waveStart, "run canceled")
			break
		}
		waveEnd := waveStart + e.cfg.MaxConcurrency
		if waveEnd > len(batches) {
			waveEnd = len(batches)
		}

		var wg sync.WaitGroup
		for i := waveStart; i < waveEnd; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				outcome.Batches[idx] = e.writeWithRetry(ctx, idx, batches[idx])
			}(i)
		}
		wg.Wait()

		waveFailed := false
		for i := waveStart; i < waveEnd; i++ {
			outcome.Inserted += outcome.Batches[i].Inserted
			outcome.Failed += outcome.Batches[i].Failed
			if outcome.Batches[i].Failed > 0 {
				waveFailed = true
			}
		}
		e.publishProgress(outcome, len(records), started)

		if waveFailed && e.cfg.StopOnError {
			e.failRemaining(outcome, batches, waveEnd, "aborted after batch failure")
			break
		}
	}

	outcome.Elapsed = time.Since(started)
	if aborted {
		return outcome, abortErr
	}
	return outcome, nil
}

func (e *Engine[T]) writeWithRetry(ctx context.Context, idx int, records []T) domain.BatchResult {
	started := time.Now()
	result := domain.BatchResult{BatchIndex: idx, Size: len(records)}

	delay := e.cfg.RetryDelay
	var lastErr error
	var attempt int
	for ; attempt <= e.cfg.RetryAttempts; attempt++ {
		if err := e.writer.WriteBatch(ctx, records); err == nil {
			result.Inserted = len(records)
			result.RetryCount = attempt
			result.Elapsed = time.Since(started)
			return result
		} else {
			lastErr = err
		}
		if attempt == e.cfg.RetryAttempts {
			break
		}
		e.log.Warn("batch write failed, retrying",
			zap.Int("batch", idx),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)
		if !sleep(ctx, delay) {
			break
		}
		delay *= 2
	}

	// attempt holds the index of the last write actually made, so an
	// interrupted backoff does not claim retries that never ran.
	result.Failed = len(records)
	result.RetryCount = attempt
	result.Error = lastErr.Error()
	result.Elapsed = time.Since(started)
	return result
}

func (e *Engine[T]) failRemaining(outcome *Outcome, batches [][]T, from int, reason string) {
	for i := from; i < len(batches); i++ {
		if outcome.Batches[i].Size != 0 {
			continue
		}
		outcome.Batches[i] = domain.BatchResult{
			BatchIndex: i,
			Size:       len(batches[i]),
			Failed:     len(batches[i]),
			Error:      reason,
		}
		outcome.Failed += len(batches[i])
	}
}

func (e *Engine[T]) publishProgress(outcome *Outcome, total int, started time.Time) {
	elapsed := time.Since(started)
	done := outcome.Inserted + outcome.Failed
	var percent, rate float64
	if total > 0 {
		percent = float64(done) / float64(total) * 100
	}
	var remaining time.Duration
	if elapsed > 0 {
		rate = float64(done) / elapsed.Seconds()
		if rate > 0 && done < total {
			remaining = time.Duration(float64(total-done)/rate) * time.Second
		}
	}
	e.sink.Publish(domain.ProgressEvent{
		Stage:         domain.StageInserting,
		Percent:       percent,
		Processed:     done,
		Total:         total,
		Inserted:      outcome.Inserted,
		Failed:        outcome.Failed,
		Elapsed:       elapsed,
		RowsPerSecond: rate,
		Remaining:     remaining,
	})
}

func partition[T any](records []T, size int) [][]T {
	if size <= 0 || len(records) == 0 {
		if len(records) == 0 {
			return nil
		}
		return [][]T{records}
	}
	batches := make([][]T, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

// sleep waits for d or until ctx is done; returns false when interrupted.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
