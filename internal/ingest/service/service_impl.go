// Package service orchestrates the royalty ingestion pipeline: parse, map,
// normalize, validate, resolve catalog, persist in batches, aggregate.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	catalogdomain "github.com/smallbiznis/royaltyflow/internal/catalog/domain"
	"github.com/smallbiznis/royaltyflow/internal/ingest/batch"
	"github.com/smallbiznis/royaltyflow/internal/ingest/columnmap"
	"github.com/smallbiznis/royaltyflow/internal/ingest/domain"
	"github.com/smallbiznis/royaltyflow/internal/ingest/report"
	"github.com/smallbiznis/royaltyflow/internal/money"
	royaltydomain "github.com/smallbiznis/royaltyflow/internal/royalty/domain"
)

type ServiceParam struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	CatalogSvc catalogdomain.Service
	RoyaltySvc royaltydomain.Service
	Royalties  royaltydomain.Repository
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	catalogSvc catalogdomain.Service
	royaltySvc royaltydomain.Service
	royalties  royaltydomain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:        p.Log.Named("ingest.service"),
		genID:      p.GenID,
		catalogSvc: p.CatalogSvc,
		royaltySvc: p.RoyaltySvc,
		royalties:  p.Royalties,
	}
}

func (s *Service) ImportFile(ctx context.Context, req domain.ImportRequest) (*domain.ProcessingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg := req.Batch.WithDefaults()
	sink := req.Progress
	if sink == nil {
		sink = report.NewLogSink(s.log)
	}
	started := time.Now()

	sink.Publish(domain.ProgressEvent{Stage: domain.StageParsing})
	headers, raws, err := parsePayload(req.Payload)
	if err != nil {
		s.publishFailed(sink, started)
		return nil, err
	}
	mapping := columnmap.Infer(headers)

	sink.Publish(domain.ProgressEvent{
		Stage:   domain.StageProcessing,
		Total:   len(raws),
		Elapsed: time.Since(started),
	})

	now := time.Now().UTC()
	var valids []domain.ValidatedRow
	var validRaws []domain.RawRow
	var failedRows []domain.FailedRow
	for i, raw := range raws {
		row := validateRow(normalizeRow(raw, mapping, i))
		if !row.Valid {
			failedRows = append(failedRows, domain.FailedRow{
				Index:    i,
				Raw:      raw,
				Message:  strings.Join(row.Errors, "; "),
				FailedAt: now,
			})
			continue
		}
		valids = append(valids, row)
		validRaws = append(validRaws, raw)
	}

	res := &domain.ProcessingResult{
		RowsProcessed: len(raws),
		ValidRows:     len(valids),
		InvalidRows:   len(failedRows),
	}

	if len(valids) == 0 {
		s.finishFailedRows(res, headers, failedRows, started)
		s.publishFailed(sink, started)
		return res, domain.ErrNoValidRows
	}

	seeds := make([]catalogdomain.TrackSeed, 0, len(valids))
	for _, row := range valids {
		seeds = append(seeds, catalogdomain.TrackSeed{
			Title:        row.SongTitle,
			Composer:     row.Composer,
			ExternalCode: row.ISWC,
		})
	}
	resolution, err := s.catalogSvc.Resolve(ctx, req.ArtistID, seeds)
	if err != nil {
		s.publishFailed(sink, started)
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	res.TracksCreated = resolution.Created
	res.TracksMatched = resolution.Matched

	records := s.buildRecords(req, valids, resolution.Tracks)

	writer := batch.WriterFunc[*royaltydomain.Record](func(ctx context.Context, recs []*royaltydomain.Record) error {
		return s.royalties.InsertBatch(ctx, recs)
	})
	outcome, runErr := batch.NewEngine[*royaltydomain.Record](writer, cfg, sink, s.log).Run(ctx, records)
	res.Inserted = outcome.Inserted
	res.Failed = outcome.Failed
	res.Batches = outcome.Batches

	// Attribute rows of exhausted-retry batches back to their source lines
	// so they land in the rejection file too.
	inserted := make([]*royaltydomain.Record, 0, outcome.Inserted)
	failedAt := time.Now().UTC()
	for _, b := range outcome.Batches {
		lo := b.BatchIndex * cfg.BatchSize
		hi := lo + b.Size
		if b.Failed > 0 {
			for j := lo; j < hi; j++ {
				failedRows = append(failedRows, domain.FailedRow{
					Index:    valids[j].Index,
					Raw:      validRaws[j],
					Message:  "batch insert failed: " + b.Error,
					FailedAt: failedAt,
				})
			}
			continue
		}
		inserted = append(inserted, records[lo:hi]...)
	}
	s.finishFailedRows(res, headers, failedRows, started)

	if runErr != nil {
		s.publishFailed(sink, started)
		return res, runErr
	}

	if len(inserted) > 0 {
		if _, err := s.royaltySvc.Rebuild(ctx, req.ArtistID, req.Year, req.Quarter, inserted); err != nil {
			s.publishFailed(sink, started)
			return res, fmt.Errorf("rebuild summaries: %w", err)
		}
	}

	res.Success = true
	sink.Publish(domain.ProgressEvent{
		Stage:         domain.StageCompleted,
		Percent:       100,
		Processed:     res.RowsProcessed,
		Total:         res.RowsProcessed,
		Inserted:      res.Inserted,
		Failed:        res.Failed,
		Elapsed:       res.Duration,
		RowsPerSecond: res.RowsPerSecond,
	})
	s.log.Info("ingestion completed",
		zap.String("artist_id", req.ArtistID.String()),
		zap.Int("year", req.Year),
		zap.Int("quarter", req.Quarter),
		zap.Int("rows", res.RowsProcessed),
		zap.Int("inserted", res.Inserted),
		zap.Int("failed", res.Failed),
		zap.Int("tracks_created", res.TracksCreated),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Service) buildRecords(req domain.ImportRequest, rows []domain.ValidatedRow, tracks map[string]snowflake.ID) []*royaltydomain.Record {
	createdAt := time.Now().UTC()
	records := make([]*royaltydomain.Record, 0, len(rows))
	for _, row := range rows {
		var usage int64
		if row.UsageCount != "" {
			usage, _ = money.ParseCount(row.UsageCount)
		}
		records = append(records, &royaltydomain.Record{
			ID:       s.genID.Generate(),
			ArtistID: req.ArtistID,
			TrackID:  tracks[row.SongTitle],
			Year:     req.Year,
			Quarter:  req.Quarter,

			UsageCount:   usage,
			Gross:        money.Parse(row.Gross),
			AdminPercent: money.Parse(row.AdminPercent),
			// Net is stored as reported, never recomputed from gross and
			// admin percent.
			Net: money.Parse(row.Net),

			BroadcastDate: parseDate(row.Date),
			Platform:      row.Source,
			Territory:     row.Territory,
			CreatedAt:     createdAt,
		})
	}
	return records
}

func (s *Service) finishFailedRows(res *domain.ProcessingResult, headers []string, failedRows []domain.FailedRow, started time.Time) {
	sort.SliceStable(failedRows, func(i, j int) bool {
		return failedRows[i].Index < failedRows[j].Index
	})
	res.FailedRows = failedRows
	if len(failedRows) > 0 {
		if rendered, err := report.RenderRejections(headers, failedRows); err == nil {
			res.RejectionFile = rendered
		} else {
			s.log.Warn("render rejection file failed", zap.Error(err))
		}
	}
	res.Duration = time.Since(started)
	if secs := res.Duration.Seconds(); secs > 0 {
		res.RowsPerSecond = float64(res.RowsProcessed) / secs
	}
}

func (s *Service) publishFailed(sink domain.ProgressSink, started time.Time) {
	sink.Publish(domain.ProgressEvent{
		Stage:   domain.StageFailed,
		Elapsed: time.Since(started),
	})
}
