// Package service implements quarterly royalty aggregation.
package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/smallbiznis/royaltyflow/internal/money"
	"github.com/smallbiznis/royaltyflow/internal/royalty/domain"
)

// unknownBucket collects rows whose platform or territory column was empty.
const unknownBucket = "unknown"

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:   p.Log.Named("royalty.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// bucket tracks streams and revenue for one distribution key.
type bucket struct {
	streams int64
	revenue decimal.Decimal
}

type trackAccumulator struct {
	trackID     snowflake.ID
	streams     int64
	gross       decimal.Decimal
	net         decimal.Decimal
	rowCount    int
	byPlatform  map[string]*bucket
	byTerritory map[string]*bucket
	byMonth     map[string]*bucket
}

func (s *Service) Rebuild(ctx context.Context, artistID snowflake.ID, year, quarter int, records []*domain.Record) ([]*domain.Summary, error) {
	if err := validateKey(artistID, year, quarter); err != nil {
		return nil, err
	}

	accs := make(map[snowflake.ID]*trackAccumulator)
	order := make([]snowflake.ID, 0)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		acc, ok := accs[rec.TrackID]
		if !ok {
			acc = &trackAccumulator{
				trackID:     rec.TrackID,
				gross:       decimal.Zero,
				net:         decimal.Zero,
				byPlatform:  make(map[string]*bucket),
				byTerritory: make(map[string]*bucket),
				byMonth:     make(map[string]*bucket),
			}
			accs[rec.TrackID] = acc
			order = append(order, rec.TrackID)
		}
		acc.fold(rec)
	}

	now := time.Now().UTC()
	summaries := make([]*domain.Summary, 0, len(order))
	for _, trackID := range order {
		summaries = append(summaries, accs[trackID].summarize(s.genID.Generate(), artistID, year, quarter, now))
	}

	if err := s.repo.UpsertSummaries(ctx, summaries); err != nil {
		return nil, err
	}
	s.log.Info("rebuilt royalty summaries",
		zap.String("artist_id", artistID.String()),
		zap.Int("year", year),
		zap.Int("quarter", quarter),
		zap.Int("tracks", len(summaries)),
	)
	return summaries, nil
}

func (s *Service) RebuildFromStore(ctx context.Context, artistID snowflake.ID, year, quarter int) ([]*domain.Summary, error) {
	if err := validateKey(artistID, year, quarter); err != nil {
		return nil, err
	}
	records, err := s.repo.FindByQuarter(ctx, artistID, year, quarter)
	if err != nil {
		return nil, err
	}
	return s.Rebuild(ctx, artistID, year, quarter, records)
}

func (s *Service) ListSummaries(ctx context.Context, req domain.ListSummariesRequest) (domain.ListSummariesResponse, error) {
	if req.ArtistID == 0 {
		return domain.ListSummariesResponse{}, domain.ErrInvalidArtist
	}
	rows, err := s.repo.ListSummaries(ctx, req.ArtistID, req.Year, req.Quarter)
	if err != nil {
		return domain.ListSummariesResponse{}, err
	}
	resp := domain.ListSummariesResponse{Summaries: make([]domain.Summary, 0, len(rows))}
	for _, row := range rows {
		if row == nil {
			continue
		}
		resp.Summaries = append(resp.Summaries, *row)
	}
	return resp, nil
}

func (a *trackAccumulator) fold(rec *domain.Record) {
	a.rowCount++
	a.streams += rec.UsageCount
	a.gross = a.gross.Add(rec.Gross)
	a.net = a.net.Add(rec.Net)

	fold(a.byPlatform, keyOr(rec.Platform), rec)
	fold(a.byTerritory, keyOr(rec.Territory), rec)
	if rec.BroadcastDate != nil {
		fold(a.byMonth, rec.BroadcastDate.Format("2006-01"), rec)
	}
}

func fold(m map[string]*bucket, key string, rec *domain.Record) {
	b, ok := m[key]
	if !ok {
		b = &bucket{revenue: decimal.Zero}
		m[key] = b
	}
	b.streams += rec.UsageCount
	b.revenue = b.revenue.Add(rec.Net)
}

func (a *trackAccumulator) summarize(id, artistID snowflake.ID, year, quarter int, now time.Time) *domain.Summary {
	return &domain.Summary{
		ID:       id,
		ArtistID: artistID,
		TrackID:  a.trackID,
		Year:     year,
		Quarter:  quarter,

		TotalStreams: a.streams,
		TotalGross:   a.gross,
		TotalNet:     a.net,
		AvgPerStream: money.PerUnit(a.net, a.streams),

		TopPlatform:  topKey(a.byPlatform),
		TopTerritory: topKey(a.byTerritory),

		PlatformShare:  shares(a.byPlatform, a.net),
		TerritoryShare: shares(a.byTerritory, a.net),
		MonthShare:     shares(a.byMonth, a.net),

		RowCount:  a.rowCount,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// topKey picks the key with the highest revenue. Ties break toward the
// lexicographically smaller key so the result is deterministic.
func topKey(m map[string]*bucket) string {
	keys := sortedKeys(m)
	top := ""
	best := decimal.Zero
	for _, key := range keys {
		if top == "" || m[key].revenue.GreaterThan(best) {
			top = key
			best = m[key].revenue
		}
	}
	return top
}

// shares renders each bucket as a percentage of total revenue, values kept
// as exact decimal strings.
func shares(m map[string]*bucket, total decimal.Decimal) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for _, key := range sortedKeys(m) {
		out[key] = map[string]interface{}{
			"streams": m[key].streams,
			"revenue": m[key].revenue.String(),
			"share":   money.Share(m[key].revenue, total).String(),
		}
	}
	return out
}

func sortedKeys(m map[string]*bucket) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func keyOr(s string) string {
	if s == "" {
		return unknownBucket
	}
	return s
}

func validateKey(artistID snowflake.ID, year, quarter int) error {
	if artistID == 0 {
		return domain.ErrInvalidArtist
	}
	if year < 1000 || year > 9999 {
		return domain.ErrInvalidYear
	}
	if quarter < 1 || quarter > 4 {
		return domain.ErrInvalidQuarter
	}
	return nil
}
