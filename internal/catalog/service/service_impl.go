// Package service implements the catalog resolver.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/royaltyflow/internal/cache"
	"github.com/smallbiznis/royaltyflow/internal/catalog/domain"
)

// lookupChunkSize bounds the number of titles per IN query. Managed backends
// cap the size of disjunctive lookups, so batches stay small.
const lookupChunkSize = 30

const cacheTTL = 10 * time.Minute

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

	// title cache keyed by "<artist>|<title>", shared across runs in-process
	titles *cache.TTLCache[string, snowflake.ID]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:    p.Log.Named("catalog.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		titles: cache.NewTTLCache[string, snowflake.ID](),
	}
}

func (s *Service) Resolve(ctx context.Context, artistID snowflake.ID, seeds []domain.TrackSeed) (*domain.Resolution, error) {
	if artistID == 0 {
		return nil, domain.ErrInvalidArtist
	}

	// Distinct titles, first-seen seed wins for composer/code metadata.
	ordered := make([]string, 0, len(seeds))
	byTitle := make(map[string]domain.TrackSeed, len(seeds))
	for _, seed := range seeds {
		title := strings.TrimSpace(seed.Title)
		if title == "" {
			continue
		}
		if _, ok := byTitle[title]; ok {
			continue
		}
		byTitle[title] = seed
		ordered = append(ordered, title)
	}

	res := &domain.Resolution{Tracks: make(map[string]snowflake.ID, len(ordered))}

	uncached := make([]string, 0, len(ordered))
	for _, title := range ordered {
		if id, ok := s.titles.Get(s.cacheKey(artistID, title)); ok {
			res.Tracks[title] = id
			res.Matched++
			continue
		}
		uncached = append(uncached, title)
	}

	found, err := s.lookup(ctx, artistID, uncached)
	if err != nil {
		return nil, err
	}
	missing := make([]string, 0, len(uncached))
	for _, title := range uncached {
		if id, ok := found[title]; ok {
			res.Tracks[title] = id
			res.Matched++
			continue
		}
		missing = append(missing, title)
	}

	if len(missing) > 0 {
		if err := s.createMissing(ctx, artistID, missing, byTitle); err != nil {
			return nil, err
		}
		// Re-read instead of trusting generated ids: a concurrent run may
		// have won the unique-index race, and its row is the canonical one.
		created, err := s.lookup(ctx, artistID, missing)
		if err != nil {
			return nil, err
		}
		for _, title := range missing {
			id, ok := created[title]
			if !ok {
				return nil, fmt.Errorf("%w: track %q not found after create", domain.ErrBulkCreate, title)
			}
			res.Tracks[title] = id
			res.Created++
		}
		s.log.Info("created catalog entries",
			zap.String("artist_id", artistID.String()),
			zap.Int("created", res.Created),
			zap.Int("matched", res.Matched),
		)
	}

	for title, id := range res.Tracks {
		s.titles.Set(s.cacheKey(artistID, title), id, cacheTTL)
	}
	return res, nil
}

func (s *Service) lookup(ctx context.Context, artistID snowflake.ID, titles []string) (map[string]snowflake.ID, error) {
	found := make(map[string]snowflake.ID, len(titles))
	for start := 0; start < len(titles); start += lookupChunkSize {
		end := start + lookupChunkSize
		if end > len(titles) {
			end = len(titles)
		}
		tracks, err := s.repo.FindByTitles(ctx, artistID, titles[start:end])
		if err != nil {
			return nil, err
		}
		for _, track := range tracks {
			found[track.Title] = track.ID
		}
	}
	return found, nil
}

func (s *Service) createMissing(ctx context.Context, artistID snowflake.ID, titles []string, byTitle map[string]domain.TrackSeed) error {
	now := time.Now().UTC()
	tracks := make([]*domain.Track, 0, len(titles))
	for _, title := range titles {
		seed := byTitle[title]
		tracks = append(tracks, &domain.Track{
			ID:           s.genID.Generate(),
			ArtistID:     artistID,
			Title:        title,
			Composer:     strings.TrimSpace(seed.Composer),
			ExternalCode: strings.TrimSpace(seed.ExternalCode),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := s.repo.CreateIgnoringConflicts(ctx, tracks); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBulkCreate, err)
	}
	return nil
}

func (s *Service) cacheKey(artistID snowflake.ID, title string) string {
	return artistID.String() + "|" + title
}
