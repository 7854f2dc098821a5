package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/smallbiznis/royaltyflow/internal/royalty/domain"
	"github.com/smallbiznis/royaltyflow/internal/royalty/repository"
)

func setupRoyaltyTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Record{}, &domain.Summary{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Service{log: zap.NewNop(), genID: node, repo: repository.New(db)}, db
}

func date(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRecords(artist, track snowflake.ID) []*domain.Record {
	return []*domain.Record{
		{
			ID: 1, ArtistID: artist, TrackID: track, Year: 2025, Quarter: 1,
			UsageCount: 100, Gross: dec("100.00"), AdminPercent: dec("15"), Net: dec("85.00"),
			BroadcastDate: date("2025-01-15"), Platform: "Spotify", Territory: "US",
		},
		{
			ID: 2, ArtistID: artist, TrackID: track, Year: 2025, Quarter: 1,
			UsageCount: 50, Gross: dec("40.00"), AdminPercent: dec("15"), Net: dec("34.00"),
			BroadcastDate: date("2025-02-10"), Platform: "Apple Music", Territory: "US",
		},
		{
			ID: 3, ArtistID: artist, TrackID: track, Year: 2025, Quarter: 1,
			UsageCount: 30, Gross: dec("10.00"), AdminPercent: dec("15"), Net: dec("8.50"),
			BroadcastDate: date("2025-02-20"), Platform: "Spotify", Territory: "DE",
		},
	}
}

func TestRebuildComputesTotals(t *testing.T) {
	svc, _ := setupRoyaltyTest(t)
	artist, track := snowflake.ID(42), snowflake.ID(9000)

	summaries, err := svc.Rebuild(context.Background(), artist, 2025, 1, testRecords(artist, track))
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	sum := summaries[0]

	if sum.TotalStreams != 180 {
		t.Fatalf("total streams = %d, want 180", sum.TotalStreams)
	}
	if !sum.TotalGross.Equal(dec("150")) {
		t.Fatalf("total gross = %s, want 150", sum.TotalGross)
	}
	if !sum.TotalNet.Equal(dec("127.5")) {
		t.Fatalf("total net = %s, want 127.5", sum.TotalNet)
	}
	if !sum.AvgPerStream.Equal(dec("0.7083333333")) {
		t.Fatalf("avg per stream = %s, want 0.7083333333", sum.AvgPerStream)
	}
	if sum.TopPlatform != "Spotify" {
		t.Fatalf("top platform = %q", sum.TopPlatform)
	}
	if sum.TopTerritory != "US" {
		t.Fatalf("top territory = %q", sum.TopTerritory)
	}
	if sum.RowCount != 3 {
		t.Fatalf("row count = %d, want 3", sum.RowCount)
	}

	platform, ok := sum.PlatformShare["Spotify"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing Spotify platform bucket: %v", sum.PlatformShare)
	}
	// Spotify revenue 93.50 of 127.50 total.
	if platform["share"] != "73.33" {
		t.Fatalf("spotify share = %v, want 73.33", platform["share"])
	}
	if len(sum.MonthShare) != 2 {
		t.Fatalf("expected 2 month buckets, got %d", len(sum.MonthShare))
	}
	if _, ok := sum.MonthShare["2025-02"]; !ok {
		t.Fatalf("missing 2025-02 month bucket: %v", sum.MonthShare)
	}
}

func TestRebuildGroupsByTrack(t *testing.T) {
	svc, _ := setupRoyaltyTest(t)
	artist := snowflake.ID(42)

	records := []*domain.Record{
		{ID: 1, ArtistID: artist, TrackID: 1, Year: 2025, Quarter: 2, UsageCount: 10, Gross: dec("10"), AdminPercent: dec("0"), Net: dec("10"), Platform: "Spotify"},
		{ID: 2, ArtistID: artist, TrackID: 2, Year: 2025, Quarter: 2, UsageCount: 20, Gross: dec("20"), AdminPercent: dec("0"), Net: dec("20"), Platform: "Deezer"},
		{ID: 3, ArtistID: artist, TrackID: 1, Year: 2025, Quarter: 2, UsageCount: 5, Gross: dec("5"), AdminPercent: dec("0"), Net: dec("5")},
	}
	summaries, err := svc.Rebuild(context.Background(), artist, 2025, 2, records)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	byTrack := map[snowflake.ID]*domain.Summary{}
	for _, s := range summaries {
		byTrack[s.TrackID] = s
	}
	if byTrack[1].TotalStreams != 15 || byTrack[2].TotalStreams != 20 {
		t.Fatalf("per-track streams wrong: %d / %d", byTrack[1].TotalStreams, byTrack[2].TotalStreams)
	}
	// Empty platform lands in the unknown bucket.
	if _, ok := byTrack[1].PlatformShare[unknownBucket]; !ok {
		t.Fatalf("expected unknown platform bucket: %v", byTrack[1].PlatformShare)
	}
}

func TestRebuildUpsertsByKey(t *testing.T) {
	svc, db := setupRoyaltyTest(t)
	artist, track := snowflake.ID(42), snowflake.ID(9000)

	if _, err := svc.Rebuild(context.Background(), artist, 2025, 1, testRecords(artist, track)); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	// Second ingestion of the same quarter: fewer rows, different totals.
	corrected := testRecords(artist, track)[:1]
	if _, err := svc.Rebuild(context.Background(), artist, 2025, 1, corrected); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}

	var rows []domain.Summary
	if err := db.Where("artist_id = ?", artist).Find(&rows).Error; err != nil {
		t.Fatalf("load summaries: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 summary row per key, got %d", len(rows))
	}
	// Fully replaced, not merged.
	if rows[0].TotalStreams != 100 {
		t.Fatalf("total streams = %d, want 100 (no double counting)", rows[0].TotalStreams)
	}
	if rows[0].RowCount != 1 {
		t.Fatalf("row count = %d, want 1", rows[0].RowCount)
	}
}

func TestRebuildFromStore(t *testing.T) {
	svc, db := setupRoyaltyTest(t)
	artist, track := snowflake.ID(7), snowflake.ID(8)

	for _, rec := range testRecords(artist, track) {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}
	summaries, err := svc.RebuildFromStore(context.Background(), artist, 2025, 1)
	if err != nil {
		t.Fatalf("rebuild from store: %v", err)
	}
	if len(summaries) != 1 || summaries[0].TotalStreams != 180 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func TestRebuildValidatesKey(t *testing.T) {
	svc, _ := setupRoyaltyTest(t)
	ctx := context.Background()
	if _, err := svc.Rebuild(ctx, 0, 2025, 1, nil); err != domain.ErrInvalidArtist {
		t.Fatalf("expected ErrInvalidArtist, got %v", err)
	}
	if _, err := svc.Rebuild(ctx, 1, 31, 1, nil); err != domain.ErrInvalidYear {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
	if _, err := svc.Rebuild(ctx, 1, 2025, 5, nil); err != domain.ErrInvalidQuarter {
		t.Fatalf("expected ErrInvalidQuarter, got %v", err)
	}
}
