package service

import (
	"strings"
	"testing"

	"github.com/smallbiznis/royaltyflow/internal/ingest/columnmap"
	"github.com/smallbiznis/royaltyflow/internal/ingest/domain"
)

func TestParsePayload(t *testing.T) {
	payload := "Song Title,Gross,Net\nSunrise,100.00,85.00\n\"Ocean, Drive\",50.00,42.50\nShort Row,1.00\n"
	headers, rows, err := parsePayload(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(headers) != 3 || headers[0] != "Song Title" {
		t.Fatalf("headers: %v", headers)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1]["Song Title"] != "Ocean, Drive" {
		t.Fatalf("quoted field broken: %v", rows[1])
	}
	if rows[2]["Net"] != "" {
		t.Fatalf("short row should pad empty, got %q", rows[2]["Net"])
	}
}

func TestParsePayloadStripsBOM(t *testing.T) {
	headers, _, err := parsePayload("\ufeffSong Title,Net\nSunrise,1.00\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if headers[0] != "Song Title" {
		t.Fatalf("BOM not stripped: %q", headers[0])
	}
}

func TestNormalizeRowTrimsAndMaps(t *testing.T) {
	mapping := columnmap.Infer([]string{"Track", "Revenue", "Payable", "Country"})
	raw := domain.RawRow{
		"Track":   "  Sunrise  ",
		"Revenue": " 100.00",
		"Payable": "85.00 ",
		"Country": "US",
	}
	row := normalizeRow(raw, mapping, 7)
	if row.Index != 7 {
		t.Fatalf("index = %d", row.Index)
	}
	if row.SongTitle != "Sunrise" || row.Gross != "100.00" || row.Net != "85.00" || row.Territory != "US" {
		t.Fatalf("normalized row wrong: %+v", row)
	}
	// Unmapped fields come out empty.
	if row.ISWC != "" || row.AdminPercent != "" {
		t.Fatalf("unmapped fields should be empty: %+v", row)
	}
}

func TestValidateRowReportsAllViolations(t *testing.T) {
	row := domain.NormalizedRow{
		SongTitle:  "",
		Gross:      "not-a-number",
		Net:        "also bad",
		UsageCount: "1.5",
	}
	v := validateRow(row)
	if v.Valid {
		t.Fatal("expected invalid row")
	}
	if len(v.Errors) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(v.Errors), v.Errors)
	}
	joined := strings.Join(v.Errors, "; ")
	for _, want := range []string{"song title", "gross", "net", "usage count"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
}

func TestValidateRowRejectsInteriorMinusAmounts(t *testing.T) {
	v := validateRow(domain.NormalizedRow{SongTitle: "Sunrise", Gross: "12-34", Net: "1-2"})
	if v.Valid {
		t.Fatal("garbled amounts must not validate")
	}
	joined := strings.Join(v.Errors, "; ")
	for _, want := range []string{"gross", "net"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
}

func TestValidateRowOptionalFieldsMayBeEmpty(t *testing.T) {
	v := validateRow(domain.NormalizedRow{SongTitle: "Sunrise"})
	if !v.Valid {
		t.Fatalf("title-only row should be valid: %v", v.Errors)
	}
}

func TestValidateRowDeterministic(t *testing.T) {
	row := domain.NormalizedRow{SongTitle: "X", Gross: "bad", UsageCount: "nope"}
	first := validateRow(row)
	for i := 0; i < 5; i++ {
		again := validateRow(row)
		if again.Valid != first.Valid || len(again.Errors) != len(first.Errors) {
			t.Fatalf("validation not deterministic")
		}
		for j := range first.Errors {
			if again.Errors[j] != first.Errors[j] {
				t.Fatalf("error order changed: %v vs %v", first.Errors, again.Errors)
			}
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, ok := range []string{"2025-01-15", "01/15/2025", "2025/01/15", "15 Jan 2025", "Jan 15, 2025"} {
		if parseDate(ok) == nil {
			t.Fatalf("parseDate(%q) = nil", ok)
		}
	}
	for _, bad := range []string{"", "  ", "Q1", "2025-13-01"} {
		if parseDate(bad) != nil {
			t.Fatalf("parseDate(%q) should be nil", bad)
		}
	}
}
