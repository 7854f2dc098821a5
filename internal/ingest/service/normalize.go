package service

import (
	"strings"

	"github.com/smallbiznis/royaltyflow/internal/ingest/columnmap"
	"github.com/smallbiznis/royaltyflow/internal/ingest/domain"
	"github.com/smallbiznis/royaltyflow/internal/money"
)

// normalizeRow extracts the canonical fields from one raw row using the
// file's column mapping. Unmapped fields come out empty.
func normalizeRow(raw domain.RawRow, mapping columnmap.Mapping, index int) domain.NormalizedRow {
	field := func(f columnmap.Field) string {
		col, ok := mapping.Column(f)
		if !ok {
			return ""
		}
		return strings.TrimSpace(raw[col])
	}
	return domain.NormalizedRow{
		Index:        index,
		SongTitle:    field(columnmap.FieldSongTitle),
		ISWC:         field(columnmap.FieldISWC),
		Composer:     field(columnmap.FieldComposer),
		Date:         field(columnmap.FieldDate),
		Territory:    field(columnmap.FieldTerritory),
		Source:       field(columnmap.FieldSource),
		UsageCount:   field(columnmap.FieldUsageCount),
		Gross:        field(columnmap.FieldGross),
		AdminPercent: field(columnmap.FieldAdminPercent),
		Net:          field(columnmap.FieldNet),
	}
}

// validateRow checks every rule independently so a row reports all of its
// violations, not just the first.
func validateRow(row domain.NormalizedRow) domain.ValidatedRow {
	var errs []string

	if row.SongTitle == "" {
		errs = append(errs, "song title is required")
	}
	if row.Gross != "" {
		if _, err := money.ParseStrict(row.Gross); err != nil {
			errs = append(errs, "gross is not a valid amount")
		}
	}
	if row.AdminPercent != "" {
		if _, err := money.ParseStrict(row.AdminPercent); err != nil {
			errs = append(errs, "admin percent is not a valid amount")
		}
	}
	if row.Net != "" {
		if _, err := money.ParseStrict(row.Net); err != nil {
			errs = append(errs, "net is not a valid amount")
		}
	}
	if row.UsageCount != "" {
		if _, err := money.ParseCount(row.UsageCount); err != nil {
			errs = append(errs, "usage count is not a valid integer")
		}
	}

	return domain.ValidatedRow{
		NormalizedRow: row,
		Valid:         len(errs) == 0,
		Errors:        errs,
	}
}
