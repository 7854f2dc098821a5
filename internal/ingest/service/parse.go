package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smallbiznis/royaltyflow/internal/ingest/domain"
)

// parsePayload reads the complete file text into a header slice and one
// RawRow per data line. Column order is unconstrained; rows shorter than the
// header are padded with empty values, longer rows have extras dropped.
func parsePayload(payload string) ([]string, []domain.RawRow, error) {
	payload = strings.TrimPrefix(payload, "\ufeff")

	r := csv.NewReader(strings.NewReader(payload))
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []domain.RawRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read data row %d: %w", len(rows)+1, err)
		}
		row := make(domain.RawRow, len(headers))
		for i, col := range headers {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// Broadcast dates arrive in whatever format the statement author used.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// parseDate returns nil for empty or unrecognized values; an unreadable date
// is not a validation failure, the row just drops out of the monthly
// distribution.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return &d
		}
	}
	return nil
}
