// Package columnmap infers which source column feeds each canonical royalty
// field from a file's header row. Statement files arrive with human-authored
// headers, so matching tolerates naming and case variation.
package columnmap

import "strings"

// Field is one of the ten canonical royalty attributes.
type Field string

const (
	FieldSongTitle    Field = "songTitle"
	FieldISWC         Field = "iswc"
	FieldComposer     Field = "composer"
	FieldDate         Field = "date"
	FieldTerritory    Field = "territory"
	FieldSource       Field = "source"
	FieldUsageCount   Field = "usageCount"
	FieldGross        Field = "gross"
	FieldAdminPercent Field = "adminPercent"
	FieldNet          Field = "net"
)

// Fields lists every canonical field in a stable order. The rejection file
// renderer and tests rely on this ordering.
var Fields = []Field{
	FieldSongTitle,
	FieldISWC,
	FieldComposer,
	FieldDate,
	FieldTerritory,
	FieldSource,
	FieldUsageCount,
	FieldGross,
	FieldAdminPercent,
	FieldNet,
}

// spellings holds the accepted header spellings per field, in priority order.
// Earlier entries win when several headers could serve the same field.
var spellings = map[Field][]string{
	FieldSongTitle: {
		"Song Title", "song_title", "SongTitle", "Title", "Track Title", "Track", "Work Title",
	},
	FieldISWC: {
		"ISWC", "iswc", "ISWC Code", "Work Code", "Work ID",
	},
	FieldComposer: {
		"Composer", "composer", "Writer", "Author", "Songwriter",
	},
	FieldDate: {
		"Date", "date", "Broadcast Date", "Usage Date", "Transaction Date", "Period",
	},
	FieldTerritory: {
		"Territory", "territory", "Country", "Region", "Market",
	},
	FieldSource: {
		"Source", "source", "Platform", "Service", "DSP", "Store", "Channel",
	},
	FieldUsageCount: {
		"Usage Count", "usage_count", "Usages", "Streams", "Plays", "Units", "Quantity", "Count",
	},
	FieldGross: {
		"Gross", "gross", "Gross Amount", "Gross Royalty", "Amount Gross", "Gross Revenue", "Revenue",
	},
	FieldAdminPercent: {
		"Admin %", "admin_percent", "Admin Percent", "Admin Fee %", "Admin Fee", "Commission %", "Commission",
	},
	FieldNet: {
		"Net", "net", "Net Amount", "Net Royalty", "Amount Net", "Net Revenue", "Payable",
	},
}

// Mapping records, per canonical field, the source column it was matched to.
// Unmatched fields are absent.
type Mapping map[Field]string

// Infer builds a Mapping from the header row. For each field the accepted
// spellings are tried in priority order, first with an exact case-sensitive
// pass and then case-insensitively. Pure function of the header slice.
func Infer(headers []string) Mapping {
	m := make(Mapping, len(Fields))
	for _, field := range Fields {
		if col, ok := match(headers, spellings[field]); ok {
			m[field] = col
		}
	}
	return m
}

// Column returns the source column matched to field, if any.
func (m Mapping) Column(field Field) (string, bool) {
	col, ok := m[field]
	return col, ok
}

// Complete reports whether every canonical field was matched.
func (m Mapping) Complete() bool {
	return len(m) == len(Fields)
}

func match(headers, accepted []string) (string, bool) {
	for _, want := range accepted {
		for _, h := range headers {
			if h == want {
				return h, true
			}
		}
	}
	for _, want := range accepted {
		for _, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return h, true
			}
		}
	}
	return "", false
}
