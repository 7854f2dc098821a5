// Package money wraps arbitrary-precision decimal parsing and arithmetic for
// royalty amounts. Monetary values never pass through binary floating point.
package money

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Fractional digits carried through division. Enough headroom that summing
// tens of thousands of rows does not drift.
const divisionScale = 10

// ShareScale is the scale used when rendering percentage-of-total shares.
const ShareScale = 2

var ErrMalformed = errors.New("malformed_amount")

// Parse converts a human-formatted amount into a decimal. It is total on all
// inputs: empty or malformed strings resolve to zero so a garbled source row
// is flagged by validation instead of crashing the pipeline.
func Parse(s string) decimal.Decimal {
	d, err := ParseStrict(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseStrict converts a human-formatted amount into a decimal, reporting
// ErrMalformed for values that cannot be read as a number. Accepted noise:
// currency symbols, thousands separators, surrounding whitespace, a trailing
// percent sign and parenthesized negatives.
func ParseStrict(s string) (decimal.Decimal, error) {
	cleaned, negative := clean(s)
	if cleaned == "" {
		return decimal.Zero, ErrMalformed
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrMalformed
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParseCount reads an integer usage count, tolerating thousands separators.
func ParseCount(s string) (int64, error) {
	cleaned, negative := clean(s)
	if cleaned == "" {
		return 0, ErrMalformed
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	if negative {
		n = -n
	}
	return n, nil
}

// PerUnit divides total by count at divisionScale, rounding half-up.
// A zero count yields zero rather than a division error.
func PerUnit(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(count), divisionScale)
}

// Share renders part as a percentage of total, rounded half-up to two
// fractional digits. A zero total yields zero.
func Share(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).DivRound(total, ShareScale)
}

func clean(s string) (cleaned string, negative bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', ' ', '%':
			// formatting noise
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())

	// A minus only negates at the edges (leading, or trailing in the
	// accounting style). Anywhere else the amount is garbled, not negative.
	switch {
	case strings.HasPrefix(out, "-"):
		negative = true
		out = out[1:]
	case strings.HasSuffix(out, "-"):
		negative = true
		out = out[:len(out)-1]
	}
	if strings.ContainsRune(out, '-') {
		return "", negative
	}
	return out, negative
}
