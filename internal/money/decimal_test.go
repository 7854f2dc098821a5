package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"100.00", "100"},
		{"$1,234.56", "1234.56"},
		{"€2.500,00", "2.5"}, // continental separators are not guessed; dot stays the point
		{"(42.50)", "-42.5"},
		{"-7.25", "-7.25"},
		{"15%", "15"},
		{"  0.0000000001 ", "0.0000000001"},
		{"", "0"},
		{"not-a-number", "0"},
		{"12.34.56", "0"},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		want, err := decimal.NewFromString(tc.want)
		if err != nil {
			t.Fatalf("bad case %q: %v", tc.want, err)
		}
		if !got.Equal(want) {
			t.Fatalf("Parse(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{"$1,234.56", "(99.99)", "0.1234567891", "15%"}
	for _, in := range inputs {
		first := Parse(in)
		second := Parse(first.String())
		if !first.Equal(second) {
			t.Fatalf("Parse not idempotent for %q: %s then %s", in, first, second)
		}
	}
}

func TestParseStrictRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12x", "--", "12-34", "1-2", "-5-"} {
		if _, err := ParseStrict(in); err == nil {
			t.Fatalf("ParseStrict(%q) expected error", in)
		}
	}
	if _, err := ParseStrict("$10.00"); err != nil {
		t.Fatalf("ParseStrict($10.00): %v", err)
	}
}

func TestParseStrictMinusOnlyAtEdges(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"-12.34", "-12.34"},
		{"12.34-", "-12.34"}, // accounting style
		{"$-5.00", "-5"},
	}
	for _, tc := range cases {
		got, err := ParseStrict(tc.in)
		if err != nil {
			t.Fatalf("ParseStrict(%q): %v", tc.in, err)
		}
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("ParseStrict(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("1,234")
	if err != nil || n != 1234 {
		t.Fatalf("ParseCount(1,234) = %d, %v", n, err)
	}
	if _, err := ParseCount("12.5"); err == nil {
		t.Fatal("ParseCount(12.5) expected error")
	}
	if _, err := ParseCount(""); err == nil {
		t.Fatal("ParseCount(empty) expected error")
	}
	if _, err := ParseCount("12-34"); err == nil {
		t.Fatal("ParseCount(12-34) expected error")
	}
}

func TestPerUnit(t *testing.T) {
	got := PerUnit(decimal.RequireFromString("10"), 3)
	want := decimal.RequireFromString("3.3333333333")
	if !got.Equal(want) {
		t.Fatalf("PerUnit = %s, want %s", got, want)
	}
	if !PerUnit(decimal.RequireFromString("10"), 0).IsZero() {
		t.Fatal("PerUnit with zero count should be zero")
	}
}

func TestShare(t *testing.T) {
	got := Share(decimal.RequireFromString("1"), decimal.RequireFromString("3"))
	want := decimal.RequireFromString("33.33")
	if !got.Equal(want) {
		t.Fatalf("Share = %s, want %s", got, want)
	}
	if !Share(decimal.RequireFromString("1"), decimal.Zero).IsZero() {
		t.Fatal("Share with zero total should be zero")
	}
}

func TestSumStability(t *testing.T) {
	// 10,000 additions of 0.1 must be exactly 1000.
	step := decimal.RequireFromString("0.1")
	sum := decimal.Zero
	for i := 0; i < 10000; i++ {
		sum = sum.Add(step)
	}
	if !sum.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("cumulative drift: got %s", sum)
	}
}
