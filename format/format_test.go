package format

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestFormatter() *Formatter {
	return New("en", "THB", "฿").WithLocation(time.UTC)
}

func TestCurrency(t *testing.T) {
	f := newTestFormatter()
	big := decimal.RequireFromString("12345678901234567.891")
	var nilDec *decimal.Decimal
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"zero", 0, "฿0.00"},
		{"float", 1234.5, "฿1,234.50"},
		{"negative", -1234.5, "-฿1,234.50"},
		{"rounds half away from zero", 0.125, "฿0.13"},
		{"tiny negative rounds to zero", -0.001, "฿0.00"},
		{"numeric string", "9876543210.129", "฿9,876,543,210.13"},
		{"decimal", decimal.NewFromInt(1000000), "฿1,000,000.00"},
		{"beyond float precision", big, "฿12,345,678,901,234,567.89"},
		{"float spacing above a cent", decimal.RequireFromString("987654321098765.43"), "฿987,654,321,098,765.43"},
		{"just under a quadrillion", decimal.RequireFromString("999999999999999.99"), "฿999,999,999,999,999.99"},
		{"hundred trillion and a cent", decimal.RequireFromString("100000000000000.01"), "฿100,000,000,000,000.01"},
		{"large negative", decimal.RequireFromString("-987654321098765.43"), "-฿987,654,321,098,765.43"},
		{"null decimal", decimal.NullDecimal{}, "-"},
		{"nil pointer", nilDec, "-"},
		{"nil", nil, "-"},
		{"NaN", math.NaN(), "-"},
		{"Inf", math.Inf(1), "-"},
		{"garbage", "abc", "-"},
		{"empty string", "  ", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Currency(tt.in); got != tt.want {
				t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCurrencyScaleFollowsISO(t *testing.T) {
	f := New("en", "JPY", "¥")
	if f.Scale() != 0 {
		t.Fatalf("JPY scale = %d, want 0", f.Scale())
	}
	if got := f.Currency(1234.56); got != "¥1,235" {
		t.Errorf("Currency = %q, want ¥1,235", got)
	}
}

func TestNewFallbacks(t *testing.T) {
	f := New("not a language!!", "???", "")
	if f.Unit.String() != "THB" {
		t.Errorf("currency fallback = %s, want THB", f.Unit)
	}
	if got := f.Currency(1); got != "THB 1.00" {
		t.Errorf("Currency = %q, want %q", got, "THB 1.00")
	}
}

func TestPercentAndRatio(t *testing.T) {
	f := newTestFormatter()
	tests := []struct {
		name string
		fn   func(any) string
		in   any
		want string
	}{
		{"percent", f.Percent, 20, "20.0%"},
		{"percent zero", f.Percent, 0, "0.0%"},
		{"percent negative", f.Percent, -5.25, "-5.3%"},
		{"percent large", f.Percent, 123456.78, "123,456.8%"},
		{"percent nil", f.Percent, nil, "-"},
		{"ratio", f.Ratio, 0.2, "20.0%"},
		{"ratio negative", f.Ratio, "-0.0125", "-1.3%"},
		{"ratio nil", f.Ratio, nil, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	f := newTestFormatter()
	if got := f.Number(1234567, 0); got != "1,234,567" {
		t.Errorf("Number = %q", got)
	}
	if got := f.Number(-0.5, 2); got != "-0.50" {
		t.Errorf("Number = %q", got)
	}
	if got := f.Number(decimal.RequireFromString("987654321098765.43"), 2); got != "987,654,321,098,765.43" {
		t.Errorf("Number large = %q", got)
	}
	if got := f.Percent(decimal.RequireFromString("12345678901234.56")); got != "12,345,678,901,234.6%" {
		t.Errorf("Percent large = %q", got)
	}
	if got := f.Number(3, -1); got != "3" {
		t.Errorf("Number with negative scale = %q", got)
	}
}

func TestDate(t *testing.T) {
	f := newTestFormatter()
	leap := time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"time", leap, "29 Feb 2024"},
		{"pointer", &leap, "29 Feb 2024"},
		{"iso string", "2024-02-29", "29 Feb 2024"},
		{"rfc3339", "2024-02-29T10:00:00Z", "29 Feb 2024"},
		{"zero time", time.Time{}, "-"},
		{"nil", nil, "-"},
		{"bad string", "29/02/2024", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Date(tt.in); got != tt.want {
				t.Errorf("Date(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocalISODateDoesNotShiftToUTC(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)
	late := time.Date(2024, time.March, 31, 23, 30, 0, 0, bangkok)
	if got := LocalISODate(late); got != "2024-03-31" {
		t.Errorf("LocalISODate = %q, want 2024-03-31", got)
	}
	if got := LocalISODate(time.Time{}); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
	f := New("en", "THB", "฿").WithLocation(bangkok)
	early := time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)
	if got := f.LocalISODate(early); got != "2024-04-01" {
		t.Errorf("Formatter.LocalISODate = %q, want 2024-04-01", got)
	}
}

func TestASCII(t *testing.T) {
	f := newTestFormatter().ASCII()
	if got := f.Currency(1234.5); got != "THB 1,234.50" {
		t.Errorf("ASCII currency = %q", got)
	}
	usd := New("en", "USD", "$").ASCII()
	if usd.Symbol != "$" {
		t.Errorf("ASCII symbol changed: %q", usd.Symbol)
	}
}

type isoDay string

func (d isoDay) ISO() string { return string(d) }

func TestDateAcceptsISOer(t *testing.T) {
	f := New("en", "THB", "").WithLocation(time.FixedZone("EST", -5*3600))
	if got := f.Date(isoDay("2024-03-01")); got != "01 Mar 2024" {
		t.Errorf("Date = %q", got)
	}
	if got := f.Date(isoDay("")); got != Placeholder {
		t.Errorf("empty Date = %q", got)
	}
}
