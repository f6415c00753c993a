// Package format turns report values into display strings.
//
// Every function accepts loosely typed input (the shapes that come out of
// decoded report payloads and template pipelines) and never panics: nil,
// NaN, infinities and unparseable strings render the placeholder.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is rendered for missing values.
const Placeholder = "-"

const (
	isoDate     = "2006-01-02"
	displayDate = "02 Jan 2006"
)

// Formatter holds the fixed locale and currency conventions of the portal.
type Formatter struct {
	Lang        language.Tag
	Unit        currency.Unit
	Symbol      string
	Placeholder string
	Location    *time.Location

	printer *message.Printer
	scale   int
}

// New builds a Formatter. Unknown languages fall back to English and unknown
// currency codes to THB.
func New(lang, currencyCode, symbol string) *Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	cur, err := currency.ParseISO(currencyCode)
	if err != nil {
		cur = currency.THB
	}
	if symbol == "" {
		symbol = cur.String() + " "
	}
	scale, _ := currency.Standard.Rounding(cur)
	return &Formatter{
		Lang:        tag,
		Unit:        cur,
		Symbol:      symbol,
		Placeholder: Placeholder,
		Location:    time.Local,
		printer:     message.NewPrinter(tag),
		scale:       scale,
	}
}

// WithLocation returns a copy of f that renders dates in loc.
func (f *Formatter) WithLocation(loc *time.Location) *Formatter {
	c := *f
	if loc != nil {
		c.Location = loc
	}
	return &c
}

// ASCII returns a copy of f whose currency symbol is the ISO code when the
// configured symbol is outside ASCII. PDF core fonts cannot draw "฿".
func (f *Formatter) ASCII() *Formatter {
	c := *f
	for _, r := range c.Symbol {
		if r > 127 {
			c.Symbol = c.Unit.String() + " "
			break
		}
	}
	return &c
}

// Scale is the number of fraction digits used for currency amounts.
func (f *Formatter) Scale() int { return f.scale }

// Currency renders v as an amount in the formatter's currency, e.g. "-฿1,234.50".
func (f *Formatter) Currency(v any) string {
	d, ok := ToDecimal(v)
	if !ok {
		return f.Placeholder
	}
	d = d.Round(int32(f.scale))
	if d.IsNegative() {
		return "-" + f.Symbol + f.grouped(d.Neg(), f.scale)
	}
	return f.Symbol + f.grouped(d, f.scale)
}

// Number renders v with digit grouping and a fixed number of fraction digits.
func (f *Formatter) Number(v any, scale int) string {
	d, ok := ToDecimal(v)
	if !ok {
		return f.Placeholder
	}
	if scale < 0 {
		scale = 0
	}
	d = d.Round(int32(scale))
	if d.IsNegative() {
		return "-" + f.grouped(d.Neg(), scale)
	}
	return f.grouped(d, scale)
}

// Percent renders a value already expressed in percent units: 20 -> "20.0%".
func (f *Formatter) Percent(v any) string {
	d, ok := ToDecimal(v)
	if !ok {
		return f.Placeholder
	}
	return f.Number(d, 1) + "%"
}

// Ratio renders a fraction as a percentage: 0.2 -> "20.0%".
func (f *Formatter) Ratio(v any) string {
	d, ok := ToDecimal(v)
	if !ok {
		return f.Placeholder
	}
	return f.Percent(d.Shift(2))
}

// Date renders a date-like value as "02 Jan 2006".
func (f *Formatter) Date(v any) string {
	t, ok := f.toTime(v)
	if !ok {
		return f.Placeholder
	}
	return t.In(f.Location).Format(displayDate)
}

// LocalISODate renders t as YYYY-MM-DD in the formatter's location.
func (f *Formatter) LocalISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.Location).Format(isoDate)
}

// LocalISODate renders t as YYYY-MM-DD in its own location. Unlike
// t.UTC().Format, a late-evening local time never shifts to the next day.
func LocalISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoDate)
}

// grouped formats a non-negative decimal with locale digit grouping. Only
// the integer part goes through the printer; the fraction is appended from
// the decimal itself so no digit passes through float64. Past int64 the
// value is printed ungrouped.
func (f *Formatter) grouped(d decimal.Decimal, scale int) string {
	intPart := d.Truncate(0)
	if intPart.GreaterThan(maxInt64) {
		return d.StringFixed(int32(scale))
	}
	out := f.printer.Sprintf("%d", intPart.IntPart())
	if scale > 0 {
		frac := d.Sub(intPart).StringFixed(int32(scale))
		out += frac[strings.IndexByte(frac, '.'):]
	}
	return out
}

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// ToDecimal coerces the loosely typed values found in payloads and templates.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case decimal.NullDecimal:
		return n.Decimal, n.Valid
	case *decimal.NullDecimal:
		if n == nil {
			return decimal.Zero, false
		}
		return n.Decimal, n.Valid
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint8:
		return decimal.NewFromUint64(uint64(n)), true
	case uint16:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return floatDecimal(float64(n))
	case float64:
		return floatDecimal(n)
	case *float64:
		if n == nil {
			return decimal.Zero, false
		}
		return floatDecimal(*n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case fmt.Stringer:
		return ToDecimal(n.String())
	default:
		return decimal.Zero, false
	}
}

func floatDecimal(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func (f *Formatter) toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case interface{ ISO() string }:
		return f.toTime(t.ISO())
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if len(s) == len(isoDate) {
			parsed, err := time.ParseInLocation(isoDate, s, f.Location)
			return parsed, err == nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		return parsed, err == nil
	default:
		return time.Time{}, false
	}
}
