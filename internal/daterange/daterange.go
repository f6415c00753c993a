// Package daterange computes the canned filter ranges offered on report pages.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// ErrUnknownRange is returned for a quick-range key that is not supported.
var ErrUnknownRange = errors.New("unknown date range")

// ErrInvertedRange is returned by Parse when start is after end.
var ErrInvertedRange = errors.New("start date is after end date")

const isoLayout = "2006-01-02"

// Key names a quick-select range.
type Key string

const (
	ThisMonth   Key = "this_month"
	LastMonth   Key = "last_month"
	ThisQuarter Key = "this_quarter"
	LastQuarter Key = "last_quarter"
	ThisYear    Key = "this_year"
	LastYear    Key = "last_year"
	Last7Days   Key = "last_7_days"
	Last30Days  Key = "last_30_days"
	Last90Days  Key = "last_90_days"
)

// Keys lists the quick ranges in display order.
var Keys = []Key{ThisMonth, LastMonth, ThisQuarter, LastQuarter, ThisYear, LastYear, Last7Days, Last30Days, Last90Days}

// Known reports whether k is one of Keys.
func Known(k Key) bool {
	for _, key := range Keys {
		if key == k {
			return true
		}
	}
	return false
}

// Range is an inclusive calendar-day interval. Start is midnight of the first
// day and End is midnight of the last day, both in the location of "now".
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// StartISO returns the start as YYYY-MM-DD, or "" when unset.
func (r Range) StartISO() string { return iso(r.Start) }

// EndISO returns the end as YYYY-MM-DD, or "" when unset.
func (r Range) EndISO() string { return iso(r.End) }

// Days is the number of calendar days covered, counting both ends.
func (r Range) Days() int {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	s := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

func (r Range) String() string { return r.StartISO() + ".." + r.EndISO() }

func iso(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoLayout)
}

// Quick computes a canned range relative to ref.
func Quick(key Key, ref time.Time) (Range, error) {
	n := now.With(ref)
	switch key {
	case ThisMonth:
		return span(n.BeginningOfMonth(), n.EndOfMonth()), nil
	case LastMonth:
		prev := now.With(n.BeginningOfMonth().AddDate(0, 0, -1))
		return span(prev.BeginningOfMonth(), prev.EndOfMonth()), nil
	case ThisQuarter:
		return span(n.BeginningOfQuarter(), n.EndOfQuarter()), nil
	case LastQuarter:
		prev := now.With(n.BeginningOfQuarter().AddDate(0, 0, -1))
		return span(prev.BeginningOfQuarter(), prev.EndOfQuarter()), nil
	case ThisYear:
		return span(n.BeginningOfYear(), n.EndOfYear()), nil
	case LastYear:
		prev := now.With(n.BeginningOfYear().AddDate(0, 0, -1))
		return span(prev.BeginningOfYear(), prev.EndOfYear()), nil
	case Last7Days:
		return LastNDays(7, ref), nil
	case Last30Days:
		return LastNDays(30, ref), nil
	case Last90Days:
		return LastNDays(90, ref), nil
	default:
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownRange, key)
	}
}

// LastNDays returns the n calendar days ending today, today included.
// n < 1 is treated as 1.
func LastNDays(days int, ref time.Time) Range {
	if days < 1 {
		days = 1
	}
	end := now.With(ref).BeginningOfDay()
	return Range{Start: end.AddDate(0, 0, -(days - 1)), End: end}
}

// span truncates both bounds to midnight so End is the last calendar day.
func span(start, end time.Time) Range {
	return Range{
		Start: now.With(start).BeginningOfDay(),
		End:   now.With(end).BeginningOfDay(),
	}
}

// Parse reads user supplied YYYY-MM-DD bounds. Either side may be empty.
func Parse(start, end string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	var r Range
	var err error
	if s := strings.TrimSpace(start); s != "" {
		if r.Start, err = time.ParseInLocation(isoLayout, s, loc); err != nil {
			return Range{}, fmt.Errorf("parse start date: %w", err)
		}
	}
	if e := strings.TrimSpace(end); e != "" {
		if r.End, err = time.ParseInLocation(isoLayout, e, loc); err != nil {
			return Range{}, fmt.Errorf("parse end date: %w", err)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return Range{}, ErrInvertedRange
	}
	return r, nil
}

// Resolve picks the explicit bounds when given, else the quick range, else def.
func Resolve(key, start, end string, def Key, ref time.Time) (Range, error) {
	if strings.TrimSpace(start) != "" || strings.TrimSpace(end) != "" {
		return Parse(start, end, ref.Location())
	}
	if key != "" {
		return Quick(Key(key), ref)
	}
	if def == "" {
		return Range{}, nil
	}
	return Quick(def, ref)
}
