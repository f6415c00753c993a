// Package validation collects filter violations as i18n message codes keyed by field.
package validation

import (
	"strconv"
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// ISODate accepts an empty value or YYYY-MM-DD.
func ISODate(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v[field] = "invalid_date"
	}
}

// DateOrder flags end when both dates are valid and start is after end.
func DateOrder(startField, start, endField, end string, v Violations) {
	if _, bad := v[startField]; bad {
		return
	}
	if _, bad := v[endField]; bad {
		return
	}
	s, err1 := time.Parse("2006-01-02", strings.TrimSpace(start))
	e, err2 := time.Parse("2006-01-02", strings.TrimSpace(end))
	if err1 == nil && err2 == nil && s.After(e) {
		v[endField] = "inverted_range"
	}
}

// Year accepts an empty value or a year between 2000 and 2100.
func Year(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	y, err := strconv.Atoi(value)
	if err != nil {
		v[field] = "invalid_year"
		return
	}
	RangeInt(field, y, 2000, 2100, v)
}

// PositiveID accepts an empty value or an integer greater than zero.
func PositiveID(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		v[field] = "invalid_id"
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}
