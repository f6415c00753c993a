package services

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/erp-reports/internal/api"
	"github.com/diewo77/erp-reports/internal/catalog"
	"github.com/diewo77/erp-reports/internal/daterange"
	"github.com/diewo77/erp-reports/validation"
)

// Filters is the parsed filter form of a report page.
type Filters struct {
	RangeKey string
	Range    daterange.Range
	Year     int
	AsOf     time.Time
	// Values holds the submitted (or defaulted) form values for re-display.
	Values map[string]string
}

// Get returns a form value.
func (f Filters) Get(name string) string { return f.Values[name] }

// ParseFilters validates the query string against the report's parameters
// and builds the API parameters. Blank values are left out of the request.
func ParseFilters(rep catalog.Report, q url.Values, now time.Time) (api.Params, Filters, validation.Violations) {
	v := validation.Violations{}
	params := api.Params{}
	f := Filters{Values: map[string]string{}}
	get := func(name string) string { return strings.TrimSpace(q.Get(name)) }

	if rep.HasRange() {
		start, end, key := get("start_date"), get("end_date"), get("range")
		validation.ISODate("start_date", start, v)
		validation.ISODate("end_date", end, v)
		validation.DateOrder("start_date", start, "end_date", end, v)
		if v.Empty() {
			r, err := daterange.Resolve(key, start, end, rep.DefaultRange, now)
			switch {
			case errors.Is(err, daterange.ErrUnknownRange):
				v["range"] = "unknown_range"
			case errors.Is(err, daterange.ErrInvertedRange):
				v["end_date"] = "inverted_range"
			case err != nil:
				v["start_date"] = "invalid_date"
			default:
				f.Range = r
				if start == "" && end == "" {
					f.RangeKey = key
					if key == "" {
						f.RangeKey = string(rep.DefaultRange)
					}
				}
				params["start_date"] = r.StartISO()
				params["end_date"] = r.EndISO()
			}
		}
		f.Values["range"] = f.RangeKey
		f.Values["start_date"] = firstNonEmpty(start, f.Range.StartISO())
		f.Values["end_date"] = firstNonEmpty(end, f.Range.EndISO())
	}

	for _, p := range rep.Params {
		if p.Name == "start_date" || p.Name == "end_date" {
			continue
		}
		raw := get(p.Name)
		switch p.Kind {
		case catalog.ParamYear:
			if raw == "" && p.Required {
				raw = strconv.Itoa(now.Year())
			}
			validation.Year(p.Name, raw, v)
			if _, bad := v[p.Name]; !bad && raw != "" {
				f.Year, _ = strconv.Atoi(raw)
				params[p.Name] = f.Year
			}
		case catalog.ParamDate:
			if raw == "" && p.Name == "as_of" && rep.Kind == catalog.KindAging {
				raw = now.Format("2006-01-02")
			}
			validation.ISODate(p.Name, raw, v)
			if _, bad := v[p.Name]; !bad && raw != "" {
				t, _ := time.ParseInLocation("2006-01-02", raw, now.Location())
				if p.Name == "as_of" {
					f.AsOf = t
				}
				params[p.Name] = raw
			}
		case catalog.ParamID:
			validation.PositiveID(p.Name, raw, v)
			if _, bad := v[p.Name]; !bad {
				params[p.Name] = raw
			}
		default:
			params[p.Name] = raw
		}
		if p.Required {
			validation.Required(p.Name, raw, v)
		}
		f.Values[p.Name] = raw
	}
	return params, f, v
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}
