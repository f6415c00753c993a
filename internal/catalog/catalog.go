// Package catalog describes the reports the portal knows how to fetch and
// render. The list ships embedded as YAML so new backend reports of an
// existing kind only need a catalog entry.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/diewo77/erp-reports/internal/daterange"
)

//go:embed reports.yaml
var embedded []byte

// ErrUnknownReport is returned when a report name is not in the catalog.
var ErrUnknownReport = errors.New("unknown report")

// Kind selects the payload shape and derivation of a report.
type Kind string

const (
	KindVAT          Kind = "vat"
	KindAging        Kind = "aging"
	KindVariance     Kind = "variance"
	KindInventory    Kind = "inventory"
	KindCOGS         Kind = "cogs"
	KindTrialBalance Kind = "trial_balance"
)

var kinds = map[Kind]bool{
	KindVAT: true, KindAging: true, KindVariance: true,
	KindInventory: true, KindCOGS: true, KindTrialBalance: true,
}

// ParamKind drives filter validation.
type ParamKind string

const (
	ParamDate   ParamKind = "date"
	ParamYear   ParamKind = "year"
	ParamID     ParamKind = "id"
	ParamString ParamKind = "string"
)

// Param is one accepted filter.
type Param struct {
	Name     string    `yaml:"name"`
	Kind     ParamKind `yaml:"kind"`
	Required bool      `yaml:"required"`
}

// Report is one catalog entry.
type Report struct {
	Name         string        `yaml:"name"`
	Title        string        `yaml:"title"`
	Kind         Kind          `yaml:"kind"`
	Endpoint     string        `yaml:"endpoint"`
	DefaultRange daterange.Key `yaml:"default_range"`
	StaleAfter   string        `yaml:"stale_after"`
	Params       []Param       `yaml:"params"`
	staleAfter   time.Duration
}

// TTL returns the report's own staleness window, or def when none is set.
func (r Report) TTL(def time.Duration) time.Duration {
	if r.staleAfter > 0 {
		return r.staleAfter
	}
	return def
}

// HasRange reports whether the report is filtered by start_date/end_date.
func (r Report) HasRange() bool {
	return r.Param("start_date") != nil && r.Param("end_date") != nil
}

// Param looks up a filter by name.
func (r Report) Param(name string) *Param {
	for i := range r.Params {
		if r.Params[i].Name == name {
			return &r.Params[i]
		}
	}
	return nil
}

// Catalog is an ordered, name-indexed set of reports.
type Catalog struct {
	reports []Report
	byName  map[string]int
}

type file struct {
	Reports []Report `yaml:"reports"`
}

// Load parses a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{byName: make(map[string]int, len(f.Reports))}
	for _, rep := range f.Reports {
		if rep.Name == "" || rep.Endpoint == "" {
			return nil, fmt.Errorf("catalog entry %q: name and endpoint are required", rep.Name)
		}
		if !kinds[rep.Kind] {
			return nil, fmt.Errorf("catalog entry %q: unknown kind %q", rep.Name, rep.Kind)
		}
		if _, dup := c.byName[rep.Name]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate name", rep.Name)
		}
		if rep.DefaultRange != "" && !daterange.Known(rep.DefaultRange) {
			return nil, fmt.Errorf("catalog entry %q: %w: %s", rep.Name, daterange.ErrUnknownRange, rep.DefaultRange)
		}
		if rep.StaleAfter != "" {
			d, err := time.ParseDuration(rep.StaleAfter)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q: stale_after: %w", rep.Name, err)
			}
			rep.staleAfter = d
		}
		rep.Endpoint = strings.Trim(rep.Endpoint, "/")
		c.byName[rep.Name] = len(c.reports)
		c.reports = append(c.reports, rep)
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(strings.NewReader(string(embedded)))
}

// Lookup returns the named report.
func (c *Catalog) Lookup(name string) (Report, error) {
	i, ok := c.byName[name]
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	return c.reports[i], nil
}

// All returns the reports in catalog order.
func (c *Catalog) All() []Report {
	out := make([]Report, len(c.reports))
	copy(out, c.reports)
	return out
}
