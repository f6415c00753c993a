package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Params are report filters. Empty values are dropped when encoding, so a
// cleared form field is never sent as an empty query parameter.
type Params map[string]any

// Values converts the filters to url.Values, omitting nil, blank strings,
// nil pointers, zero times and empty slices.
func (p Params) Values() url.Values {
	v := url.Values{}
	for k, raw := range p {
		if s, ok := paramString(raw); ok {
			v.Set(k, s)
		}
	}
	return v
}

// Encode returns the sorted query string.
func (p Params) Encode() string { return p.Values().Encode() }

func paramString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		x = strings.TrimSpace(x)
		return x, x != ""
	case *string:
		if x == nil {
			return "", false
		}
		return paramString(*x)
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case *int64:
		if x == nil {
			return "", false
		}
		return strconv.FormatInt(*x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case bool:
		return strconv.FormatBool(x), true
	case decimal.Decimal:
		return x.String(), true
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.Format("2006-01-02"), true
	case []string:
		var parts []string
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), len(parts) > 0
	case fmt.Stringer:
		return paramString(x.String())
	default:
		return paramString(fmt.Sprint(x))
	}
}
