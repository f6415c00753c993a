package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket is an aging window by days past due.
type Bucket string

const (
	BucketCurrent Bucket = "current"
	Bucket1To30   Bucket = "1-30"
	Bucket31To60  Bucket = "31-60"
	Bucket61To90  Bucket = "61-90"
	BucketOver90  Bucket = "90+"
)

// Buckets lists the windows in display order.
var Buckets = []Bucket{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90}

// BucketFor maps days overdue to its window. Not yet due is current.
func BucketFor(daysOverdue int) Bucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket1To30
	case daysOverdue <= 60:
		return Bucket31To60
	case daysOverdue <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// DaysOverdue counts whole calendar days from due to asOf. A missing due date
// counts as not overdue.
func DaysOverdue(asOf, due time.Time) int {
	if due.IsZero() || asOf.IsZero() {
		return 0
	}
	a := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(d).Hours() / 24)
}

// AgingBuckets holds the outstanding amount per window.
type AgingBuckets struct {
	Current    decimal.Decimal `json:"current"`
	Days1To30  decimal.Decimal `json:"days_1_30"`
	Days31To60 decimal.Decimal `json:"days_31_60"`
	Days61To90 decimal.Decimal `json:"days_61_90"`
	Over90     decimal.Decimal `json:"over_90"`
	Total      decimal.Decimal `json:"total"`
}

// Get returns the amount in one window.
func (b AgingBuckets) Get(bucket Bucket) decimal.Decimal {
	switch bucket {
	case BucketCurrent:
		return b.Current
	case Bucket1To30:
		return b.Days1To30
	case Bucket31To60:
		return b.Days31To60
	case Bucket61To90:
		return b.Days61To90
	case BucketOver90:
		return b.Over90
	default:
		return decimal.Zero
	}
}

func (b *AgingBuckets) add(bucket Bucket, amt decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		b.Current = b.Current.Add(amt)
	case Bucket1To30:
		b.Days1To30 = b.Days1To30.Add(amt)
	case Bucket31To60:
		b.Days31To60 = b.Days31To60.Add(amt)
	case Bucket61To90:
		b.Days61To90 = b.Days61To90.Add(amt)
	default:
		b.Over90 = b.Over90.Add(amt)
	}
	b.Total = b.Total.Add(amt)
}

// AgingRow is the per-contact breakdown.
type AgingRow struct {
	ContactID   int64  `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Documents   int    `json:"documents"`
	AgingBuckets
}

// AgingSummary is the derived aging view.
type AgingSummary struct {
	AsOf   time.Time    `json:"as_of"`
	Rows   []AgingRow   `json:"rows"`
	Totals AgingBuckets `json:"totals"`
}

// AgeItems buckets each open item by days overdue at asOf and groups them by
// contact. Rows are sorted by contact name, then id.
func AgeItems(asOf time.Time, items []OpenItem) AgingSummary {
	out := AgingSummary{AsOf: asOf}
	byContact := map[int64]int{}
	for _, it := range items {
		bucket := BucketFor(DaysOverdue(asOf, it.DueDate.Time))
		idx, ok := byContact[it.ContactID]
		if !ok {
			idx = len(out.Rows)
			byContact[it.ContactID] = idx
			out.Rows = append(out.Rows, AgingRow{ContactID: it.ContactID, ContactName: it.ContactName})
		}
		out.Rows[idx].Documents++
		out.Rows[idx].add(bucket, it.Outstanding)
		out.Totals.add(bucket, it.Outstanding)
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		if out.Rows[i].ContactName != out.Rows[j].ContactName {
			return out.Rows[i].ContactName < out.Rows[j].ContactName
		}
		return out.Rows[i].ContactID < out.Rows[j].ContactID
	})
	return out
}
