// Package aggregation derives monthly bill figures from delivery entries.
// Everything here is pure: inputs are never mutated and no I/O happens.
//
// Month indexes are zero-based (0 = January). Values outside 0..11 are not
// rejected or clamped; they simply match nothing.
package aggregation

import (
	"sort"
	"time"

	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Preview is an uncommitted bill.
type Preview struct {
	Customer    models.Customer `json:"customer"`
	MonthIndex  int             `json:"month_index"`
	Year        int             `json:"year"`
	LineItems   []models.Entry  `json:"line_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Empty reports a preview with no line items. Such a preview can be shown but not committed.
func (p Preview) Empty() bool {
	return len(p.LineItems) == 0
}

// Month is the one-based month used in storage and on the wire.
func (p Preview) Month() int {
	return p.MonthIndex + 1
}

func (p Preview) Period() (start, end time.Time) {
	return PeriodBounds(p.MonthIndex, p.Year)
}

// InMonth reports whether t falls in the given month, judged in UTC.
func InMonth(t time.Time, monthIndex, year int) bool {
	t = t.UTC()
	return t.Year() == year && int(t.Month())-1 == monthIndex
}

// EntriesForCustomerInMonth returns the customer's entries dated in the month,
// sorted by date ascending. Entries with equal dates keep their input order.
func EntriesForCustomerInMonth(entries []models.Entry, customerID uuid.UUID, monthIndex, year int) []models.Entry {
	out := make([]models.Entry, 0)
	for _, e := range entries {
		if e.CustomerID == customerID && InMonth(e.Date, monthIndex, year) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// MonthlyTotal is the exact sum of amounts for the customer's month. Zero when nothing matches.
func MonthlyTotal(entries []models.Entry, customerID uuid.UUID, monthIndex, year int) decimal.Decimal {
	return Sum(EntriesForCustomerInMonth(entries, customerID, monthIndex, year))
}

func BuildBillPreview(entries []models.Entry, customer models.Customer, monthIndex, year int) Preview {
	items := EntriesForCustomerInMonth(entries, customer.ID, monthIndex, year)
	return Preview{
		Customer:    customer,
		MonthIndex:  monthIndex,
		Year:        year,
		LineItems:   items,
		TotalAmount: Sum(items),
	}
}

// Sum adds entry amounts without rounding.
func Sum(entries []models.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// PeriodBounds returns the UTC half-open range [first day, first day of next month).
// Callers are expected to pass a month index in 0..11.
func PeriodBounds(monthIndex, year int) (start, end time.Time) {
	start = time.Date(year, time.Month(monthIndex+1), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// LastDay is the final calendar day of the period, for display.
func LastDay(monthIndex, year int) time.Time {
	_, end := PeriodBounds(monthIndex, year)
	return end.AddDate(0, 0, -1)
}

// PeriodTotal is one customer's total for one month.
type PeriodTotal struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	MonthIndex int             `json:"month_index"`
	Year       int             `json:"year"`
	Entries    int             `json:"entries"`
	Total      decimal.Decimal `json:"total"`
}

// Totals groups entries by customer and calendar month. The result is ordered
// by period, then customer id.
func Totals(entries []models.Entry) []PeriodTotal {
	type key struct {
		customer uuid.UUID
		year     int
		month    int
	}
	groups := make(map[key]*PeriodTotal)
	for _, e := range entries {
		d := e.Date.UTC()
		k := key{customer: e.CustomerID, year: d.Year(), month: int(d.Month()) - 1}
		g, ok := groups[k]
		if !ok {
			g = &PeriodTotal{CustomerID: k.customer, MonthIndex: k.month, Year: k.year, Total: decimal.Zero}
			groups[k] = g
		}
		g.Entries++
		g.Total = g.Total.Add(e.Amount)
	}

	out := make([]PeriodTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.MonthIndex != b.MonthIndex {
			return a.MonthIndex < b.MonthIndex
		}
		return a.CustomerID.String() < b.CustomerID.String()
	})
	return out
}
