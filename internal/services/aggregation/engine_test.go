package aggregation

import (
	"testing"
	"time"

	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(customer uuid.UUID, date time.Time, amount string) models.Entry {
	a := decimal.RequireFromString(amount)
	return models.Entry{
		ID:           uuid.New(),
		CustomerID:   customer,
		Date:         date,
		Product:      models.WholeMilk,
		Quantity:     decimal.NewFromInt(1),
		PricePerUnit: a,
		Amount:       a,
	}
}

func TestEntriesForCustomerInMonthExcludesNeighbours(t *testing.T) {
	c1, c2 := uuid.New(), uuid.New()
	march31 := entry(c1, day(2023, 3, 31), "3.00")
	entries := []models.Entry{
		entry(c1, day(2023, 4, 1), "4.50"),
		march31,
		entry(c1, day(2022, 3, 15), "1.00"),
		entry(c2, day(2023, 3, 10), "2.00"),
	}

	got := EntriesForCustomerInMonth(entries, c1, 2, 2023)
	if len(got) != 1 || got[0].ID != march31.ID {
		t.Fatalf("expected only the 2023-03-31 entry, got %+v", got)
	}
}

func TestEntriesForCustomerInMonthSortsByDate(t *testing.T) {
	c := uuid.New()
	a := entry(c, day(2023, 4, 20), "1")
	b := entry(c, day(2023, 4, 2), "2")
	sameDayFirst := entry(c, day(2023, 4, 10), "3")
	sameDaySecond := entry(c, day(2023, 4, 10), "4")
	input := []models.Entry{a, sameDayFirst, b, sameDaySecond}

	got := EntriesForCustomerInMonth(input, c, 3, 2023)
	want := []uuid.UUID{b.ID, sameDayFirst.ID, sameDaySecond.ID, a.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d entries", len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d: got %v want %v", i, got[i].ID, want[i])
		}
	}
	if input[0].ID != a.ID || input[2].ID != b.ID {
		t.Fatal("input slice was reordered")
	}
}

func TestEntriesForCustomerInMonthUsesUTC(t *testing.T) {
	c := uuid.New()
	// 2023-05-01 03:00 in UTC+5 is still April 30 in UTC.
	e := entry(c, time.Date(2023, 5, 1, 3, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)), "1")
	if got := EntriesForCustomerInMonth([]models.Entry{e}, c, 3, 2023); len(got) != 1 {
		t.Fatalf("expected entry to count for April, got %d", len(got))
	}
}

func TestMonthlyTotal(t *testing.T) {
	c3 := uuid.New()
	other := uuid.New()
	entries := []models.Entry{
		entry(c3, day(2023, 4, 1), "4.5"),
		entry(c3, day(2023, 4, 2), "4.5"),
		entry(c3, day(2023, 5, 1), "100"),
		entry(other, day(2023, 4, 1), "7.25"),
	}

	cases := []struct {
		name     string
		customer uuid.UUID
		month    int
		year     int
		want     string
	}{
		{"april for customer 3", c3, 3, 2023, "9.00"},
		{"may for customer 3", c3, 4, 2023, "100"},
		{"no entries", c3, 0, 2023, "0"},
		{"unknown customer", uuid.New(), 3, 2023, "0"},
		{"month out of range", c3, 12, 2023, "0"},
		{"negative month", c3, -1, 2023, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MonthlyTotal(entries, tc.customer, tc.month, tc.year)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("MonthlyTotal = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMonthlyTotalDoesNotRoundIntermediates(t *testing.T) {
	c := uuid.New()
	var entries []models.Entry
	for i := 1; i <= 3; i++ {
		entries = append(entries, entry(c, day(2023, 1, i), "0.005"))
	}
	if got := MonthlyTotal(entries, c, 0, 2023); !got.Equal(decimal.RequireFromString("0.015")) {
		t.Fatalf("MonthlyTotal = %s, want 0.015", got)
	}
}

func TestBuildBillPreview(t *testing.T) {
	customer := models.Customer{ID: uuid.New(), Name: "Robert Johnson"}
	entries := []models.Entry{
		entry(customer.ID, day(2023, 4, 2), "4.5"),
		entry(customer.ID, day(2023, 4, 1), "4.5"),
	}

	p := BuildBillPreview(entries, customer, 3, 2023)
	if p.Empty() || len(p.LineItems) != 2 {
		t.Fatalf("line items = %d", len(p.LineItems))
	}
	if !p.TotalAmount.Equal(decimal.RequireFromString("9.00")) {
		t.Fatalf("total = %s", p.TotalAmount)
	}
	if p.Month() != 4 || p.Customer.ID != customer.ID {
		t.Fatalf("preview header = %+v", p)
	}

	again := BuildBillPreview(entries, customer, 3, 2023)
	if !again.TotalAmount.Equal(p.TotalAmount) || again.LineItems[0].ID != p.LineItems[0].ID {
		t.Fatal("preview is not repeatable")
	}

	empty := BuildBillPreview(entries, customer, 2, 2023)
	if !empty.Empty() || !empty.TotalAmount.IsZero() || empty.LineItems == nil {
		t.Fatalf("expected empty non-nil preview, got %+v", empty)
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := PeriodBounds(11, 2023)
	if !start.Equal(day(2023, 12, 1)) || !end.Equal(day(2024, 1, 1)) {
		t.Fatalf("December bounds = %v, %v", start, end)
	}
	if last := LastDay(1, 2024); !last.Equal(day(2024, 2, 29)) {
		t.Fatalf("LastDay(Feb 2024) = %v", last)
	}
}

func TestTotals(t *testing.T) {
	c := uuid.New()
	entries := []models.Entry{
		entry(c, day(2023, 4, 2), "4.5"),
		entry(c, day(2023, 3, 2), "1"),
		entry(c, day(2023, 4, 1), "4.5"),
	}
	got := Totals(entries)
	if len(got) != 2 {
		t.Fatalf("groups = %+v", got)
	}
	if got[0].MonthIndex != 2 || !got[0].Total.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("first group = %+v", got[0])
	}
	if got[1].MonthIndex != 3 || got[1].Entries != 2 || !got[1].Total.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("second group = %+v", got[1])
	}
}
