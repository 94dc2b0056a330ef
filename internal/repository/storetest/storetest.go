// Package storetest holds behaviour checks shared by every repository.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run exercises newStore with the shared cases. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) *repository.Store) {
	t.Helper()
	cases := []struct {
		name string
		fn   func(t *testing.T, s *repository.Store)
	}{
		{"CustomerCRUD", testCustomerCRUD},
		{"EntryMonthRange", testEntryMonthRange},
		{"EntryUpdateRecomputesAmount", testEntryUpdateRecomputesAmount},
		{"BillPaymentUpdate", testBillPaymentUpdate},
		{"BillFilter", testBillFilter},
		{"PaymentEvents", testPaymentEvents},
		{"NotFound", testNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCustomer(t *testing.T, s *repository.Store, name string) models.Customer {
	t.Helper()
	c := models.Customer{ID: uuid.New(), Name: name, Address: "1 Dairy Lane", Phone: "555-0100"}
	if err := s.Customers.Create(context.Background(), &c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func mustEntry(t *testing.T, s *repository.Store, customerID uuid.UUID, date time.Time, qty, price string) models.Entry {
	t.Helper()
	e := models.Entry{
		ID:           uuid.New(),
		CustomerID:   customerID,
		Date:         date,
		Product:      models.WholeMilk,
		Quantity:     decimal.RequireFromString(qty),
		PricePerUnit: decimal.RequireFromString(price),
	}
	if err := s.Entries.Create(context.Background(), &e); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	return e
}

func testCustomerCRUD(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	jane := mustCustomer(t, s, "Jane Smith")
	mustCustomer(t, s, "Robert Johnson")

	got, err := s.Customers.GetByID(ctx, jane.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Jane Smith" || got.CreatedAt.IsZero() {
		t.Fatalf("got %+v", got)
	}

	email := "jane@example.com"
	got.Phone = "555-0199"
	got.Email = &email
	if err := s.Customers.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.Customers.GetByID(ctx, jane.ID)
	if got.Phone != "555-0199" || got.Email == nil || *got.Email != email {
		t.Fatalf("update not applied: %+v", got)
	}

	found, err := s.Customers.List(ctx, "SMITH")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(found) != 1 || found[0].ID != jane.ID {
		t.Fatalf("search returned %+v", found)
	}

	if n, _ := s.Customers.Count(ctx); n != 2 {
		t.Fatalf("count = %d", n)
	}
	if err := s.Customers.Delete(ctx, jane.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := s.Customers.Count(ctx); n != 1 {
		t.Fatalf("count after delete = %d", n)
	}
}

func testEntryMonthRange(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	c := mustCustomer(t, s, "John Doe")
	other := mustCustomer(t, s, "Jane Smith")

	mustEntry(t, s, c.ID, day(2023, 4, 2), "3", "1.50")
	mustEntry(t, s, c.ID, day(2023, 3, 31), "2", "1.50")
	mustEntry(t, s, c.ID, day(2023, 4, 1), "3", "1.50")
	mustEntry(t, s, c.ID, day(2023, 5, 1), "1", "1.50")
	mustEntry(t, s, other.ID, day(2023, 4, 15), "1", "2.00")

	from, to := day(2023, 4, 1), day(2023, 5, 1)
	got, err := s.Entries.List(ctx, repository.EntryFilter{CustomerID: &c.ID, From: &from, To: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 April entries, got %d", len(got))
	}
	if !got[0].Date.Equal(day(2023, 4, 1)) || !got[1].Date.Equal(day(2023, 4, 2)) {
		t.Fatalf("entries not date ordered: %v, %v", got[0].Date, got[1].Date)
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("amount = %s", got[0].Amount)
	}

	n, err := s.Entries.Count(ctx, repository.EntryFilter{From: &from, To: &to})
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func testEntryUpdateRecomputesAmount(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	c := mustCustomer(t, s, "John Doe")
	e := mustEntry(t, s, c.ID, day(2023, 4, 1), "2", "1.50")

	e.Quantity = decimal.NewFromInt(4)
	e.Amount = decimal.NewFromInt(1)
	now := time.Now().UTC()
	e.IsPaid, e.PaidOn = true, &now
	if err := s.Entries.Update(ctx, &e); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Entries.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("amount = %s, want 6", got.Amount)
	}
	if !got.IsPaid || got.PaidOn == nil {
		t.Fatalf("payment not stored: %+v", got.Payment)
	}
}

func testBillPaymentUpdate(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	c := mustCustomer(t, s, "Robert Johnson")
	b := models.Bill{ID: uuid.New(), CustomerID: c.ID, Month: 4, Year: 2023, TotalAmount: decimal.RequireFromString("9.00")}
	if err := s.Bills.Create(ctx, &b); err != nil {
		t.Fatalf("create bill: %v", err)
	}
	created, _ := s.Bills.GetByID(ctx, b.ID)

	b.MarkPaid(time.Now())
	b.TotalAmount = decimal.NewFromInt(1)
	if err := s.Bills.Update(ctx, &b); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Bills.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsPaid || got.PaidOn == nil {
		t.Fatalf("payment not stored: %+v", got.Payment)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("total changed to %s", got.TotalAmount)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed from %v to %v", created.CreatedAt, got.CreatedAt)
	}
}

func testBillFilter(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	c := mustCustomer(t, s, "John Doe")
	for _, m := range []int{3, 4, 4} {
		b := models.Bill{ID: uuid.New(), CustomerID: c.ID, Month: m, Year: 2023, TotalAmount: decimal.NewFromInt(5)}
		if err := s.Bills.Create(ctx, &b); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Bills.Count(ctx, repository.BillFilter{CustomerID: &c.ID, Month: 4, Year: 2023})
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}
	unpaid := false
	list, err := s.Bills.List(ctx, repository.BillFilter{Paid: &unpaid})
	if err != nil || len(list) != 3 {
		t.Fatalf("list = %d, %v", len(list), err)
	}
}

func testPaymentEvents(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	subject := uuid.New()
	var p models.Payment
	p.MarkPaid(time.Now())
	first := models.NewPaymentEvent(models.SubjectBill, subject, p, time.Now().Add(-time.Minute))
	p.MarkUnpaid()
	second := models.NewPaymentEvent(models.SubjectBill, subject, p, time.Now())
	for _, ev := range []*models.PaymentEvent{first, second} {
		if err := s.Payments.Create(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Payments.Create(ctx, models.NewPaymentEvent(models.SubjectEntry, uuid.New(), p, time.Now())); err != nil {
		t.Fatal(err)
	}

	events, err := s.Payments.ListBySubject(ctx, models.SubjectBill, subject)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Action != models.ActionMarkPaid || events[1].Action != models.ActionMarkUnpaid {
		t.Fatalf("events = %+v", events)
	}
}

func testNotFound(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	id := uuid.New()
	checks := map[string]error{}
	_, checks["customer get"] = s.Customers.GetByID(ctx, id)
	_, checks["entry get"] = s.Entries.GetByID(ctx, id)
	_, checks["bill get"] = s.Bills.GetByID(ctx, id)
	checks["entry delete"] = s.Entries.Delete(ctx, id)
	checks["bill update"] = s.Bills.Update(ctx, &models.Bill{ID: id})
	for name, err := range checks {
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s: expected not found, got %v", name, err)
		}
	}
}
