package models

import (
	"errors"
	"testing"
	"time"

	"dairy-billing-backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestEntryRecalculate(t *testing.T) {
	cases := []struct {
		qty, price, want string
	}{
		{"3", "1.50", "4.5"},
		{"2.5", "1.75", "4.38"},
		{"0.1", "0.01", "0"},
		{"12", "2.25", "27"},
	}
	for _, tc := range cases {
		e := Entry{
			Date:         time.Date(2023, 4, 1, 18, 30, 0, 0, time.FixedZone("IST", 19800)),
			Quantity:     decimal.RequireFromString(tc.qty),
			PricePerUnit: decimal.RequireFromString(tc.price),
			Amount:       decimal.NewFromInt(999),
		}
		e.Recalculate()
		if !e.Amount.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("%s x %s = %s, want %s", tc.qty, tc.price, e.Amount, tc.want)
		}
		if want := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC); !e.Date.Equal(want) {
			t.Errorf("date normalised to %v, want %v", e.Date, want)
		}
	}
}

func TestEntryAmountFollowsEdits(t *testing.T) {
	e := Entry{Quantity: decimal.NewFromInt(2), PricePerUnit: decimal.RequireFromString("1.50")}
	e.Recalculate()
	e.Quantity = decimal.NewFromInt(5)
	e.Recalculate()
	if !e.Amount.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("amount after quantity edit = %s", e.Amount)
	}
	e.PricePerUnit = decimal.RequireFromString("2.10")
	e.Recalculate()
	if !e.Amount.Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("amount after price edit = %s", e.Amount)
	}
}

func TestEntryValidate(t *testing.T) {
	catalog := NewCatalog()
	valid := func() Entry {
		return Entry{
			CustomerID:   uuid.New(),
			Date:         time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
			Product:      "whole milk",
			Quantity:     decimal.NewFromInt(3),
			PricePerUnit: decimal.RequireFromString("1.50"),
		}
	}

	e := valid()
	if err := e.Validate(catalog); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}
	if e.Product != WholeMilk {
		t.Fatalf("product not canonicalised: %q", e.Product)
	}

	cases := []struct {
		name  string
		field string
		edit  func(*Entry)
	}{
		{"zero quantity", "quantity", func(e *Entry) { e.Quantity = decimal.Zero }},
		{"negative price", "price_per_unit", func(e *Entry) { e.PricePerUnit = decimal.NewFromInt(-1) }},
		{"unknown product", "product", func(e *Entry) { e.Product = "Cheese" }},
		{"missing customer", "customer_id", func(e *Entry) { e.CustomerID = uuid.Nil }},
		{"missing date", "date", func(e *Entry) { e.Date = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid()
			tc.edit(&e)
			err := e.Validate(catalog)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := appErr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, appErr.Fields)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog("Buttermilk", " ", "whole milk")
	products := c.Products()
	if len(products) != 5 {
		t.Fatalf("products = %v", products)
	}
	if p, ok := c.Lookup("  BUTTERMILK "); !ok || p != "Buttermilk" {
		t.Fatalf("Lookup(buttermilk) = %q, %v", p, ok)
	}
	if _, ok := c.Lookup("Yoghurt"); ok {
		t.Fatal("unexpected product")
	}
}

func TestBillLineItemsRoundTrip(t *testing.T) {
	entries := []Entry{{
		ID:           uuid.New(),
		Date:         time.Date(2023, 4, 2, 0, 0, 0, 0, time.UTC),
		Product:      OrganicMilk,
		Quantity:     decimal.NewFromInt(3),
		PricePerUnit: decimal.RequireFromString("1.50"),
		Amount:       decimal.RequireFromString("4.50"),
	}}
	var b Bill
	if err := b.SetLineItems(NewLineItems(entries)); err != nil {
		t.Fatal(err)
	}
	items, err := b.Items()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].EntryID != entries[0].ID || !items[0].Amount.Equal(entries[0].Amount) {
		t.Fatalf("items = %+v", items)
	}
	if got := PeriodLabel(4, 2023); got != "April 2023" {
		t.Fatalf("PeriodLabel = %q", got)
	}
}
