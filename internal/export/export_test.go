package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/services/aggregation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleCustomer() models.Customer {
	return models.Customer{ID: uuid.New(), Name: "John Doe", Address: "123 Main St", Phone: "555-123-4567"}
}

func sampleEntries(customerID uuid.UUID) []models.Entry {
	mk := func(day int, product models.Product, qty, price string) models.Entry {
		e := models.Entry{
			ID:           uuid.New(),
			CustomerID:   customerID,
			Date:         time.Date(2023, 4, day, 0, 0, 0, 0, time.UTC),
			Product:      product,
			Quantity:     decimal.RequireFromString(qty),
			PricePerUnit: decimal.RequireFromString(price),
		}
		e.Recalculate()
		return e
	}
	return []models.Entry{
		mk(2, models.LowFatMilk, "1", "1.25"),
		mk(1, models.WholeMilk, "2", "1.50"),
		mk(3, models.OrganicMilk, "1.5", "3.00"),
	}
}

func TestFromPreview(t *testing.T) {
	c := sampleCustomer()
	p := aggregation.BuildBillPreview(sampleEntries(c.ID), c, 3, 2023)
	doc := FromPreview(p, "$")

	if doc.BillID != nil || doc.Status() != "Unpaid" {
		t.Fatalf("preview doc = %+v", doc)
	}
	if doc.PeriodLabel != "April 2023" {
		t.Errorf("label = %q", doc.PeriodLabel)
	}
	if got := doc.PeriodRange(); got != "April 1, 2023 - April 30, 2023" {
		t.Errorf("range = %q", got)
	}
	if len(doc.Table.Rows) != 3 || doc.Table.Rows[0].Product != "Whole Milk" {
		t.Fatalf("rows = %+v", doc.Table.Rows)
	}
	if doc.Table.Total.StringFixed(2) != "8.75" {
		t.Errorf("total = %s", doc.Table.Total)
	}
	if got := doc.Filename(FormatPDF); got != "bill-john-doe-april-2023.pdf" {
		t.Errorf("filename = %q", got)
	}
}

func TestFromBillUsesSnapshot(t *testing.T) {
	c := sampleCustomer()
	paidOn := time.Date(2023, 5, 3, 10, 0, 0, 0, time.UTC)
	b := models.Bill{
		ID:          uuid.New(),
		CustomerID:  c.ID,
		Month:       4,
		Year:        2023,
		TotalAmount: decimal.RequireFromString("8.75"),
		Payment:     models.Payment{IsPaid: true, PaidOn: &paidOn},
	}
	items := models.NewLineItems(sampleEntries(c.ID)[:1])
	doc := FromBill(b, c, items, "$")

	if doc.BillID == nil || *doc.BillID != b.ID {
		t.Fatalf("bill id = %v", doc.BillID)
	}
	if doc.Status() != "Paid" || doc.PaidOn == nil {
		t.Fatalf("status = %s", doc.Status())
	}
	if len(doc.Table.Rows) != 1 || !doc.Table.Total.Equal(b.TotalAmount) {
		t.Fatalf("table = %+v", doc.Table)
	}
}

func TestWriteXLSX(t *testing.T) {
	c := sampleCustomer()
	doc := FromPreview(aggregation.BuildBillPreview(sampleEntries(c.ID), c, 3, 2023), "$")

	data, err := WriteXLSX(doc)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) == 0 || rows[0][0] != "Bill Preview" {
		t.Fatalf("rows = %v", rows)
	}

	header := -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == "Date" {
			header = i
			break
		}
	}
	if header < 0 {
		t.Fatalf("no table header in %v", rows)
	}
	first := rows[header+1]
	if first[0] != "Apr 1, 2023" || first[1] != "Whole Milk" || first[4] != "$3.00" {
		t.Errorf("first row = %v", first)
	}
	total := rows[header+4]
	if total[3] != "Total" || total[4] != "$8.75" {
		t.Errorf("total row = %v", total)
	}

	email := ""
	for _, r := range rows {
		if len(r) > 1 && r[0] == "Email" {
			email = r[1]
		}
	}
	if email != "N/A" {
		t.Errorf("email = %q, want N/A", email)
	}
}

func TestWritePDF(t *testing.T) {
	c := sampleCustomer()
	doc := FromPreview(aggregation.BuildBillPreview(sampleEntries(c.ID), c, 3, 2023), "$")

	data, err := WritePDF(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	_, _, err := Render(Document{}, "docx")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, contentType, err := Render(FromPreview(aggregation.Preview{Year: 2023}, "$"), "PDF")
	if err != nil || contentType != "application/pdf" {
		t.Fatalf("render pdf: %q %v", contentType, err)
	}
}
