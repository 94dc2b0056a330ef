// Package export renders bills and bill previews as XLSX or PDF documents.
package export

import (
	"fmt"
	"time"

	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/services/aggregation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const (
	dateLayout  = "Jan 2, 2006"
	rangeLayout = "January 2, 2006"
)

type Row struct {
	Date      time.Time
	Product   string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// Table is the flat line-item table plus its totals row.
type Table struct {
	Rows  []Row
	Total decimal.Decimal
}

type Document struct {
	Title       string
	BillID      *uuid.UUID
	Customer    models.Customer
	PeriodLabel string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Paid        bool
	PaidOn      *time.Time
	Currency    string
	Table       Table
}

// FromPreview builds an unsaved bill document from a preview.
func FromPreview(p aggregation.Preview, currency string) Document {
	start, _ := p.Period()
	rows := make([]Row, 0, len(p.LineItems))
	for _, e := range p.LineItems {
		rows = append(rows, Row{
			Date:      e.Date,
			Product:   string(e.Product),
			Quantity:  e.Quantity,
			UnitPrice: e.PricePerUnit,
			Amount:    e.Amount,
		})
	}
	return Document{
		Title:       "Bill Preview",
		Customer:    p.Customer,
		PeriodLabel: models.PeriodLabel(p.Month(), p.Year),
		PeriodStart: start,
		PeriodEnd:   aggregation.LastDay(p.MonthIndex, p.Year),
		Currency:    currency,
		Table:       Table{Rows: rows, Total: p.TotalAmount},
	}
}

// FromBill builds a document from a stored bill and its line-item snapshot.
// The totals row is the bill's stored total, not a re-sum of the rows.
func FromBill(b models.Bill, customer models.Customer, items []models.LineItem, currency string) Document {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			Date:      it.Date,
			Product:   string(it.Product),
			Quantity:  it.Quantity,
			UnitPrice: it.PricePerUnit,
			Amount:    it.Amount,
		})
	}
	id := b.ID
	start, _ := aggregation.PeriodBounds(b.MonthIndex(), b.Year)
	return Document{
		Title:       "Monthly Bill",
		BillID:      &id,
		Customer:    customer,
		PeriodLabel: b.PeriodLabel(),
		PeriodStart: start,
		PeriodEnd:   aggregation.LastDay(b.MonthIndex(), b.Year),
		Paid:        b.IsPaid,
		PaidOn:      b.PaidOn,
		Currency:    currency,
		Table:       Table{Rows: rows, Total: b.TotalAmount},
	}
}

func (d Document) Status() string {
	if d.Paid {
		return "Paid"
	}
	return "Unpaid"
}

// PeriodRange renders "January 1, 2023 - January 31, 2023".
func (d Document) PeriodRange() string {
	return d.PeriodStart.Format(rangeLayout) + " - " + d.PeriodEnd.Format(rangeLayout)
}

// Filename is the download name for the given format, e.g. "bill-john-doe-april-2023.pdf".
func (d Document) Filename(format string) string {
	return fmt.Sprintf("bill-%s-%s.%s", slug(d.Customer.Name), slug(d.PeriodLabel), format)
}

func (d Document) money(v decimal.Decimal) string {
	return d.Currency + v.StringFixed(2)
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			dash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
			dash = false
		default:
			if !dash && len(out) > 0 {
				out = append(out, '-')
				dash = true
			}
		}
	}
	if dash {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "customer"
	}
	return string(out)
}
