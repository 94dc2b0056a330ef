package models

import (
	"time"

	"dairy-billing-backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry is one delivery to a customer on a calendar day.
type Entry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;index:idx_entries_customer_date;not null" json:"customer_id"`
	Date         time.Time       `gorm:"index:idx_entries_customer_date;not null" json:"date"`
	Product      Product         `gorm:"not null" json:"product"`
	Quantity     decimal.Decimal `gorm:"type:numeric(12,3);not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_unit"`
	Amount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Payment      `gorm:"embedded"`
	CreatedAt    time.Time `gorm:"<-:create" json:"created_at"`
}

// ComputeAmount is quantity times unit price at currency precision.
func ComputeAmount(quantity, pricePerUnit decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pricePerUnit).Round(2)
}

// Recalculate derives Amount and normalises Date to a UTC calendar day.
func (e *Entry) Recalculate() {
	e.Date = DateOnly(e.Date)
	e.Amount = ComputeAmount(e.Quantity, e.PricePerUnit)
}

// BeforeSave keeps the stored amount consistent no matter which code path writes the row.
func (e *Entry) BeforeSave(tx *gorm.DB) error {
	e.Recalculate()
	return e.Payment.CheckInvariant()
}

// Validate checks the fields a caller supplies. Amount is derived and not checked.
func (e *Entry) Validate(catalog *Catalog) error {
	fields := map[string]string{}
	if e.CustomerID == uuid.Nil {
		fields["customer_id"] = "required"
	}
	if e.Date.IsZero() {
		fields["date"] = "required"
	}
	if catalog != nil {
		if p, ok := catalog.Lookup(string(e.Product)); ok {
			e.Product = p
		} else {
			fields["product"] = "unknown product"
		}
	}
	if !e.Quantity.IsPositive() {
		fields["quantity"] = "must be greater than zero"
	}
	if !e.PricePerUnit.IsPositive() {
		fields["price_per_unit"] = "must be greater than zero"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return e.Payment.CheckInvariant()
}

// DateOnly keeps the calendar day of t and drops the time of day, in UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
