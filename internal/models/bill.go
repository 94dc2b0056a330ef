package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Bill is a generated monthly total for one customer. Month is one-based.
// LineItems is the snapshot of entries the total was computed from.
type Bill struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;index:idx_bills_period;not null" json:"customer_id"`
	Month       int             `gorm:"index:idx_bills_period;not null" json:"month"`
	Year        int             `gorm:"index:idx_bills_period;not null" json:"year"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	LineItems   datatypes.JSON  `json:"line_items"`
	Payment     `gorm:"embedded"`
	CreatedAt   time.Time `gorm:"<-:create" json:"created_at"`
}

type LineItem struct {
	EntryID      uuid.UUID       `json:"entry_id"`
	Date         time.Time       `json:"date"`
	Product      Product         `json:"product"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Amount       decimal.Decimal `json:"amount"`
}

func NewLineItems(entries []Entry) []LineItem {
	items := make([]LineItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LineItem{
			EntryID:      e.ID,
			Date:         e.Date,
			Product:      e.Product,
			Quantity:     e.Quantity,
			PricePerUnit: e.PricePerUnit,
			Amount:       e.Amount,
		})
	}
	return items
}

func (b *Bill) SetLineItems(items []LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	b.LineItems = datatypes.JSON(raw)
	return nil
}

func (b Bill) Items() ([]LineItem, error) {
	if len(b.LineItems) == 0 {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(b.LineItems, &items); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	return items, nil
}

// MonthIndex converts the stored month to the zero-based index used by the aggregation code.
func (b Bill) MonthIndex() int {
	return b.Month - 1
}

func (b Bill) PeriodLabel() string {
	return PeriodLabel(b.Month, b.Year)
}

// PeriodLabel formats a one-based month as "April 2023".
func PeriodLabel(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month), year)
}
