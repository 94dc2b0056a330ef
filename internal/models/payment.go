package models

import (
	"time"

	"dairy-billing-backend/internal/apperr"
)

type PaymentState string

const (
	StateUnpaid PaymentState = "unpaid"
	StatePaid   PaymentState = "paid"
)

// Payment is the paid flag shared by entries and bills.
// PaidOn is set exactly when IsPaid is true.
type Payment struct {
	IsPaid bool       `gorm:"column:is_paid;not null;default:false" json:"is_paid"`
	PaidOn *time.Time `gorm:"column:paid_on" json:"paid_on"`
}

func (p Payment) State() PaymentState {
	if p.IsPaid {
		return StatePaid
	}
	return StateUnpaid
}

// MarkPaid moves unpaid to paid and stamps PaidOn. Calling it on a paid
// record changes nothing, so PaidOn keeps the first payment time.
// It reports whether the state changed.
func (p *Payment) MarkPaid(now time.Time) bool {
	if p.IsPaid {
		return false
	}
	paidOn := now.UTC()
	p.IsPaid = true
	p.PaidOn = &paidOn
	return true
}

// MarkUnpaid moves paid to unpaid and clears PaidOn. No-op when already unpaid.
func (p *Payment) MarkUnpaid() bool {
	if !p.IsPaid {
		return false
	}
	p.IsPaid = false
	p.PaidOn = nil
	return true
}

// Set applies the transition that reaches the requested state.
func (p *Payment) Set(paid bool, now time.Time) bool {
	if paid {
		return p.MarkPaid(now)
	}
	return p.MarkUnpaid()
}

func (p Payment) CheckInvariant() error {
	if p.IsPaid && p.PaidOn == nil {
		return apperr.ValidationFields(map[string]string{"paid_on": "required when is_paid is true"})
	}
	if !p.IsPaid && p.PaidOn != nil {
		return apperr.ValidationFields(map[string]string{"paid_on": "must be empty when is_paid is false"})
	}
	return nil
}
