package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubjectBill  = "bill"
	SubjectEntry = "entry"

	ActionMarkPaid   = "mark_paid"
	ActionMarkUnpaid = "mark_unpaid"
)

// PaymentEvent records one paid/unpaid transition of a bill or entry.
type PaymentEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectType string     `gorm:"index:idx_payment_events_subject;not null" json:"subject_type"`
	SubjectID   uuid.UUID  `gorm:"type:uuid;index:idx_payment_events_subject;not null" json:"subject_id"`
	Action      string     `gorm:"not null" json:"action"`
	PaidOn      *time.Time `json:"paid_on"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewPaymentEvent(subjectType string, subjectID uuid.UUID, p Payment, at time.Time) *PaymentEvent {
	action := ActionMarkUnpaid
	if p.IsPaid {
		action = ActionMarkPaid
	}
	return &PaymentEvent{
		ID:          uuid.New(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Action:      action,
		PaidOn:      p.PaidOn,
		CreatedAt:   at,
	}
}
