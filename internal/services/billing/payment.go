package billing

import (
	"context"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/events"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
)

// Paid/unpaid transitions. Repeating a transition is a no-op: the record is
// returned unchanged, nothing is written and no event is published.

func (s *BillingService) MarkBillPaid(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	return s.SetBillPaid(ctx, id, true)
}

func (s *BillingService) MarkBillUnpaid(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	return s.SetBillPaid(ctx, id, false)
}

func (s *BillingService) SetBillPaid(ctx context.Context, id uuid.UUID, paid bool) (*models.Bill, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bill.Payment.Set(paid, s.now()) {
		return bill, nil
	}
	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, models.SubjectBill, bill.ID, bill.Payment, events.BillPaymentChanged)
	return bill, nil
}

func (s *BillingService) MarkEntryPaid(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	return s.SetEntryPaid(ctx, id, true)
}

func (s *BillingService) MarkEntryUnpaid(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	return s.SetEntryPaid(ctx, id, false)
}

func (s *BillingService) SetEntryPaid(ctx context.Context, id uuid.UUID, paid bool) (*models.Entry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entry.Payment.Set(paid, s.now()) {
		return entry, nil
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, models.SubjectEntry, entry.ID, entry.Payment, events.EntryPaymentChanged)
	return entry, nil
}

// PaymentHistory lists the recorded transitions of a bill or entry, oldest first.
func (s *BillingService) PaymentHistory(ctx context.Context, subjectType string, id uuid.UUID) ([]models.PaymentEvent, error) {
	var err error
	switch subjectType {
	case models.SubjectBill:
		_, err = s.bills.GetByID(ctx, id)
	case models.SubjectEntry:
		_, err = s.entries.GetByID(ctx, id)
	default:
		return nil, apperr.Validation("unknown payment subject " + subjectType)
	}
	if err != nil {
		return nil, err
	}
	return s.payments.ListBySubject(ctx, subjectType, id)
}

// afterTransition writes the audit record and publishes the change. The
// state change is already stored, so failures here are logged only.
func (s *BillingService) afterTransition(ctx context.Context, subjectType string, id uuid.UUID, p models.Payment, eventType string) {
	ev := models.NewPaymentEvent(subjectType, id, p, s.now().UTC())
	if err := s.payments.Create(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "payment event not recorded",
			"subject_type", subjectType, "subject_id", id, logging.FieldError, err)
	}

	s.logger.InfoContext(ctx, "payment state changed",
		"subject_type", subjectType, "subject_id", id, "state", p.State())
	s.publish(ctx, eventType, map[string]any{
		"subject_id": id,
		"is_paid":    p.IsPaid,
		"paid_on":    p.PaidOn,
	})
}
