package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/events"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"
	"dairy-billing-backend/internal/services/aggregation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Options struct {
	// UniquePeriod rejects a second bill for the same customer, month and year.
	UniquePeriod bool
	Clock        func() time.Time
	Logger       *slog.Logger
}

type BillingService struct {
	customers    repository.CustomerStore
	entries      repository.EntryStore
	bills        repository.BillStore
	payments     repository.PaymentEventStore
	publisher    events.Publisher
	uniquePeriod bool
	now          func() time.Time
	logger       *slog.Logger
}

func NewBillingService(store *repository.Store, publisher events.Publisher, opts Options) *BillingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &BillingService{
		customers:    store.Customers,
		entries:      store.Entries,
		bills:        store.Bills,
		payments:     store.Payments,
		publisher:    publisher,
		uniquePeriod: opts.UniquePeriod,
		now:          clock,
		logger:       logging.WithComponent(opts.Logger, logging.ComponentBilling),
	}
}

// BillSummary is a bill row as shown in listings.
type BillSummary struct {
	models.Bill
	CustomerName string `json:"customer_name"`
	Period       string `json:"period"`
}

// BillDetail pairs a bill with its snapshot and the entries currently in its period.
// Stale is true when the current entries no longer add up to the billed total.
type BillDetail struct {
	Bill           models.Bill       `json:"bill"`
	Customer       models.Customer   `json:"customer"`
	Period         string            `json:"period"`
	LineItems      []models.LineItem `json:"line_items"`
	CurrentEntries []models.Entry    `json:"current_entries"`
	CurrentTotal   decimal.Decimal   `json:"current_total"`
	Stale          bool              `json:"stale"`
}

type BillQuery struct {
	// Query matches the customer name or the period label, e.g. "april 2023".
	Query      string
	CustomerID *uuid.UUID
	Paid       *bool
}

// Preview computes the bill a customer would get for a month without saving anything.
func (s *BillingService) Preview(ctx context.Context, customerID uuid.UUID, monthIndex, year int) (*aggregation.Preview, error) {
	if err := validatePeriod(customerID, monthIndex, year); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	entries, err := s.periodEntries(ctx, customerID, monthIndex, year)
	if err != nil {
		return nil, err
	}

	preview := aggregation.BuildBillPreview(entries, *customer, monthIndex, year)
	return &preview, nil
}

// Generate commits the current preview as a new unpaid bill. It is not
// idempotent: unless UniquePeriod is set, every call creates another bill.
func (s *BillingService) Generate(ctx context.Context, customerID uuid.UUID, monthIndex, year int) (*models.Bill, error) {
	preview, err := s.Preview(ctx, customerID, monthIndex, year)
	if err != nil {
		return nil, err
	}
	if preview.Empty() {
		return nil, apperr.Validation(fmt.Sprintf("no entries for %s in %s, nothing to bill",
			preview.Customer.Name, models.PeriodLabel(preview.Month(), year)))
	}

	if s.uniquePeriod {
		n, err := s.bills.Count(ctx, repository.BillFilter{CustomerID: &customerID, Month: preview.Month(), Year: year})
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, apperr.Conflict(fmt.Sprintf("a bill for %s already exists for this customer",
				models.PeriodLabel(preview.Month(), year)))
		}
	}

	bill := &models.Bill{
		ID:          uuid.New(),
		CustomerID:  customerID,
		Month:       preview.Month(),
		Year:        year,
		TotalAmount: preview.TotalAmount,
		CreatedAt:   s.now().UTC(),
	}
	if err := bill.SetLineItems(models.NewLineItems(preview.LineItems)); err != nil {
		return nil, err
	}

	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bill generated",
		logging.FieldBillID, bill.ID,
		logging.FieldCustomerID, customerID,
		logging.FieldMonth, bill.Month,
		logging.FieldYear, bill.Year,
		logging.FieldAmount, bill.TotalAmount.StringFixed(2),
	)
	s.publish(ctx, events.BillGenerated, map[string]any{
		"bill_id":      bill.ID,
		"customer_id":  customerID,
		"month":        bill.Month,
		"year":         bill.Year,
		"total_amount": bill.TotalAmount,
	})
	return bill, nil
}

func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*BillDetail, error) {
	bill, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, bill.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := bill.Items()
	if err != nil {
		return nil, apperr.Backend("read bill line items", err)
	}

	current, err := s.periodEntries(ctx, bill.CustomerID, bill.MonthIndex(), bill.Year)
	if err != nil {
		return nil, err
	}
	current = aggregation.EntriesForCustomerInMonth(current, bill.CustomerID, bill.MonthIndex(), bill.Year)
	currentTotal := aggregation.Sum(current)

	return &BillDetail{
		Bill:           *bill,
		Customer:       *customer,
		Period:         bill.PeriodLabel(),
		LineItems:      items,
		CurrentEntries: current,
		CurrentTotal:   currentTotal,
		Stale:          !currentTotal.Equal(bill.TotalAmount),
	}, nil
}

// ListBills returns bills newest first.
func (s *BillingService) ListBills(ctx context.Context, q BillQuery) ([]BillSummary, error) {
	bills, err := s.bills.List(ctx, repository.BillFilter{CustomerID: q.CustomerID, Paid: q.Paid})
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	out := make([]BillSummary, 0, len(bills))
	for _, b := range bills {
		summary := BillSummary{Bill: b, CustomerName: names[b.CustomerID], Period: b.PeriodLabel()}
		if needle != "" &&
			!strings.Contains(strings.ToLower(summary.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(summary.Period), needle) {
			continue
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *BillingService) periodEntries(ctx context.Context, customerID uuid.UUID, monthIndex, year int) ([]models.Entry, error) {
	from, to := aggregation.PeriodBounds(monthIndex, year)
	return s.entries.List(ctx, repository.EntryFilter{CustomerID: &customerID, From: &from, To: &to})
}

func (s *BillingService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "type", eventType, logging.FieldError, err)
	}
}

func validatePeriod(customerID uuid.UUID, monthIndex, year int) error {
	fields := map[string]string{}
	if customerID == uuid.Nil {
		fields["customer_id"] = "select a customer"
	}
	if monthIndex < 0 || monthIndex > 11 {
		fields["month"] = "must be between 1 and 12"
	}
	if year < 1 {
		fields["year"] = "must be a positive year"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(fields)
	}
	return nil
}
