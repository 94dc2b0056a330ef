package deliveries

import (
	"context"
	"sort"
	"strings"
	"time"

	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryInput struct {
	CustomerID   uuid.UUID
	Date         time.Time
	Product      string
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	IsPaid       bool
}

// EntryPatch holds the editable fields of an entry; nil means unchanged.
// Amount is never patched directly.
type EntryPatch struct {
	Date         *time.Time
	Product      *string
	Quantity     *decimal.Decimal
	PricePerUnit *decimal.Decimal
	IsPaid       *bool
}

type EntryQuery struct {
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	// Query matches customer name or product, case-insensitively.
	Query string
}

// EntryView is an entry with its customer's name, for listings.
type EntryView struct {
	models.Entry
	CustomerName string `json:"customer_name"`
}

func (s *DeliveryService) CreateEntry(ctx context.Context, in EntryInput) (*models.Entry, error) {
	entry := &models.Entry{
		ID:           uuid.New(),
		CustomerID:   in.CustomerID,
		Date:         models.DateOnly(in.Date),
		Product:      models.Product(in.Product),
		Quantity:     in.Quantity,
		PricePerUnit: in.PricePerUnit,
		CreatedAt:    s.now().UTC(),
	}
	if in.IsPaid {
		entry.MarkPaid(s.now())
	}
	if err := entry.Validate(s.catalog); err != nil {
		return nil, err
	}
	if _, err := s.customers.GetByID(ctx, entry.CustomerID); err != nil {
		return nil, err
	}

	entry.Recalculate()
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "entry recorded",
		logging.FieldEntryID, entry.ID,
		logging.FieldCustomerID, entry.CustomerID,
		logging.FieldAmount, entry.Amount.StringFixed(2),
	)
	return entry, nil
}

// UpdateEntry applies a patch and recomputes the amount. A change of the paid
// flag goes through the payment transitions so paid_on stays consistent.
func (s *DeliveryService) UpdateEntry(ctx context.Context, id uuid.UUID, patch EntryPatch) (*models.Entry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if patch.Date != nil {
		entry.Date = models.DateOnly(*patch.Date)
		changed = true
	}
	if patch.Product != nil {
		entry.Product = models.Product(*patch.Product)
		changed = true
	}
	if patch.Quantity != nil {
		entry.Quantity = *patch.Quantity
		changed = true
	}
	if patch.PricePerUnit != nil {
		entry.PricePerUnit = *patch.PricePerUnit
		changed = true
	}

	if err := entry.Validate(s.catalog); err != nil {
		return nil, err
	}

	if changed {
		entry.Recalculate()
		if err := s.entries.Update(ctx, entry); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "entry updated",
			logging.FieldEntryID, entry.ID,
			logging.FieldAmount, entry.Amount.StringFixed(2),
		)
	}

	if patch.IsPaid != nil && *patch.IsPaid != entry.IsPaid {
		return s.payments.SetEntryPaid(ctx, id, *patch.IsPaid)
	}
	return entry, nil
}

func (s *DeliveryService) GetEntry(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	return s.entries.GetByID(ctx, id)
}

func (s *DeliveryService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "entry deleted", logging.FieldEntryID, id)
	return nil
}

// ListEntries returns matching entries newest first.
func (s *DeliveryService) ListEntries(ctx context.Context, q EntryQuery) ([]EntryView, error) {
	entries, err := s.entries.List(ctx, repository.EntryFilter{CustomerID: q.CustomerID, From: q.From, To: q.To})
	if err != nil {
		return nil, err
	}
	names, err := s.customerNames(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	out := make([]EntryView, 0, len(entries))
	for _, e := range newestFirst(entries) {
		view := EntryView{Entry: e, CustomerName: names[e.CustomerID]}
		if needle != "" &&
			!strings.Contains(strings.ToLower(view.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(string(e.Product)), needle) {
			continue
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *DeliveryService) customerNames(ctx context.Context) (map[uuid.UUID]string, error) {
	customers, err := s.customers.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	return names, nil
}

// newestFirst reverses the repository's ascending order into a new slice.
func newestFirst(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// recentlyCreated returns up to n entries, most recently recorded first.
func recentlyCreated(entries []models.Entry, n int) []models.Entry {
	out := append([]models.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
