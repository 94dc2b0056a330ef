// Package memory is an in-process implementation of the repository stores.
// It backs DATA_BACKEND=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"

	"github.com/google/uuid"
)

type data struct {
	mu        sync.Mutex
	seq       int64
	customers map[uuid.UUID]row[models.Customer]
	entries   map[uuid.UUID]row[models.Entry]
	bills     map[uuid.UUID]row[models.Bill]
	events    []models.PaymentEvent
	imports   map[uuid.UUID]models.ImportBatch
}

// row remembers insertion order so equal timestamps still sort deterministically.
type row[T any] struct {
	seq int64
	v   T
}

// New returns a Store whose stores share one dataset.
func New() *repository.Store {
	d := &data{
		customers: make(map[uuid.UUID]row[models.Customer]),
		entries:   make(map[uuid.UUID]row[models.Entry]),
		bills:     make(map[uuid.UUID]row[models.Bill]),
		imports:   make(map[uuid.UUID]models.ImportBatch),
	}
	return &repository.Store{
		Customers: &customers{d},
		Entries:   &entries{d},
		Bills:     &bills{d},
		Payments:  &payments{d},
		Imports:   &imports{d},
		Close:     func() error { return nil },
	}
}

func (d *data) next() int64 {
	d.seq++
	return d.seq
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

type customers struct{ d *data }

func (s *customers) Create(_ context.Context, c *models.Customer) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.customers[c.ID]; ok {
		return apperr.Conflict("customer already exists")
	}
	stamp(&c.CreatedAt)
	s.d.customers[c.ID] = row[models.Customer]{seq: s.d.next(), v: *c}
	return nil
}

func (s *customers) Update(_ context.Context, c *models.Customer) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	cur, ok := s.d.customers[c.ID]
	if !ok {
		return apperr.NotFound("customer", c.ID)
	}
	c.CreatedAt = cur.v.CreatedAt
	cur.v = *c
	s.d.customers[c.ID] = cur
	return nil
}

func (s *customers) GetByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	r, ok := s.d.customers[id]
	if !ok {
		return nil, apperr.NotFound("customer", id)
	}
	c := r.v
	return &c, nil
}

func (s *customers) List(_ context.Context, query string) ([]models.Customer, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	s.d.mu.Lock()
	rows := make([]row[models.Customer], 0, len(s.d.customers))
	for _, r := range s.d.customers {
		c := r.v
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Phone), q) ||
			strings.Contains(strings.ToLower(c.Address), q) {
			rows = append(rows, r)
		}
	}
	s.d.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].v.CreatedAt.Equal(rows[j].v.CreatedAt) {
			return rows[i].v.CreatedAt.After(rows[j].v.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	return values(rows), nil
}

func (s *customers) Delete(_ context.Context, id uuid.UUID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.customers[id]; !ok {
		return apperr.NotFound("customer", id)
	}
	delete(s.d.customers, id)
	return nil
}

func (s *customers) Count(_ context.Context) (int64, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return int64(len(s.d.customers)), nil
}

type entries struct{ d *data }

func (s *entries) Create(_ context.Context, e *models.Entry) error {
	e.Recalculate()
	if err := e.Payment.CheckInvariant(); err != nil {
		return err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.entries[e.ID]; ok {
		return apperr.Conflict("entry already exists")
	}
	stamp(&e.CreatedAt)
	s.d.entries[e.ID] = row[models.Entry]{seq: s.d.next(), v: *e}
	return nil
}

func (s *entries) Update(_ context.Context, e *models.Entry) error {
	e.Recalculate()
	if err := e.Payment.CheckInvariant(); err != nil {
		return err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	cur, ok := s.d.entries[e.ID]
	if !ok {
		return apperr.NotFound("entry", e.ID)
	}
	e.CreatedAt = cur.v.CreatedAt
	cur.v = *e
	s.d.entries[e.ID] = cur
	return nil
}

func (s *entries) GetByID(_ context.Context, id uuid.UUID) (*models.Entry, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	r, ok := s.d.entries[id]
	if !ok {
		return nil, apperr.NotFound("entry", id)
	}
	e := r.v
	return &e, nil
}

func (s *entries) List(_ context.Context, f repository.EntryFilter) ([]models.Entry, error) {
	rows := s.match(f)
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].v, rows[j].v
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	return values(rows), nil
}

func (s *entries) Delete(_ context.Context, id uuid.UUID) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.entries[id]; !ok {
		return apperr.NotFound("entry", id)
	}
	delete(s.d.entries, id)
	return nil
}

func (s *entries) Count(_ context.Context, f repository.EntryFilter) (int64, error) {
	return int64(len(s.match(f))), nil
}

func (s *entries) match(f repository.EntryFilter) []row[models.Entry] {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var rows []row[models.Entry]
	for _, r := range s.d.entries {
		e := r.v
		if f.CustomerID != nil && e.CustomerID != *f.CustomerID {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.Date.Before(*f.To) {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

type bills struct{ d *data }

func (s *bills) Create(_ context.Context, b *models.Bill) error {
	if err := b.Payment.CheckInvariant(); err != nil {
		return err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.bills[b.ID]; ok {
		return apperr.Conflict("bill already exists")
	}
	stamp(&b.CreatedAt)
	s.d.bills[b.ID] = row[models.Bill]{seq: s.d.next(), v: *b}
	return nil
}

// Update only touches the payment state, matching the gorm store.
func (s *bills) Update(_ context.Context, b *models.Bill) error {
	if err := b.Payment.CheckInvariant(); err != nil {
		return err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	cur, ok := s.d.bills[b.ID]
	if !ok {
		return apperr.NotFound("bill", b.ID)
	}
	cur.v.Payment = b.Payment
	s.d.bills[b.ID] = cur
	return nil
}

func (s *bills) GetByID(_ context.Context, id uuid.UUID) (*models.Bill, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	r, ok := s.d.bills[id]
	if !ok {
		return nil, apperr.NotFound("bill", id)
	}
	b := r.v
	return &b, nil
}

func (s *bills) List(_ context.Context, f repository.BillFilter) ([]models.Bill, error) {
	rows := s.match(f)
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].v.CreatedAt.Equal(rows[j].v.CreatedAt) {
			return rows[i].v.CreatedAt.After(rows[j].v.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	return values(rows), nil
}

func (s *bills) Count(_ context.Context, f repository.BillFilter) (int64, error) {
	return int64(len(s.match(f))), nil
}

func (s *bills) match(f repository.BillFilter) []row[models.Bill] {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var rows []row[models.Bill]
	for _, r := range s.d.bills {
		b := r.v
		if f.CustomerID != nil && b.CustomerID != *f.CustomerID {
			continue
		}
		if f.Month != 0 && b.Month != f.Month {
			continue
		}
		if f.Year != 0 && b.Year != f.Year {
			continue
		}
		if f.Paid != nil && b.IsPaid != *f.Paid {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

type payments struct{ d *data }

func (s *payments) Create(_ context.Context, ev *models.PaymentEvent) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	stamp(&ev.CreatedAt)
	s.d.events = append(s.d.events, *ev)
	return nil
}

func (s *payments) ListBySubject(_ context.Context, subjectType string, subjectID uuid.UUID) ([]models.PaymentEvent, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var out []models.PaymentEvent
	for _, ev := range s.d.events {
		if ev.SubjectType == subjectType && ev.SubjectID == subjectID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type imports struct{ d *data }

func (s *imports) Create(_ context.Context, b *models.ImportBatch) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	stamp(&b.CreatedAt)
	s.d.imports[b.ID] = *b
	return nil
}

func (s *imports) Update(_ context.Context, b *models.ImportBatch) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if _, ok := s.d.imports[b.ID]; !ok {
		return apperr.NotFound("import batch", b.ID)
	}
	s.d.imports[b.ID] = *b
	return nil
}

func (s *imports) GetByID(_ context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	b, ok := s.d.imports[id]
	if !ok {
		return nil, apperr.NotFound("import batch", id)
	}
	return &b, nil
}

func values[T any](rows []row[T]) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.v)
	}
	return out
}
