package repository

import (
	"context"
	"time"

	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
)

// EntryFilter narrows an entry listing. From is inclusive and To exclusive.
type EntryFilter struct {
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// BillFilter narrows a bill listing. Zero Month or Year means any.
type BillFilter struct {
	CustomerID *uuid.UUID
	Month      int
	Year       int
	Paid       *bool
}

type CustomerStore interface {
	Create(ctx context.Context, c *models.Customer) error
	Update(ctx context.Context, c *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	// List returns customers newest first; query matches name, phone or address.
	List(ctx context.Context, query string) ([]models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type EntryStore interface {
	Create(ctx context.Context, e *models.Entry) error
	Update(ctx context.Context, e *models.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Entry, error)
	// List returns entries ordered by date, then creation time, ascending.
	List(ctx context.Context, f EntryFilter) ([]models.Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, f EntryFilter) (int64, error)
}

type BillStore interface {
	Create(ctx context.Context, b *models.Bill) error
	Update(ctx context.Context, b *models.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	// List returns bills newest first.
	List(ctx context.Context, f BillFilter) ([]models.Bill, error)
	Count(ctx context.Context, f BillFilter) (int64, error)
}

type PaymentEventStore interface {
	Create(ctx context.Context, ev *models.PaymentEvent) error
	// ListBySubject returns events oldest first.
	ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]models.PaymentEvent, error)
}

type ImportBatchStore interface {
	Create(ctx context.Context, b *models.ImportBatch) error
	Update(ctx context.Context, b *models.ImportBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
}

// Store bundles one implementation of every store. Close releases the
// underlying connection, if any.
type Store struct {
	Customers CustomerStore
	Entries   EntryStore
	Bills     BillStore
	Payments  PaymentEventStore
	Imports   ImportBatchStore
	Close     func() error
}
