package deliveries

import (
	"context"
	"log/slog"
	"time"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PaymentSetter applies paid/unpaid transitions to entries.
type PaymentSetter interface {
	SetEntryPaid(ctx context.Context, id uuid.UUID, paid bool) (*models.Entry, error)
}

type Options struct {
	Clock  func() time.Time
	Logger *slog.Logger
}

// DeliveryService owns customers and their delivery entries.
type DeliveryService struct {
	customers repository.CustomerStore
	entries   repository.EntryStore
	bills     repository.BillStore
	imports   repository.ImportBatchStore
	catalog   *models.Catalog
	payments  PaymentSetter
	validate  *validator.Validate
	now       func() time.Time
	logger    *slog.Logger
}

func NewDeliveryService(store *repository.Store, catalog *models.Catalog, payments PaymentSetter, opts Options) *DeliveryService {
	if catalog == nil {
		catalog = models.NewCatalog()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &DeliveryService{
		customers: store.Customers,
		entries:   store.Entries,
		bills:     store.Bills,
		imports:   store.Imports,
		catalog:   catalog,
		payments:  payments,
		validate:  apperr.NewValidator(),
		now:       clock,
		logger:    logging.WithComponent(opts.Logger, logging.ComponentDelivery),
	}
}

func (s *DeliveryService) Products() []models.Product {
	return s.catalog.Products()
}

// check runs struct tag validation and reports failures as a validation error.
func (s *DeliveryService) check(v any) error {
	return apperr.FromValidator(s.validate.Struct(v))
}
