package deliveries

import (
	"context"
	"fmt"
	"strings"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"
	"dairy-billing-backend/internal/services/aggregation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type CustomerInput struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Address string  `json:"address" validate:"required,max=500"`
	Phone   string  `json:"phone" validate:"required,max=50"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			in.Email = nil
		} else {
			in.Email = &email
		}
	}
}

// CustomerDetail is the customer page: history, bills and month-to-date total.
type CustomerDetail struct {
	Customer          models.Customer           `json:"customer"`
	Entries           []models.Entry            `json:"entries"`
	Bills             []models.Bill             `json:"bills"`
	CurrentMonthTotal decimal.Decimal           `json:"current_month_total"`
	MonthlyTotals     []aggregation.PeriodTotal `json:"monthly_totals"`
}

func (s *DeliveryService) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:        uuid.New(),
		Name:      in.Name,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer created", logging.FieldCustomerID, customer.ID)
	return customer, nil
}

func (s *DeliveryService) UpdateCustomer(ctx context.Context, id uuid.UUID, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = in.Name
	customer.Address = in.Address
	customer.Phone = in.Phone
	customer.Email = in.Email

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *DeliveryService) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

func (s *DeliveryService) ListCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	return s.customers.List(ctx, query)
}

// DeleteCustomer refuses to orphan entries or bills.
func (s *DeliveryService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customers.GetByID(ctx, id); err != nil {
		return err
	}

	entries, err := s.entries.Count(ctx, repository.EntryFilter{CustomerID: &id})
	if err != nil {
		return err
	}
	bills, err := s.bills.Count(ctx, repository.BillFilter{CustomerID: &id})
	if err != nil {
		return err
	}
	if entries > 0 || bills > 0 {
		return apperr.Validation(fmt.Sprintf("customer has %d entries and %d bills; remove them first", entries, bills))
	}

	if err := s.customers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "customer deleted", logging.FieldCustomerID, id)
	return nil
}

func (s *DeliveryService) CustomerDetail(ctx context.Context, id uuid.UUID) (*CustomerDetail, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		entries []models.Entry
		bills   []models.Bill
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.entries.List(gctx, repository.EntryFilter{CustomerID: &id})
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = s.bills.List(gctx, repository.BillFilter{CustomerID: &id})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	monthIndex := int(now.Month()) - 1

	return &CustomerDetail{
		Customer:          *customer,
		Entries:           newestFirst(entries),
		Bills:             bills,
		CurrentMonthTotal: aggregation.MonthlyTotal(entries, id, monthIndex, now.Year()),
		MonthlyTotals:     aggregation.Totals(entries),
	}, nil
}
