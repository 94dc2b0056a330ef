package repository

import (
	"context"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Expose DB if needed
func (r *BillRepository) DB() *gorm.DB {
	return r.db
}

func (r *BillRepository) Create(ctx context.Context, b *models.Bill) error {
	return translate(r.db.WithContext(ctx).Create(b).Error, "insert bill", "bill", b.ID)
}

// Update persists the payment state, the only mutable part of a bill.
func (r *BillRepository) Update(ctx context.Context, b *models.Bill) error {
	res := r.db.WithContext(ctx).Model(&models.Bill{}).Where("id = ?", b.ID).
		Updates(map[string]any{
			"is_paid": b.IsPaid,
			"paid_on": b.PaidOn,
		})
	if res.Error != nil {
		return apperr.Backend("update bill", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("bill", b.ID)
	}
	return nil
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.WithContext(ctx).First(&bill, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get bill", "bill", id)
	}
	return &bill, nil
}

func (r *BillRepository) List(ctx context.Context, f BillFilter) ([]models.Bill, error) {
	var bills []models.Bill
	err := r.filtered(ctx, f).Order("created_at DESC").Find(&bills).Error
	return bills, apperr.Backend("list bills", err)
}

func (r *BillRepository) Count(ctx context.Context, f BillFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, apperr.Backend("count bills", err)
}

func (r *BillRepository) filtered(ctx context.Context, f BillFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Bill{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Month != 0 {
		q = q.Where("month = ?", f.Month)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Paid != nil {
		q = q.Where("is_paid = ?", *f.Paid)
	}
	return q
}
