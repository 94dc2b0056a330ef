package repository

import (
	"context"
	"strings"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "insert customer", "customer", c.ID)
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", c.ID).
		Select("name", "address", "phone", "email").
		Updates(c)
	if res.Error != nil {
		return apperr.Backend("update customer", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("customer", c.ID)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "get customer", "customer", id)
	}
	return &customer, nil
}

// List does a case-insensitive substring search, the same way across postgres and sqlite.
func (r *CustomerRepository) List(ctx context.Context, query string) ([]models.Customer, error) {
	var customers []models.Customer

	dbQuery := r.db.WithContext(ctx).Model(&models.Customer{})
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbQuery = dbQuery.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}

	err := dbQuery.Order("created_at DESC").Find(&customers).Error
	return customers, apperr.Backend("list customers", err)
}

func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Backend("delete customer", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("customer", id)
	}
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&n).Error
	return n, apperr.Backend("count customers", err)
}
