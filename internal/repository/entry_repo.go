package repository

import (
	"context"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, e *models.Entry) error {
	return translate(r.db.WithContext(ctx).Create(e).Error, "insert entry", "entry", e.ID)
}

// Update overwrites every column except created_at. Last write wins.
func (r *EntryRepository) Update(ctx context.Context, e *models.Entry) error {
	res := r.db.WithContext(ctx).Model(e).Select("*").Omit("created_at").Updates(e)
	if res.Error != nil {
		return apperr.Backend("update entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("entry", e.ID)
	}
	return nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	var entry models.Entry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get entry", "entry", id)
	}
	return &entry, nil
}

func (r *EntryRepository) List(ctx context.Context, f EntryFilter) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.filtered(ctx, f).Order("date ASC, created_at ASC").Find(&entries).Error
	return entries, apperr.Backend("list entries", err)
}

func (r *EntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Entry{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Backend("delete entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("entry", id)
	}
	return nil
}

func (r *EntryRepository) Count(ctx context.Context, f EntryFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, apperr.Backend("count entries", err)
}

func (r *EntryRepository) filtered(ctx context.Context, f EntryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Entry{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date < ?", f.To.UTC())
	}
	return q
}
