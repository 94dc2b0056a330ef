package repository

import (
	"context"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

func (r *ImportBatchRepository) Create(ctx context.Context, b *models.ImportBatch) error {
	return apperr.Backend("insert import batch", r.db.WithContext(ctx).Create(b).Error)
}

func (r *ImportBatchRepository) Update(ctx context.Context, b *models.ImportBatch) error {
	return apperr.Backend("update import batch", r.db.WithContext(ctx).Save(b).Error)
}

func (r *ImportBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get import batch", "import batch", id)
	}
	return &batch, nil
}
