package repository

import (
	"context"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

func (r *PaymentEventRepository) Create(ctx context.Context, ev *models.PaymentEvent) error {
	return apperr.Backend("insert payment event", r.db.WithContext(ctx).Create(ev).Error)
}

func (r *PaymentEventRepository) ListBySubject(ctx context.Context, subjectType string, subjectID uuid.UUID) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at ASC").
		Find(&events).Error
	return events, apperr.Backend("list payment events", err)
}
