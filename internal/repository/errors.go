package repository

import (
	"errors"

	"dairy-billing-backend/internal/apperr"

	"gorm.io/gorm"
)

// translate maps gorm errors onto application error kinds.
func translate(err error, op, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, id)
	}
	return apperr.Backend(op, err)
}
