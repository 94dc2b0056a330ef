package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"index;not null" json:"name"`
	Address   string    `gorm:"not null" json:"address"`
	Phone     string    `gorm:"not null" json:"phone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `gorm:"<-:create" json:"created_at"`
}

// EmailOrNA is used by printed documents.
func (c Customer) EmailOrNA() string {
	if c.Email == nil || *c.Email == "" {
		return "N/A"
	}
	return *c.Email
}
