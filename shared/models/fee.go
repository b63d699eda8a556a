package models

import (
	"time"

	"github.com/google/uuid"
)

// Fee is a dated financial line item attached to exactly one lease.
type Fee struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	LeaseID     uuid.UUID `json:"lease_id" gorm:"type:uuid;not null;index"`
	Type        string    `json:"type" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	Date        time.Time `json:"date" gorm:"not null"`
	Description string    `json:"description"`
	IsPaid      bool      `json:"is_paid" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Lease *Lease `json:"lease,omitempty" gorm:"foreignKey:LeaseID"`
}

// TableName returns the table name for the Fee model
func (Fee) TableName() string {
	return "fees"
}
