package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents a renter, independent of any specific lease.
type Tenant struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Leases []Lease `json:"leases,omitempty" gorm:"many2many:lease_tenants;"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}
