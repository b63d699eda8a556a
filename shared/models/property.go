package models

import (
	"time"

	"github.com/google/uuid"
)

// Property represents a rentable unit. A property has zero or more leases
// over its lifetime, possibly several active at once.
type Property struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	OwnerID        uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid;index"`
	Address        string     `json:"address" gorm:"not null"`
	City           string     `json:"city" gorm:"not null"`
	PostalCode     string     `json:"postal_code" gorm:"not null"`
	Type           string     `json:"type" gorm:"not null"`
	Surface        *float64   `json:"surface"`
	Bedrooms       *int       `json:"bedrooms"`
	BaseRent       float64    `json:"base_rent" gorm:"not null"`
	Charges        *float64   `json:"charges"`
	Description    string     `json:"description"`
	Photos         string     `json:"photos"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relationships
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Leases       []Lease       `json:"leases,omitempty" gorm:"foreignKey:PropertyID"`
}

// TableName returns the table name for the Property model
func (Property) TableName() string {
	return "properties"
}
