package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a grouping label for properties. It carries no behavior of
// its own.
type Organization struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:OrganizationID"`
}

// TableName returns the table name for the Organization model
func (Organization) TableName() string {
	return "organizations"
}
