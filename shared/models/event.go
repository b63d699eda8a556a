package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry (visit, payment reminder, maintenance, ...).
type Event struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date" gorm:"not null"`
	EndDate     *time.Time `json:"end_date"`
	Type        string     `json:"type" gorm:"default:'general'"`
	Color       string     `json:"color" gorm:"default:'blue'"`
	Reminder    bool       `json:"reminder" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}
