package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-form owner note with pinning support.
type Note struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	Color     string    `json:"color" gorm:"default:'yellow'"`
	Pinned    bool      `json:"pinned" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Note model
func (Note) TableName() string {
	return "notes"
}
