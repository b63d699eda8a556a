package models

import (
	"time"

	"github.com/google/uuid"
)

// Lease binds a property to one or more tenants over a time interval.
// Termination is a soft end state: the record, its tenant links and its fee
// history are never deleted by a state transition.
type Lease struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID   `json:"owner_id" gorm:"type:uuid;not null;index"`
	PropertyID  uuid.UUID   `json:"property_id" gorm:"type:uuid;not null;index"`
	StartDate   time.Time   `json:"start_date" gorm:"not null"`
	EndDate     *time.Time  `json:"end_date"`
	MonthlyRent float64     `json:"monthly_rent" gorm:"not null"`
	Deposit     float64     `json:"deposit"`
	Status      LeaseStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Relationships
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Tenants  []Tenant  `json:"tenants,omitempty" gorm:"many2many:lease_tenants;"`
	Fees     []Fee     `json:"fees,omitempty" gorm:"foreignKey:LeaseID"`
}

// LeaseStatus represents the status of a lease
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
)

// TableName returns the table name for the Lease model
func (Lease) TableName() string {
	return "leases"
}

// IsActive checks if the lease is currently active
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// Terminate moves the lease to its terminated state. The end date is only
// stamped when unset, so repeating the transition never rewrites history.
func (l *Lease) Terminate() {
	l.Status = LeaseStatusTerminated
	if l.EndDate == nil {
		now := time.Now()
		l.EndDate = &now
	}
}

// LeaseTenant is the join row linking one tenant to one lease. The composite
// primary key keeps a (lease, tenant) pair unique.
type LeaseTenant struct {
	LeaseID   uuid.UUID `json:"lease_id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `json:"tenant_id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the LeaseTenant model
func (LeaseTenant) TableName() string {
	return "lease_tenants"
}
