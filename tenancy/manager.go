// Package tenancy mediates every change to the property/tenant/lease graph.
//
// The rules it enforces:
//   - an active lease never has an empty tenant set; removing the last tenant
//     terminates the lease instead
//   - a (lease, tenant) pair is linked at most once
//   - the current tenants of a property come from active leases only
//   - a lease, its property and its tenants all belong to the same owner
//   - termination is soft: the lease, its tenant links and its fee history
//     survive it
package tenancy

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentfolio/go-rental-management/shared/models"
)

// Manager owns all mutations of the property/tenant/lease association graph.
// Every operation takes the calling owner id explicitly; nothing is read from
// ambient request state.
type Manager struct {
	db *gorm.DB
}

// NewManager creates a manager on top of the given database handle.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// LeaseTerms carries the optional terms of a new lease. Nil fields fall back
// to defaults: start date now, rent from the property's base rent, deposit
// zero.
type LeaseTerms struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MonthlyRent *float64
	Deposit     *float64
}

// LeaseUpdate carries a typed partial update of a lease's core fields. Nil
// fields are left unchanged.
type LeaseUpdate struct {
	PropertyID  *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	MonthlyRent *float64
	Deposit     *float64
	Status      *models.LeaseStatus
}

// ListCurrentTenants returns the de-duplicated union of tenants across the
// property's active leases. Tenants reachable only through terminated leases
// never appear.
func (m *Manager) ListCurrentTenants(propertyID, ownerID uuid.UUID) ([]models.Tenant, error) {
	if _, err := m.findProperty(m.db, propertyID, ownerID); err != nil {
		return nil, err
	}

	var leases []models.Lease
	if err := m.db.Where("property_id = ? AND owner_id = ? AND status = ?",
		propertyID, ownerID, models.LeaseStatusActive).Find(&leases).Error; err != nil {
		return nil, err
	}
	if len(leases) == 0 {
		return []models.Tenant{}, nil
	}

	leaseIDs := make([]uuid.UUID, 0, len(leases))
	for _, l := range leases {
		leaseIDs = append(leaseIDs, l.ID)
	}

	var links []models.LeaseTenant
	if err := m.db.Where("lease_id IN ?", leaseIDs).Find(&links).Error; err != nil {
		return nil, err
	}

	// Union keyed by tenant id, first appearance wins.
	seen := make(map[uuid.UUID]bool, len(links))
	order := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		if !seen[link.TenantID] {
			seen[link.TenantID] = true
			order = append(order, link.TenantID)
		}
	}
	if len(order) == 0 {
		return []models.Tenant{}, nil
	}

	var tenants []models.Tenant
	if err := m.db.Where("id IN ?", order).Find(&tenants).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Tenant, len(tenants))
	for _, t := range tenants {
		byID[t.ID] = t
	}
	result := make([]models.Tenant, 0, len(order))
	for _, id := range order {
		if t, ok := byID[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

// AttachTenants creates a new active lease binding the property to the given
// tenant set. Each call produces one new lease; an existing active lease on
// the same property is never extended, so a property can host several
// concurrent active leases.
func (m *Manager) AttachTenants(propertyID, ownerID uuid.UUID, tenantIDs []uuid.UUID, terms LeaseTerms) (*models.Lease, error) {
	ids := dedupIDs(tenantIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("tenant id list must not be empty: %w", ErrInvalidInput)
	}

	property, err := m.findProperty(m.db, propertyID, ownerID)
	if err != nil {
		return nil, err
	}

	tenants, err := m.findTenants(m.db, ids, ownerID)
	if err != nil {
		return nil, err
	}

	lease := models.Lease{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		PropertyID:  property.ID,
		StartDate:   time.Now(),
		MonthlyRent: property.BaseRent,
		Status:      models.LeaseStatusActive,
	}
	if terms.StartDate != nil {
		lease.StartDate = *terms.StartDate
	}
	lease.EndDate = terms.EndDate
	if terms.MonthlyRent != nil {
		lease.MonthlyRent = *terms.MonthlyRent
	}
	if terms.Deposit != nil {
		lease.Deposit = *terms.Deposit
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&lease).Error; err != nil {
			return err
		}
		links := make([]models.LeaseTenant, 0, len(tenants))
		for _, t := range tenants {
			links = append(links, models.LeaseTenant{LeaseID: lease.ID, TenantID: t.ID})
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"lease_id":    lease.ID,
		"property_id": property.ID,
		"tenants":     len(tenants),
	}).Info("lease created")

	lease.Tenants = tenants
	return &lease, nil
}

// DetachTenant removes a tenant from every active lease on the property that
// includes it. A lease whose only tenant is being removed is terminated in
// place of the removal; its tenant link and fee history stay intact. The ids
// of the leases terminated this way are returned so callers can report the
// terminations alongside the detach.
//
// Detaching a tenant whose remaining links on the property are all through
// terminated leases is an idempotent no-op, so a repeated detach (or the
// losing side of a concurrent race) succeeds without rewriting the end date.
func (m *Manager) DetachTenant(propertyID, ownerID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := m.findProperty(m.db, propertyID, ownerID); err != nil {
		return nil, err
	}

	var leases []models.Lease
	if err := m.db.
		Joins("JOIN lease_tenants ON lease_tenants.lease_id = leases.id").
		Where("leases.property_id = ? AND leases.owner_id = ? AND lease_tenants.tenant_id = ?",
			propertyID, ownerID, tenantID).
		Find(&leases).Error; err != nil {
		return nil, err
	}

	active := leases[:0:0]
	for _, l := range leases {
		if l.IsActive() {
			active = append(active, l)
		}
	}
	if len(active) == 0 {
		if len(leases) == 0 {
			return nil, fmt.Errorf("no active lease links tenant %s to property %s: %w",
				tenantID, propertyID, ErrNotFound)
		}
		// Already detached everywhere; nothing left to transition.
		return nil, nil
	}

	var terminated []uuid.UUID
	err := m.db.Transaction(func(tx *gorm.DB) error {
		terminated = terminated[:0]
		for i := range active {
			lease := &active[i]

			var tenantCount int64
			if err := tx.Model(&models.LeaseTenant{}).
				Where("lease_id = ?", lease.ID).
				Count(&tenantCount).Error; err != nil {
				return err
			}

			if tenantCount <= 1 {
				lease.Terminate()
				if err := tx.Omit(clause.Associations).Save(lease).Error; err != nil {
					return err
				}
				terminated = append(terminated, lease.ID)
				logrus.WithFields(logrus.Fields{
					"lease_id":  lease.ID,
					"tenant_id": tenantID,
				}).Info("lease terminated, last tenant detached")
			} else {
				if err := tx.Where("lease_id = ? AND tenant_id = ?", lease.ID, tenantID).
					Delete(&models.LeaseTenant{}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return terminated, nil
}

// ReplaceLeaseTenants destructively replaces the lease's tenant set and
// applies the partial field update as one atomic unit.
//
// The replacement set may be empty without forcing termination; that mirrors
// the historical full-edit behavior and is exercised explicitly in tests.
func (m *Manager) ReplaceLeaseTenants(leaseID, ownerID uuid.UUID, tenantIDs []uuid.UUID, update LeaseUpdate) (*models.Lease, error) {
	var lease models.Lease
	if err := m.db.Where("id = ? AND owner_id = ?", leaseID, ownerID).First(&lease).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lease %s: %w", leaseID, ErrNotFound)
		}
		return nil, err
	}

	ids := dedupIDs(tenantIDs)
	var tenants []models.Tenant
	if len(ids) > 0 {
		var err error
		tenants, err = m.findTenants(m.db, ids, ownerID)
		if err != nil {
			return nil, err
		}
	}

	if update.PropertyID != nil {
		if _, err := m.findProperty(m.db, *update.PropertyID, ownerID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("property %s: %w", *update.PropertyID, ErrInvalidInput)
			}
			return nil, err
		}
		lease.PropertyID = *update.PropertyID
	}
	if update.StartDate != nil {
		lease.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		lease.EndDate = update.EndDate
	}
	if update.MonthlyRent != nil {
		lease.MonthlyRent = *update.MonthlyRent
	}
	if update.Deposit != nil {
		lease.Deposit = *update.Deposit
	}
	if update.Status != nil {
		if *update.Status == models.LeaseStatusTerminated {
			lease.Terminate()
		} else {
			lease.Status = *update.Status
		}
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lease_id = ?", lease.ID).Delete(&models.LeaseTenant{}).Error; err != nil {
			return err
		}
		if len(tenants) > 0 {
			links := make([]models.LeaseTenant, 0, len(tenants))
			for _, t := range tenants {
				links = append(links, models.LeaseTenant{LeaseID: lease.ID, TenantID: t.ID})
			}
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}
		return tx.Omit(clause.Associations).Save(&lease).Error
	})
	if err != nil {
		return nil, err
	}

	lease.Tenants = tenants
	return &lease, nil
}

// findProperty loads an owner-scoped property, mapping a miss to ErrNotFound.
func (m *Manager) findProperty(db *gorm.DB, propertyID, ownerID uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := db.Where("id = ? AND owner_id = ?", propertyID, ownerID).First(&property).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("property %s: %w", propertyID, ErrNotFound)
		}
		return nil, err
	}
	return &property, nil
}

// findTenants loads the owner-scoped tenants for ids and fails the whole call
// when any id is missing or foreign, naming the offenders.
func (m *Manager) findTenants(db *gorm.DB, ids []uuid.UUID, ownerID uuid.UUID) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := db.Where("id IN ? AND owner_id = ?", ids, ownerID).Find(&tenants).Error; err != nil {
		return nil, err
	}
	if len(tenants) != len(ids) {
		found := make(map[uuid.UUID]bool, len(tenants))
		for _, t := range tenants {
			found[t.ID] = true
		}
		var missing []uuid.UUID
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("unknown tenant ids %v: %w", missing, ErrInvalidInput)
	}
	return tenants, nil
}

// dedupIDs drops duplicate ids, preserving first appearance.
func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
