package main

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfolio/go-rental-management/shared/middleware"
	"github.com/rentfolio/go-rental-management/shared/models"
	"github.com/rentfolio/go-rental-management/shared/utils"
	"github.com/rentfolio/go-rental-management/tenancy"
)

// CreateLeaseRequest represents the direct lease creation request. The lease
// is always created active; termination goes through the update endpoint.
type CreateLeaseRequest struct {
	PropertyID  uuid.UUID   `json:"property_id" binding:"required"`
	TenantIDs   []uuid.UUID `json:"tenant_ids" binding:"required"`
	StartDate   *time.Time  `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
	MonthlyRent *float64    `json:"monthly_rent"`
	Deposit     *float64    `json:"deposit"`
}

// UpdateLeaseRequest represents the full lease edit request. Nil fields keep
// their current value. The tenant set is mandatory and replaces the existing
// one entirely; a rent-only edit must resubmit the current set, so an omitted
// set can never silently strip a lease's tenants.
type UpdateLeaseRequest struct {
	PropertyID  *uuid.UUID          `json:"property_id"`
	TenantIDs   []uuid.UUID         `json:"tenant_ids" binding:"required"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     *time.Time          `json:"end_date"`
	MonthlyRent *float64            `json:"monthly_rent"`
	Deposit     *float64            `json:"deposit"`
	Status      *models.LeaseStatus `json:"status"`
}

// handleListLeases handles listing the caller's leases
func handleListLeases(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var leases []models.Lease
		if err := db.Where("owner_id = ?", ownerID).
			Preload("Property").
			Preload("Tenants").
			Preload("Fees").
			Order("created_at DESC").
			Find(&leases).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch leases")
			return
		}

		utils.OKResponse(c, "Leases retrieved successfully", leases)
	}
}

// handleGetLease handles getting a specific lease with its fee history
func handleGetLease(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		leaseID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var lease models.Lease
		if err := db.Where("id = ? AND owner_id = ?", leaseID, ownerID).
			Preload("Property").
			Preload("Tenants").
			Preload("Fees", func(db *gorm.DB) *gorm.DB {
				return db.Order("date DESC")
			}).
			First(&lease).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Lease not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch lease")
			}
			return
		}

		utils.OKResponse(c, "Lease retrieved successfully", lease)
	}
}

// handleCreateLease handles direct lease creation with a full tenant set
func handleCreateLease(mgr *tenancy.Manager, producer *LeaseEventProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req CreateLeaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		lease, err := mgr.AttachTenants(req.PropertyID, ownerID, req.TenantIDs, tenancy.LeaseTerms{
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			MonthlyRent: req.MonthlyRent,
			Deposit:     req.Deposit,
		})
		if err != nil {
			respondTenancyError(c, err, "Failed to create lease")
			return
		}

		utils.InvalidatePropertyTenants(ownerID, req.PropertyID)

		_ = producer.SendLeaseEvent(LeaseEvent{
			LeaseID:    lease.ID,
			PropertyID: req.PropertyID,
			OwnerID:    ownerID,
			TenantIDs:  req.TenantIDs,
			EventType:  EventLeaseCreated,
		})

		utils.CreatedResponse(c, "Lease created successfully", lease)
	}
}

// handleUpdateLease handles the full lease edit, replacing the tenant set and
// updating core fields atomically.
func handleUpdateLease(db *gorm.DB, mgr *tenancy.Manager, producer *LeaseEventProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		leaseID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateLeaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		// The edit may move the lease to another property; remember the
		// current one so its cached tenant list is invalidated too.
		var previous models.Lease
		if err := db.Select("property_id").
			Where("id = ? AND owner_id = ?", leaseID, ownerID).
			First(&previous).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerErrorResponse(c, "Failed to fetch lease")
			return
		}

		lease, err := mgr.ReplaceLeaseTenants(leaseID, ownerID, req.TenantIDs, tenancy.LeaseUpdate{
			PropertyID:  req.PropertyID,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			MonthlyRent: req.MonthlyRent,
			Deposit:     req.Deposit,
			Status:      req.Status,
		})
		if err != nil {
			respondTenancyError(c, err, "Failed to update lease")
			return
		}

		utils.InvalidatePropertyTenants(ownerID, lease.PropertyID)
		if previous.PropertyID != uuid.Nil && previous.PropertyID != lease.PropertyID {
			utils.InvalidatePropertyTenants(ownerID, previous.PropertyID)
		}

		if req.Status != nil && *req.Status == models.LeaseStatusTerminated {
			_ = producer.SendLeaseEvent(LeaseEvent{
				LeaseID:    lease.ID,
				PropertyID: lease.PropertyID,
				OwnerID:    ownerID,
				EventType:  EventLeaseTerminated,
			})
		}

		utils.OKResponse(c, "Lease updated successfully", lease)
	}
}

// handleDeleteLease handles the irreversible owner-initiated lease deletion,
// removing the lease together with its tenant links and fee history.
func handleDeleteLease(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		leaseID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var lease models.Lease
		if err := db.Where("id = ? AND owner_id = ?", leaseID, ownerID).First(&lease).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Lease not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch lease")
			}
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("lease_id = ?", lease.ID).Delete(&models.LeaseTenant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lease_id = ?", lease.ID).Delete(&models.Fee{}).Error; err != nil {
				return err
			}
			return tx.Delete(&lease).Error
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete lease")
			return
		}

		utils.InvalidatePropertyTenants(ownerID, lease.PropertyID)
		utils.OKResponse(c, "Lease deleted successfully", nil)
	}
}
