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

// PropertyRequest represents the create/update property request
type PropertyRequest struct {
	Address        string     `json:"address" binding:"required"`
	City           string     `json:"city" binding:"required"`
	PostalCode     string     `json:"postal_code" binding:"required"`
	Type           string     `json:"type" binding:"required"`
	Surface        *float64   `json:"surface"`
	Bedrooms       *int       `json:"bedrooms"`
	BaseRent       float64    `json:"base_rent" binding:"required"`
	Charges        *float64   `json:"charges"`
	Description    string     `json:"description"`
	Photos         string     `json:"photos"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

// AttachTenantsRequest represents the attach-tenants request
type AttachTenantsRequest struct {
	TenantIDs   []uuid.UUID `json:"tenant_ids" binding:"required"`
	StartDate   *time.Time  `json:"start_date"`
	EndDate     *time.Time  `json:"end_date"`
	MonthlyRent *float64    `json:"monthly_rent"`
	Deposit     *float64    `json:"deposit"`
}

func (r *PropertyRequest) apply(p *models.Property) {
	p.Address = r.Address
	p.City = r.City
	p.PostalCode = r.PostalCode
	p.Type = r.Type
	p.Surface = r.Surface
	p.Bedrooms = r.Bedrooms
	p.BaseRent = r.BaseRent
	p.Charges = r.Charges
	p.Description = r.Description
	p.Photos = r.Photos
	p.OrganizationID = r.OrganizationID
}

// handleListProperties handles listing the caller's properties with their
// organization and active leases.
func handleListProperties(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var properties []models.Property
		if err := db.Where("owner_id = ?", ownerID).
			Preload("Organization").
			Preload("Leases", "status = ?", models.LeaseStatusActive).
			Preload("Leases.Tenants").
			Order("created_at DESC").
			Find(&properties).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch properties")
			return
		}

		utils.OKResponse(c, "Properties retrieved successfully", properties)
	}
}

// handleGetProperty handles getting a specific property with full lease
// history.
func handleGetProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		propertyID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var property models.Property
		if err := db.Where("id = ? AND owner_id = ?", propertyID, ownerID).
			Preload("Organization").
			Preload("Leases").
			Preload("Leases.Tenants").
			First(&property).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Property not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch property")
			}
			return
		}

		utils.OKResponse(c, "Property retrieved successfully", property)
	}
}

// handleCreateProperty handles property creation
func handleCreateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req PropertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		property := models.Property{ID: uuid.New(), OwnerID: ownerID}
		req.apply(&property)

		if err := db.Create(&property).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create property")
			return
		}

		utils.CreatedResponse(c, "Property created successfully", property)
	}
}

// handleUpdateProperty handles updating a property
func handleUpdateProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		propertyID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var property models.Property
		if err := db.Where("id = ? AND owner_id = ?", propertyID, ownerID).First(&property).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Property not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch property")
			}
			return
		}

		var req PropertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		req.apply(&property)
		if err := db.Save(&property).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update property")
			return
		}

		utils.OKResponse(c, "Property updated successfully", property)
	}
}

// handleDeleteProperty handles deleting a property
func handleDeleteProperty(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		propertyID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		result := db.Where("id = ? AND owner_id = ?", propertyID, ownerID).Delete(&models.Property{})
		if result.Error != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete property")
			return
		}
		if result.RowsAffected == 0 {
			utils.NotFoundResponse(c, "Property not found")
			return
		}

		utils.InvalidatePropertyTenants(ownerID, propertyID)
		utils.OKResponse(c, "Property deleted successfully", nil)
	}
}

// handleListPropertyTenants handles listing the current tenants of a
// property, serving from the cache when possible.
func handleListPropertyTenants(mgr *tenancy.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		propertyID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if cached, err := utils.GetCachedPropertyTenants(ownerID, propertyID); err == nil {
			utils.OKResponse(c, "Tenants retrieved successfully", cached)
			return
		}

		tenants, err := mgr.ListCurrentTenants(propertyID, ownerID)
		if err != nil {
			respondTenancyError(c, err, "Failed to fetch tenants")
			return
		}

		// Cache failure is non-fatal; the list was served from the database.
		_ = utils.CachePropertyTenants(ownerID, propertyID, tenants)

		utils.OKResponse(c, "Tenants retrieved successfully", tenants)
	}
}

// handleAttachTenants handles binding tenants to a property through a new
// lease.
func handleAttachTenants(mgr *tenancy.Manager, producer *LeaseEventProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		propertyID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req AttachTenantsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		lease, err := mgr.AttachTenants(propertyID, ownerID, req.TenantIDs, tenancy.LeaseTerms{
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			MonthlyRent: req.MonthlyRent,
			Deposit:     req.Deposit,
		})
		if err != nil {
			respondTenancyError(c, err, "Failed to attach tenants")
			return
		}

		utils.InvalidatePropertyTenants(ownerID, propertyID)

		_ = producer.SendLeaseEvent(LeaseEvent{
			LeaseID:    lease.ID,
			PropertyID: propertyID,
			OwnerID:    ownerID,
			TenantIDs:  req.TenantIDs,
			EventType:  EventLeaseCreated,
		})

		utils.CreatedResponse(c, "Tenants attached successfully", lease)
	}
}

// handleDetachTenant handles removing a tenant from a property across all of
// its active leases.
func handleDetachTenant(mgr *tenancy.Manager, producer *LeaseEventProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		propertyID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		tenantID, ok := parseIDParam(c, "tenantId")
		if !ok {
			return
		}

		terminated, err := mgr.DetachTenant(propertyID, ownerID, tenantID)
		if err != nil {
			respondTenancyError(c, err, "Failed to detach tenant")
			return
		}

		utils.InvalidatePropertyTenants(ownerID, propertyID)

		_ = producer.SendLeaseEvent(LeaseEvent{
			PropertyID: propertyID,
			OwnerID:    ownerID,
			TenantIDs:  []uuid.UUID{tenantID},
			EventType:  EventTenantDetached,
		})
		for _, leaseID := range terminated {
			_ = producer.SendLeaseEvent(LeaseEvent{
				LeaseID:    leaseID,
				PropertyID: propertyID,
				OwnerID:    ownerID,
				EventType:  EventLeaseTerminated,
			})
		}

		utils.OKResponse(c, "Tenant detached successfully", nil)
	}
}
