package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfolio/go-rental-management/shared/middleware"
	"github.com/rentfolio/go-rental-management/shared/models"
	"github.com/rentfolio/go-rental-management/shared/utils"
)

// TenantRequest represents the create/update tenant request
type TenantRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (r *TenantRequest) apply(t *models.Tenant) {
	t.FirstName = r.FirstName
	t.LastName = r.LastName
	t.Email = r.Email
	t.Phone = r.Phone
	t.Address = r.Address
}

// handleListTenants handles listing the caller's tenants
func handleListTenants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var tenants []models.Tenant
		if err := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&tenants).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenants")
			return
		}

		utils.OKResponse(c, "Tenants retrieved successfully", tenants)
	}
}

// handleGetTenant handles getting a specific tenant with its lease history
func handleGetTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		tenantID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tenant models.Tenant
		if err := db.Where("id = ? AND owner_id = ?", tenantID, ownerID).
			Preload("Leases").
			Preload("Leases.Property").
			First(&tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		utils.OKResponse(c, "Tenant retrieved successfully", tenant)
	}
}

// handleCreateTenant handles tenant creation
func handleCreateTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req TenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		tenant := models.Tenant{ID: uuid.New(), OwnerID: ownerID}
		req.apply(&tenant)

		if err := db.Create(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create tenant")
			return
		}

		utils.CreatedResponse(c, "Tenant created successfully", tenant)
	}
}

// handleUpdateTenant handles updating a tenant
func handleUpdateTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		tenantID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var tenant models.Tenant
		if err := db.Where("id = ? AND owner_id = ?", tenantID, ownerID).First(&tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		var req TenantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		req.apply(&tenant)
		if err := db.Save(&tenant).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update tenant")
			return
		}

		utils.OKResponse(c, "Tenant updated successfully", tenant)
	}
}

// handleDeleteTenant handles deleting a tenant
func handleDeleteTenant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		tenantID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		result := db.Where("id = ? AND owner_id = ?", tenantID, ownerID).Delete(&models.Tenant{})
		if result.Error != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete tenant")
			return
		}
		if result.RowsAffected == 0 {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}

		utils.OKResponse(c, "Tenant deleted successfully", nil)
	}
}
