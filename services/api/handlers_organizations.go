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

// OrganizationRequest represents the create/update organization request
type OrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// handleListOrganizations handles listing the caller's organizations
func handleListOrganizations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var organizations []models.Organization
		if err := db.Where("owner_id = ?", ownerID).
			Preload("Properties").
			Order("created_at DESC").
			Find(&organizations).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch organizations")
			return
		}

		utils.OKResponse(c, "Organizations retrieved successfully", organizations)
	}
}

// handleGetOrganization handles getting a specific organization
func handleGetOrganization(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		orgID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var organization models.Organization
		if err := db.Where("id = ? AND owner_id = ?", orgID, ownerID).
			Preload("Properties").
			First(&organization).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Organization not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch organization")
			}
			return
		}

		utils.OKResponse(c, "Organization retrieved successfully", organization)
	}
}

// handleCreateOrganization handles organization creation
func handleCreateOrganization(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req OrganizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		organization := models.Organization{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			Name:        req.Name,
			Description: req.Description,
			Address:     req.Address,
		}

		if err := db.Create(&organization).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create organization")
			return
		}

		utils.CreatedResponse(c, "Organization created successfully", organization)
	}
}

// handleUpdateOrganization handles updating an organization
func handleUpdateOrganization(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		orgID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var organization models.Organization
		if err := db.Where("id = ? AND owner_id = ?", orgID, ownerID).First(&organization).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Organization not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch organization")
			}
			return
		}

		var req OrganizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		organization.Name = req.Name
		organization.Description = req.Description
		organization.Address = req.Address

		if err := db.Save(&organization).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update organization")
			return
		}

		utils.OKResponse(c, "Organization updated successfully", organization)
	}
}

// handleDeleteOrganization handles deleting an organization. Properties keep
// existing; their organization reference is cleared.
func handleDeleteOrganization(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		orgID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			result := tx.Where("id = ? AND owner_id = ?", orgID, ownerID).Delete(&models.Organization{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return tx.Model(&models.Property{}).
				Where("organization_id = ? AND owner_id = ?", orgID, ownerID).
				Update("organization_id", nil).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Organization not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to delete organization")
			}
			return
		}

		utils.OKResponse(c, "Organization deleted successfully", nil)
	}
}
