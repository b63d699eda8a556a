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
)

// CreateFeeRequest represents the create fee request
type CreateFeeRequest struct {
	LeaseID     uuid.UUID `json:"lease_id" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description"`
	IsPaid      *bool     `json:"is_paid"`
}

// UpdateFeeRequest represents the partial fee update request
type UpdateFeeRequest struct {
	Type        *string    `json:"type"`
	Amount      *float64   `json:"amount"`
	Date        *time.Time `json:"date"`
	Description *string    `json:"description"`
	IsPaid      *bool      `json:"is_paid"`
}

// findOwnedLease loads a lease scoped to the calling owner. Fee ownership is
// always derived through the owning lease.
func findOwnedLease(db *gorm.DB, leaseID, ownerID uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	if err := db.Where("id = ? AND owner_id = ?", leaseID, ownerID).First(&lease).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

// handleListFees handles listing fees, optionally filtered to one lease
func handleListFees(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		query := db.Model(&models.Fee{}).
			Joins("JOIN leases ON leases.id = fees.lease_id").
			Where("leases.owner_id = ?", ownerID)

		if rawLeaseID := c.Query("lease_id"); rawLeaseID != "" {
			leaseID, err := uuid.Parse(rawLeaseID)
			if err != nil {
				utils.BadRequestResponse(c, "Invalid lease_id")
				return
			}
			if _, err := findOwnedLease(db, leaseID, ownerID); err != nil {
				utils.NotFoundResponse(c, "Lease not found")
				return
			}
			query = query.Where("fees.lease_id = ?", leaseID)
		}

		var fees []models.Fee
		if err := query.Preload("Lease").Preload("Lease.Property").
			Order("date DESC").Find(&fees).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch fees")
			return
		}

		utils.OKResponse(c, "Fees retrieved successfully", fees)
	}
}

// handleGetFee handles getting a specific fee
func handleGetFee(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		feeID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var fee models.Fee
		if err := db.Where("id = ?", feeID).Preload("Lease").First(&fee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Fee not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch fee")
			}
			return
		}

		// Ownership mismatch reads the same as non-existence.
		if fee.Lease == nil || fee.Lease.OwnerID != ownerID {
			utils.NotFoundResponse(c, "Fee not found")
			return
		}

		utils.OKResponse(c, "Fee retrieved successfully", fee)
	}
}

// handleCreateFee handles fee creation on an owned lease
func handleCreateFee(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req CreateFeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if _, err := findOwnedLease(db, req.LeaseID, ownerID); err != nil {
			utils.NotFoundResponse(c, "Lease not found")
			return
		}

		fee := models.Fee{
			ID:          uuid.New(),
			LeaseID:     req.LeaseID,
			Type:        req.Type,
			Amount:      req.Amount,
			Date:        req.Date,
			Description: req.Description,
		}
		if req.IsPaid != nil {
			fee.IsPaid = *req.IsPaid
		}

		if err := db.Create(&fee).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create fee")
			return
		}

		utils.CreatedResponse(c, "Fee created successfully", fee)
	}
}

// handleUpdateFee handles the partial fee update
func handleUpdateFee(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		feeID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var fee models.Fee
		if err := db.Where("id = ?", feeID).Preload("Lease").First(&fee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Fee not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch fee")
			}
			return
		}
		if fee.Lease == nil || fee.Lease.OwnerID != ownerID {
			utils.NotFoundResponse(c, "Fee not found")
			return
		}

		var req UpdateFeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Type != nil {
			fee.Type = *req.Type
		}
		if req.Amount != nil {
			fee.Amount = *req.Amount
		}
		if req.Date != nil {
			fee.Date = *req.Date
		}
		if req.Description != nil {
			fee.Description = *req.Description
		}
		if req.IsPaid != nil {
			fee.IsPaid = *req.IsPaid
		}

		fee.Lease = nil
		if err := db.Save(&fee).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update fee")
			return
		}

		utils.OKResponse(c, "Fee updated successfully", fee)
	}
}

// handleDeleteFee handles deleting a fee
func handleDeleteFee(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		feeID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var fee models.Fee
		if err := db.Where("id = ?", feeID).Preload("Lease").First(&fee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Fee not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch fee")
			}
			return
		}
		if fee.Lease == nil || fee.Lease.OwnerID != ownerID {
			utils.NotFoundResponse(c, "Fee not found")
			return
		}

		if err := db.Delete(&models.Fee{}, "id = ?", fee.ID).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete fee")
			return
		}

		utils.OKResponse(c, "Fee deleted successfully", nil)
	}
}
