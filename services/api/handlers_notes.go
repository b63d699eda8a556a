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

// NoteRequest represents the create/update note request
type NoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Color   string `json:"color"`
	Pinned  *bool  `json:"pinned"`
}

// handleListNotes handles listing the caller's notes, pinned first
func handleListNotes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var notes []models.Note
		if err := db.Where("owner_id = ?", ownerID).
			Order("pinned DESC").
			Order("updated_at DESC").
			Find(&notes).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch notes")
			return
		}

		utils.OKResponse(c, "Notes retrieved successfully", notes)
	}
}

// handleCreateNote handles note creation
func handleCreateNote(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req NoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		note := models.Note{
			ID:      uuid.New(),
			OwnerID: ownerID,
			Title:   req.Title,
			Content: req.Content,
			Color:   "yellow",
		}
		if req.Color != "" {
			note.Color = req.Color
		}
		if req.Pinned != nil {
			note.Pinned = *req.Pinned
		}

		if err := db.Create(&note).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create note")
			return
		}

		utils.CreatedResponse(c, "Note created successfully", note)
	}
}

// handleUpdateNote handles updating a note
func handleUpdateNote(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		noteID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var note models.Note
		if err := db.Where("id = ? AND owner_id = ?", noteID, ownerID).First(&note).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Note not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch note")
			}
			return
		}

		var req NoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		note.Title = req.Title
		note.Content = req.Content
		if req.Color != "" {
			note.Color = req.Color
		}
		if req.Pinned != nil {
			note.Pinned = *req.Pinned
		}

		if err := db.Save(&note).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update note")
			return
		}

		utils.OKResponse(c, "Note updated successfully", note)
	}
}

// handleDeleteNote handles deleting a note
func handleDeleteNote(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		noteID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		result := db.Where("id = ? AND owner_id = ?", noteID, ownerID).Delete(&models.Note{})
		if result.Error != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete note")
			return
		}
		if result.RowsAffected == 0 {
			utils.NotFoundResponse(c, "Note not found")
			return
		}

		utils.OKResponse(c, "Note deleted successfully", nil)
	}
}
