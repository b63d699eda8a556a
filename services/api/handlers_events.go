package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentfolio/go-rental-management/shared/middleware"
	"github.com/rentfolio/go-rental-management/shared/models"
	"github.com/rentfolio/go-rental-management/shared/utils"
)

// EventRequest represents the create/update calendar event request
type EventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	Type        string     `json:"type"`
	Color       string     `json:"color"`
	Reminder    *bool      `json:"reminder"`
}

func (r *EventRequest) apply(e *models.Event) {
	e.Title = r.Title
	e.Description = r.Description
	e.StartDate = r.StartDate
	e.EndDate = r.EndDate
	if r.Type != "" {
		e.Type = r.Type
	}
	if r.Color != "" {
		e.Color = r.Color
	}
	if r.Reminder != nil {
		e.Reminder = *r.Reminder
	}
}

// handleListEvents handles listing calendar events, optionally restricted to
// one month via ?month=&year=.
func handleListEvents(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		query := db.Where("owner_id = ?", ownerID)

		rawMonth, rawYear := c.Query("month"), c.Query("year")
		if rawMonth != "" && rawYear != "" {
			month, errM := strconv.Atoi(rawMonth)
			year, errY := strconv.Atoi(rawYear)
			if errM != nil || errY != nil || month < 1 || month > 12 {
				utils.BadRequestResponse(c, "Invalid month or year")
				return
			}
			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0)
			query = query.Where("start_date >= ? AND start_date < ?", start, end)
		}

		var events []models.Event
		if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch events")
			return
		}

		utils.OKResponse(c, "Events retrieved successfully", events)
	}
}

// handleCreateEvent handles event creation
func handleCreateEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)

		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		event := models.Event{
			ID:      uuid.New(),
			OwnerID: ownerID,
			Type:    "general",
			Color:   "blue",
		}
		req.apply(&event)

		if err := db.Create(&event).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create event")
			return
		}

		utils.CreatedResponse(c, "Event created successfully", event)
	}
}

// handleUpdateEvent handles updating an event
func handleUpdateEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		eventID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var event models.Event
		if err := db.Where("id = ? AND owner_id = ?", eventID, ownerID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Event not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch event")
			}
			return
		}

		var req EventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		req.apply(&event)
		if err := db.Save(&event).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update event")
			return
		}

		utils.OKResponse(c, "Event updated successfully", event)
	}
}

// handleDeleteEvent handles deleting an event
func handleDeleteEvent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := middleware.GetUserFromContext(c)
		eventID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		result := db.Where("id = ? AND owner_id = ?", eventID, ownerID).Delete(&models.Event{})
		if result.Error != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete event")
			return
		}
		if result.RowsAffected == 0 {
			utils.NotFoundResponse(c, "Event not found")
			return
		}

		utils.OKResponse(c, "Event deleted successfully", nil)
	}
}
