package main

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rentfolio/go-rental-management/shared/middleware"
	"github.com/rentfolio/go-rental-management/shared/models"
	"github.com/rentfolio/go-rental-management/shared/utils"
)

// RegisterRequest represents the account registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,min=2"`
	LastName  string `json:"last_name" binding:"required,min=2"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the profile update request
type UpdateProfileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,min=2"`
	LastName  *string `json:"last_name" binding:"omitempty,min=2"`
}

// UpdatePasswordRequest represents the password change request
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// handleRegister handles account creation
func handleRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var existing models.User
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			utils.BadRequestResponse(c, "Email already in use")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create account")
			return
		}

		user := models.User{
			ID:        uuid.New(),
			Email:     req.Email,
			Password:  string(hashed),
			FirstName: req.FirstName,
			LastName:  req.LastName,
		}
		if err := db.Create(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create account")
			return
		}

		token, err := middleware.GenerateToken(user.ID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue token")
			return
		}

		utils.CreatedResponse(c, "Account created successfully", gin.H{
			"user":  user.PublicProfile(),
			"token": token,
		})
	}
}

// handleLogin handles credential verification and token issuance
func handleLogin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			// Same message whether the email or the password is wrong.
			utils.UnauthorizedResponse(c, "Invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			utils.UnauthorizedResponse(c, "Invalid email or password")
			return
		}

		token, err := middleware.GenerateToken(user.ID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue token")
			return
		}

		utils.OKResponse(c, "Logged in successfully", gin.H{
			"user":  user.PublicProfile(),
			"token": token,
		})
	}
}

// handleUpdateProfile handles profile field updates
func handleUpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := middleware.GetUserFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var user models.User
		if err := db.Where("id = ?", ownerID).First(&user).Error; err != nil {
			utils.NotFoundResponse(c, "User not found")
			return
		}

		if req.Email != nil {
			var existing models.User
			if err := db.Where("email = ? AND id != ?", *req.Email, ownerID).First(&existing).Error; err == nil {
				utils.BadRequestResponse(c, "Email already in use")
				return
			}
			user.Email = *req.Email
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}

		if err := db.Save(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update profile")
			return
		}

		utils.OKResponse(c, "Profile updated successfully", gin.H{"user": user.PublicProfile()})
	}
}

// handleUpdatePassword handles password changes
func handleUpdatePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := middleware.GetUserFromContext(c)
		if !ok {
			utils.UnauthorizedResponse(c, "Authentication required")
			return
		}

		var req UpdatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var user models.User
		if err := db.Where("id = ?", ownerID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "User not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch user")
			}
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			utils.UnauthorizedResponse(c, "Current password is incorrect")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update password")
			return
		}

		user.Password = string(hashed)
		user.UpdatedAt = time.Now()
		if err := db.Save(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update password")
			return
		}

		utils.OKResponse(c, "Password updated successfully", nil)
	}
}
