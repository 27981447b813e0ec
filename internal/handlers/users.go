package handlers

import (
	"errors"
	"log"
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	userService services.UserService
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type DeactivateRequest struct {
	Password string `json:"password" binding:"required"`
}

func NewUserHandler(db *gorm.DB, userService services.UserService) *UserHandler {
	return &UserHandler{db: db, userService: userService}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserProfile(h.db.WithContext(c.Request.Context()), userID)
	if err != nil {
		handleUserError(c, err, "Server error while fetching profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "body", Message: "invalid request body"}},
		})
		return
	}

	user, err := h.userService.UpdateProfile(h.db.WithContext(c.Request.Context()), userID, req)
	if err != nil {
		handleUserError(c, err, "Server error while updating profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    userResponse(user),
	})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "newPassword", Message: "new password must be at least 8 characters long"}},
		})
		return
	}

	if msg := passwordStrength(req.NewPassword); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "newPassword", Message: msg}},
		})
		return
	}

	err := h.userService.ChangePassword(h.db.WithContext(c.Request.Context()), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Current password is incorrect"})
			return
		}
		handleUserError(c, err, "Server error while changing password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// DeactivateAccount disables the account after password confirmation. The user
// row is kept; nothing is erased.
func (h *UserHandler) DeactivateAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req DeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "password", Message: "password confirmation is required"}},
		})
		return
	}

	err := h.userService.DeactivateAccount(h.db.WithContext(c.Request.Context()), userID, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Password is incorrect"})
			return
		}
		handleUserError(c, err, "Server error while deactivating account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated successfully"})
}

func handleUserError(c *gin.Context, err error, serverMessage string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationFailed(c, verr)
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	default:
		log.Printf("user handler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": serverMessage})
	}
}
