package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"taskify/backend/internal/models"
	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	userService services.UserService
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, userService: userService}
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID.String(),
		"username":      user.Username,
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"avatar_url":    user.AvatarURL,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "body", Message: "email and password are required"}},
		})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.authService.LoginUser(h.db.WithContext(c.Request.Context()), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountDisabled):
			c.JSON(http.StatusForbidden, gin.H{"message": "Your account has been deactivated. Please contact support."})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		default:
			log.Printf("login error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during login"})
		}
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateToken(h.db, user.ID)
	if err != nil {
		log.Printf("token generation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate authentication tokens"})
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := h.db.Save(user).Error; err != nil {
		log.Printf("failed to record last login for %s: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          userResponse(user),
	})
}

// Me returns the profile of the authenticated user, resolved from the bearer
// token by the auth middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserProfile(h.db.WithContext(c.Request.Context()), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("get current user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}
