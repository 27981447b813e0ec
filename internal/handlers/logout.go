package handlers

import (
	"net/http"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LogoutHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func NewLogoutHandler(db *gorm.DB, authService services.AuthService) *LogoutHandler {
	return &LogoutHandler{db: db, authService: authService}
}

// Logout always reports success. Revocation of an unknown token is a no-op;
// the client clears its credential either way.
func (h *LogoutHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		h.authService.RevokeToken(h.db.WithContext(c.Request.Context()), req.RefreshToken)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
