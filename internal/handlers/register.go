package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskify/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	authService     services.AuthService
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, authService services.AuthService) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService, authService: authService}
}

func (h *RegisterHandler) Registration(c *gin.Context) {
	var req services.RegistrationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []services.FieldError{{Field: "body", Message: err.Error()}},
		})
		return
	}

	if err := validateRegistrationRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  err.Errors,
		})
		return
	}

	db := h.db.WithContext(c.Request.Context())

	user, err := h.registerService.RegisterUser(db, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"message": "An account with this email already exists"})
		case errors.Is(err, services.ErrDuplicateUsername):
			c.JSON(http.StatusConflict, gin.H{"message": "This username is already taken"})
		default:
			log.Printf("registration error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		}
		return
	}

	token, _, err := h.authService.GenerateToken(db, user.ID)
	if err != nil {
		log.Printf("post-registration token error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Account created but login failed. Please sign in."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Welcome to Taskify! Your account has been created successfully.",
		"token":   token,
		"user":    userResponse(user),
	})
}

func validateRegistrationRequest(req *services.RegistrationRequest) *services.ValidationError {
	verr := &services.ValidationError{}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if len(req.Username) < 3 {
		verr.Errors = append(verr.Errors, services.FieldError{Field: "username", Message: "username must be at least 3 characters long"})
	}
	for _, char := range req.Username {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '_') {
			verr.Errors = append(verr.Errors, services.FieldError{Field: "username", Message: "username can only contain letters, numbers, and underscores"})
			break
		}
	}

	if req.FirstName == "" {
		verr.Errors = append(verr.Errors, services.FieldError{Field: "firstName", Message: "first name is required"})
	}
	if req.LastName == "" {
		verr.Errors = append(verr.Errors, services.FieldError{Field: "lastName", Message: "last name is required"})
	}

	if msg := passwordStrength(req.Password); msg != "" {
		verr.Errors = append(verr.Errors, services.FieldError{Field: "password", Message: msg})
	}

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func passwordStrength(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters long"
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "number")
	}

	if len(missing) > 0 {
		return "password must contain at least one " + strings.Join(missing, ", ")
	}
	return ""
}
