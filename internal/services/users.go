package services

import (
	"errors"
	"strings"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileUpdateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
}

type UserService interface {
	GetUserProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error)
	UpdateProfile(db *gorm.DB, userID uuid.UUID, req ProfileUpdateRequest) (*models.User, error)
	ChangePassword(db *gorm.DB, userID uuid.UUID, currentPassword, newPassword string) error
	DeactivateAccount(db *gorm.DB, userID uuid.UUID, password string) error
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserProfile(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, userID uuid.UUID, req ProfileUpdateRequest) (*models.User, error) {
	user, err := s.GetUserProfile(db, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}

	if req.FirstName != nil {
		firstName := strings.TrimSpace(*req.FirstName)
		if firstName == "" || len(firstName) > 50 {
			verr.add("firstName", "first name must be between 1 and 50 characters")
		} else {
			user.FirstName = firstName
		}
	}

	if req.LastName != nil {
		lastName := strings.TrimSpace(*req.LastName)
		if lastName == "" || len(lastName) > 50 {
			verr.add("lastName", "last name must be between 1 and 50 characters")
		} else {
			user.LastName = lastName
		}
	}

	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now()

	if err := db.Save(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserServiceImpl) ChangePassword(db *gorm.DB, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.GetUserProfile(db, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(user.Password, currentPassword) {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashedPassword)
	user.UpdatedAt = time.Now()

	return db.Save(user).Error
}

// DeactivateAccount requires the current password as confirmation. The row is
// kept; is_active simply flips, and the login path rejects disabled accounts.
func (s *UserServiceImpl) DeactivateAccount(db *gorm.DB, userID uuid.UUID, password string) error {
	user, err := s.GetUserProfile(db, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(user.Password, password) {
		return ErrInvalidCredentials
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()

	if err := db.Save(user).Error; err != nil {
		return err
	}

	// Outstanding refresh tokens are revoked so deactivation takes effect
	// immediately rather than on access-token expiry.
	return db.Where("user_id = ?", userID).Delete(&models.Token{}).Error
}
