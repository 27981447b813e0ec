package services

import (
	"errors"
	"os"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenIssuer = "taskify-backend"

type AuthService interface {
	LoginUser(db *gorm.DB, email, password string) (*models.User, error)
	GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error)
	RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
}

type AuthServiceImpl struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(accessTokenTTL, refreshTokenTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return &user, nil
}

// GenerateToken issues a short-lived HS256 access token and a persisted
// refresh token for the user.
func (s *AuthServiceImpl) GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	secret := jwtSecret()

	accessTokenClaims := jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     tokenIssuer,
		"exp":     time.Now().Add(s.accessTokenTTL).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	accessTokenString, err := accessToken.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}

	refreshTokenUUID, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}

	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserId:       userID,
		RefreshToken: refreshTokenUUID,
		ExpiresAt:    time.Now().Add(s.refreshTokenTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenUUID.String(), nil
}

// RefreshToken rotates the refresh token: the old row is deleted once a new
// pair has been issued.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	var token models.Token
	err := db.Where("refresh_token = ? AND expires_at > ?", refreshToken, time.Now()).First(&token).Error
	if err != nil {
		return "", "", 0, err
	}

	accessToken, newRefreshToken, err := s.GenerateToken(db, token.UserId)
	if err != nil {
		return "", "", 0, err
	}

	if err := db.Delete(&token).Error; err != nil {
		return "", "", 0, err
	}

	return accessToken, newRefreshToken, int64(s.accessTokenTTL.Seconds()), nil
}

func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	return db.Where("refresh_token = ?", refreshToken).Delete(&models.Token{}).Error
}

func jwtSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret_change_in_production"
	}
	return secret
}
