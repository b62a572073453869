package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pqr_flow_app_go/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// TokenTTL is how long an access token stays valid
	TokenTTL = 8 * time.Hour
	// tokenIssuer identifies tokens issued by this service
	tokenIssuer = "pqr_flow_app"
)

// Claims are the JWT claims of the office session. There are no user
// accounts; a valid token means the holder knew the office password.
type Claims struct {
	System bool `json:"system"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Setup performs the first-run configuration: it stores the office password
// and the default settings. It can only succeed once.
func Setup(database *gorm.DB, password string) (*models.SystemConfig, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var cfg *models.SystemConfig
	err := database.Transaction(func(tx *gorm.DB) error {
		var existing models.SystemConfig
		err := tx.First(&existing).Error
		switch {
		case err == nil && existing.FirstSetupDone:
			return ErrAlreadySetup
		case err == nil:
			cfg = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			cfg = models.NewDefaultSystemConfig()
		default:
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		hash, err := HashPassword(password)
		if err != nil {
			return err
		}
		cfg.HashedPassword = hash
		cfg.FirstSetupDone = true
		return tx.Save(cfg).Error
	})
	if err != nil {
		return nil, err
	}

	LogSecurityEvent("SETUP_COMPLETED", "first-run setup finished")
	return cfg, nil
}

// Login checks the office password and issues an access token
func Login(database *gorm.DB, password, secret string) (string, time.Time, error) {
	cfg, err := GetSystemConfig(database)
	if err != nil {
		return "", time.Time{}, err
	}
	if !cfg.FirstSetupDone || cfg.HashedPassword == "" {
		return "", time.Time{}, ErrNotConfigured
	}
	if !VerifyPassword(cfg.HashedPassword, password) {
		LogSecurityEvent("LOGIN_FAILED", "wrong office password")
		return "", time.Time{}, ErrUnauthorized
	}

	token, expiresAt, err := IssueToken(secret, nowFunc())
	if err != nil {
		return "", time.Time{}, err
	}
	LogSecurityEvent("LOGIN_SUCCESS", "office session opened")
	return token, expiresAt, nil
}

// ChangePassword replaces the office password after checking the current one
func ChangePassword(database *gorm.DB, currentPassword, newPassword string) error {
	cfg, err := GetSystemConfig(database)
	if err != nil {
		return err
	}
	if !VerifyPassword(cfg.HashedPassword, currentPassword) {
		LogSecurityEvent("PASSWORD_CHANGE_FAILED", "wrong current password")
		return ErrUnauthorized
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := database.Model(cfg).Update("hashed_password", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	LogSecurityEvent("PASSWORD_CHANGED", "office password changed")
	return nil
}

// OverridePassword replaces the office password without the current one.
// It is reserved for operators with direct access to the database.
func OverridePassword(database *gorm.DB, newPassword string) error {
	cfg, err := GetSystemConfig(database)
	if err != nil {
		return err
	}
	if !cfg.FirstSetupDone {
		return ErrNotConfigured
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := database.Model(cfg).Update("hashed_password", hash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	LogSecurityEvent("PASSWORD_OVERRIDDEN", "office password replaced from the command line")
	return nil
}

// IssueToken signs an HS256 token valid for TokenTTL from now
func IssueToken(secret string, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, fmt.Errorf("token secret is not configured")
	}
	expiresAt := now.Add(TokenTTL)
	claims := Claims{
		System: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates a signed token and returns its claims
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || !claims.System {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, details string) {
	log.Printf("[SECURITY] %s | Details: %s", eventType, details)
}
