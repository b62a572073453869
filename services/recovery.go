package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

const (
	// RecoveryTokenLength is the length of the recovery token in bytes
	RecoveryTokenLength = 32
	// RecoveryTokenExpiration is how long a recovery token is valid
	RecoveryTokenExpiration = time.Hour
)

// RequestRecovery issues a recovery token for one of the configured recovery
// emails. Any other address gets nil without error so callers cannot discover
// which addresses are configured.
func RequestRecovery(database *gorm.DB, email string) (*models.RecoveryToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	cfg, err := GetSystemConfig(database)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, nil
		}
		return nil, err
	}
	if !cfg.IsRecoveryEmail(email) {
		LogSecurityEvent("RECOVERY_IGNORED", fmt.Sprintf("recovery requested for unknown email: %s", email))
		return nil, nil
	}

	tokenBytes := make([]byte, RecoveryTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %w", err)
	}

	token := &models.RecoveryToken{
		Email:     email,
		Token:     base64.URLEncoding.EncodeToString(tokenBytes),
		ExpiresAt: nowFunc().Add(RecoveryTokenExpiration),
	}

	err = database.Transaction(func(tx *gorm.DB) error {
		// Only the latest token of an address stays usable
		if err := tx.Where("email = ?", email).Delete(&models.RecoveryToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recovery token: %w", err)
	}

	LogSecurityEvent("RECOVERY_REQUESTED", fmt.Sprintf("recovery token issued for %s", email))
	return token, nil
}

// VerifyRecoveryToken returns the email a token was issued for.
// Expired tokens are deleted when detected.
func VerifyRecoveryToken(database *gorm.DB, token string) (string, error) {
	rt, err := findRecoveryToken(database, token)
	if errors.Is(err, errTokenExpired) {
		deleteExpiredToken(database, rt)
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return rt.Email, nil
}

// errTokenExpired is returned together with the expired token
var errTokenExpired = errors.New("recovery token expired")

func findRecoveryToken(tx *gorm.DB, token string) (*models.RecoveryToken, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var rt models.RecoveryToken
	if err := tx.Where("token = ?", token).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if rt.IsExpired(nowFunc()) {
		return &rt, errTokenExpired
	}
	return &rt, nil
}

// deleteExpiredToken runs outside any transaction that is about to roll back
func deleteExpiredToken(database *gorm.DB, rt *models.RecoveryToken) {
	if err := database.Where("id = ?", rt.ID).Delete(&models.RecoveryToken{}).Error; err != nil {
		log.Printf("[SECURITY] Failed to delete expired recovery token: %v", err)
	}
}

// ResetPassword sets a new office password using a recovery token.
// The password change and the token deletion commit together, so a token
// works at most once.
func ResetPassword(database *gorm.DB, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	var (
		email   string
		expired *models.RecoveryToken
	)
	err = database.Transaction(func(tx *gorm.DB) error {
		rt, err := findRecoveryToken(tx, token)
		if errors.Is(err, errTokenExpired) {
			expired = rt
			return ErrInvalidToken
		}
		if err != nil {
			return err
		}
		email = rt.Email

		result := tx.Where("id = ?", rt.ID).Delete(&models.RecoveryToken{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete token: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInvalidToken
		}

		cfg, err := GetSystemConfig(tx)
		if err != nil {
			return err
		}
		if err := tx.Model(cfg).Update("hashed_password", hashedPassword).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
	if expired != nil {
		deleteExpiredToken(database, expired)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			LogSecurityEvent("PASSWORD_RESET_FAILED", "invalid or expired recovery token")
		}
		return err
	}

	LogSecurityEvent("PASSWORD_RESET_COMPLETED", fmt.Sprintf("password reset through %s", email))
	return nil
}

// CleanupExpiredTokens deletes all expired recovery tokens
func CleanupExpiredTokens(database *gorm.DB) (int64, error) {
	result := database.Where("expires_at < ?", nowFunc()).Delete(&models.RecoveryToken{})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d expired recovery tokens", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
