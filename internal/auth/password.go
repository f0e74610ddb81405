package auth

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/student-rating/internal/models"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores input past 72 bytes, so longer secrets are refused.
	maxPasswordBytes = 72
)

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return models.ErrPasswordTooLong
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth.hashPassword: %w", err)
	}
	return string(hashed), nil
}
