package domain

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrUsernameTooLong = errors.New("username exceeds maximum length")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
)

// MaxUsernameLength is the maximum allowed username length
const MaxUsernameLength = 80

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email represents a validated email address.
type Email struct {
	value string
}

// NewEmail creates a validated email address.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return Email{}, ErrInvalidEmail
	}
	if !emailRegex.MatchString(value) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

// String returns the email string.
func (e Email) String() string {
	return e.value
}

// Username represents a validated display handle.
type Username struct {
	value string
}

// NewUsername creates a validated username.
func NewUsername(value string) (Username, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Username{}, ErrEmptyUsername
	}
	if len(value) > MaxUsernameLength {
		return Username{}, ErrUsernameTooLong
	}
	return Username{value: value}, nil
}

// String returns the username string.
func (u Username) String() string {
	return u.value
}

// ValidatePassword checks a password chosen at registration.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
