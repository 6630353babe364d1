package common

import (
	"errors"
	"strings"
)

// AuthError is an authentication failure carrying a provider code such as
// "auth/wrong-password".
type AuthError struct {
	Code string
}

func (e *AuthError) Error() string {
	return e.Code
}

// NewAuthError returns an AuthError with the given code.
func NewAuthError(code string) *AuthError {
	return &AuthError{Code: code}
}

// AuthCode extracts the provider code from err. The second result is false
// when err carries no code.
func AuthCode(err error) (string, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return "", false
}

// ParseAuthCode recognises a bare "auth/..." message, as produced by
// AuthError.Error after a trip through a transport that only keeps text.
func ParseAuthCode(msg string) (*AuthError, bool) {
	msg = strings.TrimSpace(msg)
	if !strings.HasPrefix(msg, "auth/") || strings.ContainsAny(msg, " \t\n") {
		return nil, false
	}
	return NewAuthError(msg), true
}
