package common

import (
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lower-cases a bare address. Anything that is not
// a plain "local@domain.tld" address yields an auth/invalid-email error.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", NewAuthError(AuthCodeInvalidEmail)
	}
	return strings.ToLower(email), nil
}

// CheckPassword enforces MinPasswordLength.
func CheckPassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewAuthError(AuthCodeWeakPassword)
	}
	return nil
}
