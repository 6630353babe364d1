package session

import "github.com/dmitrijs2005/gophnotes/internal/common"

// Message maps an authentication failure to the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	code, ok := common.AuthCode(err)
	if !ok {
		return "An unknown error occurred."
	}
	switch code {
	case common.AuthCodeUserNotFound, common.AuthCodeWrongPassword:
		return "Invalid email or password."
	case common.AuthCodeEmailAlreadyInUse:
		return "An account with this email already exists."
	case common.AuthCodeWeakPassword:
		return "Password must be at least 6 characters."
	case common.AuthCodeInvalidEmail:
		return "Please enter a valid email address."
	default:
		return "Authentication failed. Please try again."
	}
}
