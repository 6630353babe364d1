package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Provider-coded authentication failures. The codes travel from the server
// to the client inside gRPC status messages and are mapped to user-facing
// text on the client side.
const (
	AuthCodeUserNotFound      = "auth/user-not-found"
	AuthCodeWrongPassword     = "auth/wrong-password"
	AuthCodeEmailAlreadyInUse = "auth/email-already-in-use"
	AuthCodeWeakPassword      = "auth/weak-password"
	AuthCodeInvalidEmail      = "auth/invalid-email"
)

// MinPasswordLength is the shortest password the auth provider accepts.
const MinPasswordLength = 6
