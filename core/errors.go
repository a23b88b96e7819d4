package core

import "errors"

// Store errors
var (
	ErrNotFound = errors.New("record not found")        // 404 Not Found
	ErrConflict = errors.New("identity already in use") // 409 Conflict
)

// Credential errors
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so a caller cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
)

// Reset code errors
var (
	ErrNoActiveOtp        = errors.New("no reset code requested")                       // 400
	ErrOtpChannelMismatch = errors.New("reset code was issued for a different channel") // 400
	ErrOtpExpired         = errors.New("reset code expired")                            // 400
	ErrOtpInvalid         = errors.New("invalid reset code")                            // 400
)

// Session token errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrTokenExpired      = errors.New("session token expired")        // 401
	ErrTokenMalformed    = errors.New("malformed session token")      // 401
	ErrTokenSignature    = errors.New("invalid token signature")      // 401
)

// Federated sign-in errors
var (
	ErrIDTokenRequired       = errors.New("identity token is required")           // 400
	ErrInvalidIDToken        = errors.New("invalid identity token")               // 401
	ErrFederatedEmailMissing = errors.New("email not provided by identity provider") // 400
)

// Validation errors (client input)
var (
	ErrNameRequired       = errors.New("name is required")                                    // 400
	ErrNameTooLong        = errors.New("name cannot be more than 50 characters")              // 400
	ErrEmailRequired      = errors.New("email is required")                                   // 400
	ErrInvalidEmail       = errors.New("invalid email format")                                // 400
	ErrPasswordRequired   = errors.New("password is required")                                // 400
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")              // 400
	ErrIdentifierRequired = errors.New("provide an email or a phone number")                  // 400
	ErrOneIdentifier      = errors.New("provide either an email or a phone number, not both") // 400
	ErrQueryRequired      = errors.New("query is required")                                   // 400
)

// Delivery errors (best-effort; logged, never fatal to the calling flow)
var (
	ErrDeliveryFailed = errors.New("could not deliver reset code")
)

// Content errors
var (
	ErrContentDisabled = errors.New("content generation is not configured") // 503
)

// Config errors (server-side configuration)
var (
	ErrSecretRequired = errors.New("signing secret is required") // 500
	ErrSecretTooShort = errors.New("signing secret too short")   // 500
)
