package core

import "errors"

// User related errors
var (
	ErrUserExists   = errors.New("user already exists") // informational, never a failure
	ErrUserNotFound = errors.New("user not found")      // 404 Not Found
)

// Session and guard errors
var (
	ErrMissingAccessToken  = errors.New("missing access token")            // 401
	ErrInvalidAccessToken  = errors.New("invalid access token")            // 401
	ErrMissingSessionToken = errors.New("missing session token")           // 401
	ErrInvalidToken        = errors.New("invalid session token")           // 401
	ErrSessionNotFound     = errors.New("session not found")               // 401
	ErrSessionExpired      = errors.New("session expired")                 // 401
	ErrSessionMismatch     = errors.New("session does not belong to user") // 401
	ErrInvalidRefreshToken = errors.New("invalid refresh token")           // 401
	ErrRefreshExpired      = errors.New("refresh token expired")           // 401
	ErrForbidden           = errors.New("insufficient role")               // 403
	ErrCacheNotFound       = errors.New("session not found in cache")
)

// Credential issuance errors
var (
	ErrMalformedResult = errors.New("malformed account creation result") // 500
	ErrDomainRequired  = errors.New("domain is required in production")  // 500
)

// Validation errors (client input)
var (
	ErrInvalidInput = errors.New("invalid input") // 400
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required") // 500
	ErrHTTPAdapterRequired = errors.New("adapter is required")          // 500
	ErrSecretRequired      = errors.New("secret is required")           // 500
	ErrSecretTooShort      = errors.New("secret too short")             // 500
)
