package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization flow errors. Each redirect outcome is distinct so
	// callers can report the exact failure instead of a catch-all.
	ErrAuthFailed       = fmt.Errorf("authorization failed")
	ErrMissingCode      = fmt.Errorf("missing authorization code")
	ErrStateMismatch    = fmt.Errorf("state mismatch")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
