package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Remote service errors
	ErrRemoteAuth         = fmt.Errorf("pocket authorization missing or rejected")
	ErrTransportExhausted = fmt.Errorf("retry budget exhausted")
	ErrDeserialization    = fmt.Errorf("unexpected response shape")
	ErrAPIRequest         = fmt.Errorf("API request failed")

	// Storage errors
	ErrStorage  = fmt.Errorf("storage operation failed")
	ErrNotFound = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
