package klipy

import (
	"errors"
	"fmt"

	"github.com/klipy/klipy-go/service"
)

var (
	// ErrAPIKeyRequired indicates Setup was called without an API key.
	ErrAPIKeyRequired = errors.New("klipy: api key is required")
	// ErrNotConfigured indicates a service was requested before the SDK had
	// everything it needs. service.ErrCustomerIDRequired matches it too.
	ErrNotConfigured = service.ErrNotConfigured
	// ErrNoServiceForType indicates there is no media service for a type.
	ErrNoServiceForType = errors.New("klipy: no service for media type")
)

// ConfigurationError reports which setting is missing. It matches
// ErrNotConfigured with errors.Is.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("klipy: not configured: %s is not set", e.Missing)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}
