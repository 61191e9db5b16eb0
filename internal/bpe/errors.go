package bpe

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInconsistentParams   = errors.New("inconsistent vocabulary")
)

// ConfigError describes a training configuration that cannot be honoured.
type ConfigError struct {
	Field   string // Offending setting (e.g., "vocab_size")
	Details string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, e.Field, e.Details)
}

// Unwrap makes errors.Is(err, ErrInvalidConfiguration) hold.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
