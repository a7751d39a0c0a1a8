package bulk

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for bulk operations.
var (
	// ErrValidationFailed is reported when a record fails validation at enqueue time.
	ErrValidationFailed = errors.New("validation failed")

	// ErrBeforeSaveRejected is reported when a new record's pre-save hook rejects it.
	ErrBeforeSaveRejected = errors.New("before-save hook rejected record")

	// ErrNoAutoIncrementKey is returned when a create table has no auto-increment key.
	ErrNoAutoIncrementKey = errors.New("table has no auto-increment key")

	// ErrUpdateFailed is returned when a queued update reports failure.
	ErrUpdateFailed = errors.New("update failed")

	// ErrColumnMismatch is returned when creates for one table carry different attribute sets.
	ErrColumnMismatch = errors.New("attribute set does not match table columns")

	// ErrKeySpaceExhausted is returned when an allocated key would pass the int64 range.
	ErrKeySpaceExhausted = errors.New("key space exhausted")

	// ErrInvalidOption is returned for unusable options.
	ErrInvalidOption = errors.New("invalid option")
)

// ConfigurationError reports a create table that cannot receive allocated keys.
type ConfigurationError struct {
	Table string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cannot allocate keys for %s: %v", e.Table, ErrNoAutoIncrementKey)
}

// Unwrap returns ErrNoAutoIncrementKey.
func (e *ConfigurationError) Unwrap() error {
	return ErrNoAutoIncrementKey
}

// UpdateError reports a queued update whose save returned false.
type UpdateError struct {
	Table string
	Key   string
}

// Error implements the error interface.
func (e *UpdateError) Error() string {
	return fmt.Sprintf("%v: %s with key %s", ErrUpdateFailed, e.Table, e.Key)
}

// Unwrap returns ErrUpdateFailed.
func (e *UpdateError) Unwrap() error {
	return ErrUpdateFailed
}

// ColumnMismatchError reports a create whose attributes differ from the
// column list fixed by the first create on the same table.
type ColumnMismatchError struct {
	Table    string
	Expected []string
	Got      []string
}

// Error implements the error interface.
func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("%v on %s: expected [%s], got [%s]",
		ErrColumnMismatch, e.Table, strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

// Unwrap returns ErrColumnMismatch.
func (e *ColumnMismatchError) Unwrap() error {
	return ErrColumnMismatch
}

// IsConfigurationError checks if an error is a missing auto-increment key error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoAutoIncrementKey)
}

// IsUpdateFailure checks if an error is a refused update.
func IsUpdateFailure(err error) bool {
	return errors.Is(err, ErrUpdateFailed)
}
