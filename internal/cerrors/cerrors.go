package cerrors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// CatalogMissing indicates the catalog database file does not exist
	CatalogMissing ErrorCode = "CATALOG_MISSING"
	// CatalogCorrupt indicates the catalog database failed integrity checks
	CatalogCorrupt ErrorCode = "CATALOG_CORRUPT"
	// CatalogLocked indicates another process holds the catalog lock
	CatalogLocked ErrorCode = "CATALOG_LOCKED"
	// SchemaUnsupported indicates the catalog schema version is newer than this build
	SchemaUnsupported ErrorCode = "SCHEMA_UNSUPPORTED"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// RootInvalid indicates a scan root does not exist or is not a directory
	RootInvalid ErrorCode = "ROOT_INVALID"
	// NotFound indicates the requested record doesn't exist
	NotFound ErrorCode = "NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CatalogError represents a catalog error with a stable code and message
type CatalogError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new CatalogError
func New(code ErrorCode, message string, cause error) *CatalogError {
	return &CatalogError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CatalogError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CatalogError) WithDetails(details interface{}) *CatalogError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from err, or InternalError for plain errors.
func CodeOf(err error) ErrorCode {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
