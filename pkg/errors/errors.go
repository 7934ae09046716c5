// Package errors provides structured error types for cargomanifest.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure produced while interpreting a manifest carries one of the
// codes below. The public entry point of [manifest.Parse] wraps them in an
// [ErrCodeInvalidManifest] error, so callers match the specific cause with
// [Is], which walks the whole chain.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCrateType, "unknown crate type %q", tag)
//	if errors.Is(err, errors.ErrCodeInvalidCrateType) {
//	    // Handle crate type error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "Cargo.toml is not a valid manifest")
//
// [manifest.Parse]: github.com/matzehuels/cargomanifest/pkg/manifest.Parse
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Descriptor errors
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"
	ErrCodeEncoding          Code = "ENCODING"
	ErrCodeSyntax            Code = "SYNTAX"
	ErrCodeDecode            Code = "DECODE"
	ErrCodeMissingPackage    Code = "MISSING_PACKAGE"
	ErrCodeInvalidVersion    Code = "INVALID_VERSION"
	ErrCodeInvalidDependency Code = "INVALID_DEPENDENCY"
	ErrCodeUnresolvedSource  Code = "UNRESOLVED_LOCATION"
	ErrCodeInvalidCrateType  Code = "INVALID_CRATE_TYPE"
	ErrCodeMultipleLibraries Code = "MULTIPLE_LIBRARIES"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain has the given code.
// Unlike a plain errors.As lookup it keeps unwrapping past an outer *Error
// whose code does not match, so a wrapped cause can still be detected.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// RootCode returns the code of the innermost *Error in err's chain.
// This is the code of the failure that started the chain, as opposed to the
// context added while it propagated.
func RootCode(err error) Code {
	var code Code
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}
		code = e.Code
		err = e.Cause
	}
	return code
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, the messages of the chain are joined with blank lines
// without code prefixes. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + "\n\n" + UserMessage(e.Cause)
}
