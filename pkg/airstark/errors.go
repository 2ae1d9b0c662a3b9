package airstark

import (
	"errors"

	"github.com/vybium/airstark/internal/airstark/stark"
)

// ErrorKind classifies which phase of proving or verification failed,
// re-exported from the internal stark package so callers outside this
// module can branch on it without importing internal/airstark directly.
type ErrorKind = stark.ErrorKind

const (
	ErrInvalidConfig       = stark.ErrInvalidConfig
	ErrTraceShape          = stark.ErrTraceShape
	ErrConstraintViolation = stark.ErrConstraintViolation
	ErrLookupMismatch      = stark.ErrLookupMismatch
	ErrMerkleVerification  = stark.ErrMerkleVerification
	ErrFRIVerification     = stark.ErrFRIVerification
	ErrTranscriptMismatch  = stark.ErrTranscriptMismatch
	ErrProofOfWork         = stark.ErrProofOfWork
)

// Error is the typed, wrapped error Prove/Verify return on failure.
type Error = stark.Error

// KindOf extracts the ErrorKind from err, if it (or something it wraps) is
// an *Error; the zero value and false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
