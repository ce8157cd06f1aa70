package pseudoanon

import (
	"errors"
	"fmt"
)

// Common errors returned by the curve engine and the point derivation.
var (
	// ErrInvalidPoint is returned when a coordinate does not lie on the curve,
	// including when the curve equation has no square root for it.
	ErrInvalidPoint = errors.New("invalid point")

	// ErrUnsupportedOperation is returned when a point representation cannot
	// perform the requested operation (general addition on x-only points).
	ErrUnsupportedOperation = errors.New("operation not supported on this curve")

	// ErrDerivationExhausted is returned when no candidate x-coordinate produced
	// a curve point within the iteration bound.
	ErrDerivationExhausted = errors.New("point derivation exhausted")

	// ErrInvalidCurveConfig is returned when curve parameters violate the
	// invariants of their family.
	ErrInvalidCurveConfig = errors.New("invalid curve configuration")

	ErrUnknownCurve  = errors.New("unknown curve")
	ErrCurveMismatch = errors.New("points belong to different curves")
)

// DerivationError reports a failed identifier-to-point derivation.
// It keeps the identifier and the number of candidates tried so callers can
// decide whether to retry with different parameters.
type DerivationError struct {
	Identifier []byte
	Attempts   int
	Err        error
}

func (e *DerivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("derive identifier %x after %d attempts: %v", e.Identifier, e.Attempts, e.Err)
	}
	return fmt.Sprintf("derive identifier %x after %d attempts", e.Identifier, e.Attempts)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

// NewDerivationError creates a new DerivationError.
func NewDerivationError(identifier []byte, attempts int, err error) *DerivationError {
	return &DerivationError{
		Identifier: append([]byte(nil), identifier...),
		Attempts:   attempts,
		Err:        err,
	}
}
