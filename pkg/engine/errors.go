package engine

import (
	"errors"
	"fmt"
)

// ErrorClass separates fatal input problems from per-outcome failures.
type ErrorClass string

const (
	// ErrorClassConfiguration indicates invalid run parameters (N, a, t or an
	// outcome outside the phase register). Fatal: no outcome is processed.
	ErrorClassConfiguration ErrorClass = "configuration"

	// ErrorClassArithmeticBound indicates a continued-fraction expansion hit its
	// step cap. Runs treat it as a per-outcome failure and move on.
	ErrorClassArithmeticBound ErrorClass = "arithmetic_bound"

	// ErrorClassInternal indicates a broken invariant inside the engine.
	ErrorClassInternal ErrorClass = "internal"
)

// Error is a classified engine error.
type Error struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Err is the underlying error, if any.
	Err error `json:"-"`

	// Details contains additional context (offending values and the like).
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", e.Class, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", e.Class, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on class and code so sentinels can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string, err error) *Error {
	return &Error{
		Class:   ErrorClassConfiguration,
		Message: message,
		Err:     err,
	}
}

// NewArithmeticBoundError creates an arithmetic bound error.
func NewArithmeticBoundError(message string) *Error {
	return &Error{
		Class:   ErrorClassArithmeticBound,
		Message: message,
		Code:    ErrCodeStepLimit,
	}
}

// WithCode adds an error code to an error.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetail adds a detail field to the error context.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassConfiguration
	}
	return false
}

// IsArithmeticBound reports whether err is an arithmetic bound error.
func IsArithmeticBound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassArithmeticBound
	}
	return false
}

// Error codes.
const (
	ErrCodeModulus      = "INVALID_MODULUS"
	ErrCodeBase         = "INVALID_BASE"
	ErrCodeNotCoprime   = "NOT_COPRIME"
	ErrCodePhaseBits    = "INVALID_PHASE_BITS"
	ErrCodeOutcomeRange = "OUTCOME_OUT_OF_RANGE"
	ErrCodeDenominator  = "INVALID_DENOMINATOR_BOUND"
	ErrCodeStepLimit    = "STEP_LIMIT_EXCEEDED"
	ErrCodeOrder        = "INVALID_ORDER"
)

// ErrArithmeticBound is returned when a continued-fraction expansion exceeds its
// step cap. Compare with errors.Is.
var ErrArithmeticBound = &Error{Class: ErrorClassArithmeticBound, Code: ErrCodeStepLimit}
