package engine

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	_, err := NewProblem(big.NewInt(15), big.NewInt(5), 4)
	if err == nil {
		t.Fatal("expected error for non-coprime base")
	}

	wrapped := fmt.Errorf("loading run: %w", err)
	if !IsConfiguration(wrapped) {
		t.Errorf("expected wrapped error to be a configuration error")
	}
	if IsArithmeticBound(wrapped) {
		t.Errorf("configuration error must not match arithmetic bound")
	}

	var e *Error
	if !errors.As(wrapped, &e) {
		t.Fatal("expected errors.As to find *Error")
	}
	if e.Details["gcd"] != "5" {
		t.Errorf("expected gcd detail 5, got %v", e.Details["gcd"])
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewConfigurationError("bad input", errors.New("boom"))
	if got, want := err.Error(), "[configuration] bad input: boom"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	bound := NewArithmeticBoundError("too many steps")
	if got, want := bound.Error(), "[arithmetic_bound] too many steps"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !errors.Is(bound, ErrArithmeticBound) {
		t.Errorf("expected errors.Is to match ErrArithmeticBound")
	}
}
