package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for discretization and simulation.
var (
	// ErrDegenerateModel indicates a zero leading denominator coefficient.
	ErrDegenerateModel = errors.New("dynamo: degenerate model (leading denominator coefficient is zero)")

	// ErrUnexpectedOrder indicates a discrete denominator that is not first order.
	ErrUnexpectedOrder = errors.New("dynamo: unexpected discrete model order")

	// ErrInvalidHorizon indicates a non-positive step count.
	ErrInvalidHorizon = errors.New("dynamo: invalid simulation horizon")

	// ErrLengthMismatch indicates a reference sequence whose length differs from the horizon.
	ErrLengthMismatch = errors.New("dynamo: reference length does not match horizon")

	// ErrImproperPlant indicates a numerator of higher order than the denominator.
	ErrImproperPlant = errors.New("dynamo: improper transfer function")

	// ErrInvalidSamplePeriod indicates Ts <= 0 or not finite.
	ErrInvalidSamplePeriod = errors.New("dynamo: sample period must be positive")

	// ErrInvalidGains indicates controller gains that cannot be discretized.
	ErrInvalidGains = errors.New("dynamo: invalid controller gains")

	// ErrInvalidLimits indicates an empty or non-finite saturation range.
	ErrInvalidLimits = errors.New("dynamo: invalid saturation limits")
)

// OrderError reports the offending discrete denominator.
type OrderError struct {
	Den []float64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("dynamo: expected first-order discrete denominator of length 2, got %d: %v", len(e.Den), e.Den)
}

func (e *OrderError) Unwrap() error {
	return ErrUnexpectedOrder
}

// LengthError reports a reference sequence of the wrong length.
type LengthError struct {
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("dynamo: reference has %d samples, horizon needs %d", e.Got, e.Want)
}

func (e *LengthError) Unwrap() error {
	return ErrLengthMismatch
}
