package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Error categories surfaced by the water model. Every typed error below unwraps to one of them.
var (
	// ErrTypeValidation reports a non-numeric or wrong-kind input.
	ErrTypeValidation = errors.New("type validation failed")
	// ErrRangeViolation reports a value outside a property range or physical setter bound.
	ErrRangeViolation = errors.New("range violation")
	// ErrCapacityViolation reports a volume change that would overflow the tank or breach the underflow margin.
	ErrCapacityViolation = errors.New("capacity violation")
	// ErrConfiguration reports an empty or malformed monitor/tracker configuration.
	ErrConfiguration = errors.New("configuration error")
)

// TypeError is returned when an input is not a usable number (NaN, Inf, or a non-numeric snapshot value).
type TypeError struct {
	Property string
	Value    any
}

func (e TypeError) Error() string {
	return fmt.Sprintf("%s must be a numeric value (got %v)", e.Property, e.Value)
}

// Unwrap exposes the ErrTypeValidation category.
func (e TypeError) Unwrap() error { return ErrTypeValidation }

// RangeError is returned when a value falls outside [Lower, Upper] for a property.
type RangeError struct {
	Property string
	Value    float64
	Lower    float64
	Upper    float64
	Message  string
}

func (e RangeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Value < e.Lower {
		return fmt.Sprintf("%s must be greater than or equal to %s for %s.", formatValue(e.Value), formatValue(e.Lower), e.Property)
	}
	return fmt.Sprintf("%s must be less than or equal to %s for %s.", formatValue(e.Value), formatValue(e.Upper), e.Property)
}

// Unwrap exposes the ErrRangeViolation category.
func (e RangeError) Unwrap() error { return ErrRangeViolation }

// CapacityError is returned when a volume change is rejected. Overflow is the
// excess over capacity when the rejection was an overflow, zero otherwise.
type CapacityError struct {
	Operation string
	Requested float64
	Capacity  float64
	Overflow  float64
	Message   string
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap exposes the ErrCapacityViolation category.
func (e CapacityError) Unwrap() error { return ErrCapacityViolation }

// ConfigurationError is returned when a tracker or monitor is built from unusable input.
type ConfigurationError struct {
	Component string
	Message   string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

// Unwrap exposes the ErrConfiguration category.
func (e ConfigurationError) Unwrap() error { return ErrConfiguration }

// ElementError identifies the dissolved element whose assignment failed.
type ElementError struct {
	Element string
	Err     error
}

func (e ElementError) Error() string {
	return fmt.Sprintf("element %s: %v", e.Element, e.Err)
}

func (e ElementError) Unwrap() error { return e.Err }

// formatValue renders a float without trailing zeros, so 120 prints as "120" and 7.5 as "7.5".
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
