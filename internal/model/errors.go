package model

import (
	"errors"
	"fmt"
)

// Error kinds returned by the analysis engine. Use errors.Is to classify.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrConfiguration    = errors.New("configuration error")
)

// FieldError ties an error kind to the offending field.
type FieldError struct {
	Kind  error
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// InvalidInput builds an ErrInvalidInput for field.
func InvalidInput(field, format string, args ...any) error {
	return &FieldError{Kind: ErrInvalidInput, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// InsufficientData builds an ErrInsufficientData for field.
func InsufficientData(field, format string, args ...any) error {
	return &FieldError{Kind: ErrInsufficientData, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError builds an ErrConfiguration for field.
func ConfigError(field, format string, args ...any) error {
	return &FieldError{Kind: ErrConfiguration, Field: field, Msg: fmt.Sprintf(format, args...)}
}
