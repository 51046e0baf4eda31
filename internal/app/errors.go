package app

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks failures caused by the caller's request.
var ErrInvalidInput = errors.New("invalid input")

var ErrNoExtractableText = fmt.Errorf("%w: pdf has no extractable text", ErrInvalidInput)

// ServiceError is an upstream failure: model provider, vector index or broker.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func serviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Op: op, Err: err}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
