package authcode

import "fmt"

// ValidationError reports a missing or malformed request field. Maps to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent code. Maps to 404.
type NotFoundError struct{}

func (e *NotFoundError) Error() string { return "authorization code not found" }

// StateError reports an operation that is not legal for the code's current
// state. Maps to 400.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func statef(format string, args ...interface{}) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}
