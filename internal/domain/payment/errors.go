package payment

import "fmt"

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct{}

func (e *NotFoundError) Error() string { return "payment batch not found" }

type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }
