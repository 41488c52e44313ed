package claims

import "fmt"

// ValidationError reports a missing or malformed request field. Maps to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent referenced entity. Maps to 404.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// StateError reports an operation that is not legal for the claim's current
// status. Maps to 400 with the violated rule named.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func statef(format string, args ...interface{}) error {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}
