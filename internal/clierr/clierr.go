// Package clierr holds the error type the scriptlint CLI uses to separate
// what an operator should be shown from the technical message that belongs in
// test output and wrapped error chains.
package clierr

import "fmt"

// usageError is an error caused by attempting to run the linter with input it
// cannot act on: a missing file, a bad flag combination, an unloadable
// config.
//
// usageError includes a human-readable message to show to an operator as well
// as a typical more technical "error message" style message.
type usageError struct {
	msg   string
	human string
	wrap  error
}

func (e *usageError) Error() string {
	return e.msg
}

// OperatorMessage shows the message that should be printed to the operator to
// describe the error.
func (e *usageError) OperatorMessage() string {
	return e.human
}

// Unwrap gives the error that the usageError wraps, if it wraps one.
func (e *usageError) Unwrap() error {
	return e.wrap
}

// Usage returns a new error that has both the message to show the operator
// and the technical description of the error.
func Usage(operator, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got usage error %q", operator)
	}
	return &usageError{
		msg:   technical,
		human: operator,
	}
}

// Usagef returns a new error whose operator-facing message is produced from
// the given format string. The technical message is the same.
func Usagef(format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	return &usageError{
		msg:   msg,
		human: msg,
	}
}

// Wrap returns a new error that shows operator to a human while wrapping err
// as the technical cause, so errors.Is/As still see the original.
func Wrap(operator string, err error) error {
	return &usageError{
		msg:   fmt.Sprintf("%s: %v", operator, err),
		human: operator,
		wrap:  err,
	}
}

// OperatorMessageOf returns the operator-facing message of err if it carries
// one, or err.Error() if it does not.
func OperatorMessageOf(err error) string {
	if ue, ok := err.(interface{ OperatorMessage() string }); ok {
		return ue.OperatorMessage()
	}
	return err.Error()
}
