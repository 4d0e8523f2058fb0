// Package ierr defines the error taxonomy shared by every IR evaluator.
//
// Evaluation errors are first-class values: they carry a Code, a human
// message, and an optional metadata map, and the evaluators wrap them
// into a value.Error at the point of failure so they flow through
// evaluation as ordinary values; a plain Go error return is kept for
// structural faults in the evaluator itself. Keeping the taxonomy in one
// package means the expression evaluator, the CFG executor and the async
// evaluator all raise and recognize the same codes.
package ierr

import "fmt"

// Code names a class of evaluation failure. The set is closed and mirrors
// the taxonomy every IR level shares.
type Code string

const (
	TypeError         Code = "TypeError"
	ArityError        Code = "ArityError"
	DomainError       Code = "DomainError"
	DivideByZero      Code = "DivideByZero"
	UnknownOperator   Code = "UnknownOperator"
	UnknownDefinition Code = "UnknownDefinition"
	UnboundIdentifier Code = "UnboundIdentifier"
	NonTermination    Code = "NonTermination"
	ValidationError   Code = "ValidationError"
	TimeoutError      Code = "TimeoutError"
	SelectTimeout     Code = "SelectTimeout"
)

// EvalError is the concrete error type raised throughout the evaluators.
// It is also the payload carried by value.Error, so the same struct
// doubles as a host-language error (for Go-level control flow) and as a
// language-level value (once wrapped).
type EvalError struct {
	Code    Code
	Message string
	Meta    map[string]string
	Err     error // wrapped cause, if any
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// New creates an EvalError with a plain message.
func New(code Code, message string) *EvalError {
	return &EvalError{Code: code, Message: message}
}

// Newf creates an EvalError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *EvalError {
	return &EvalError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an evaluation code to an existing error, e.g. an operator
// panic recovered by the call site and turned into a DomainError.
func Wrap(code Code, err error) *EvalError {
	return &EvalError{Code: code, Message: err.Error(), Err: err}
}

// WithMeta returns a copy of e with the given metadata entry added.
// Metadata is copy-on-write so a shared EvalError is never mutated
// under a caller that merely wants to annotate it further.
func (e *EvalError) WithMeta(key, value string) *EvalError {
	meta := make(map[string]string, len(e.Meta)+1)
	for k, v := range e.Meta {
		meta[k] = v
	}
	meta[key] = value
	return &EvalError{Code: e.Code, Message: e.Message, Meta: meta, Err: e.Err}
}

// Is reports whether err is an *EvalError with the given code. The check
// is shallow: an *EvalError wrapped inside another error is not found.
func Is(err error, code Code) bool {
	ee, ok := err.(*EvalError)
	return ok && ee.Code == code
}
