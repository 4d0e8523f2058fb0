package value

import "github.com/go-air/airvm/internal/ierr"

// Error is the value-level wrapper around an *ierr.EvalError (§7).
// Errors are first-class: they flow through lists, get bound to names,
// and are only consumed by try/catch or by a construct that explicitly
// inspects .Code/.Message.
type Error struct {
	Err *ierr.EvalError
}

func NewError(err *ierr.EvalError) *Error { return &Error{Err: err} }

func (e *Error) Kind() Kind     { return KindError }
func (e *Error) String() string { return e.Err.Error() }
func (e *Error) Hash() string   { return "e:" + string(e.Err.Code) + ":" + e.Err.Message }

func (e *Error) Equals(other Value) (bool, error) {
	o, ok := other.(*Error)
	if !ok {
		return false, nil
	}
	return e.Err.Code == o.Err.Code && e.Err.Message == o.Err.Message, nil
}

// IsError reports whether v is an error value, and returns it cast.
func IsError(v Value) (*Error, bool) {
	e, ok := v.(*Error)
	return e, ok
}
