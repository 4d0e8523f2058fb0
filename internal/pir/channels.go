package pir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalChannel handles channel(type, bufferSize?) (§4.4): bufferSize
// absent or 0 creates a rendezvous channel.
func (e *Evaluator) evalChannel(expr document.Expr, sc *env.Environment) (value.Value, error) {
	typ := expr.Str("type")
	bufferSize := int(expr.Int("bufferSize"))
	id := e.Channels.Create(typ, bufferSize)
	return &value.Channel{ID: id, Type: typ}, nil
}

// evalSend handles send(channel, value) (§4.4): fire-and-forget, never
// suspends the caller.
func (e *Evaluator) evalSend(expr document.Expr, sc *env.Environment) (value.Value, error) {
	cv, err := e.EvalArg(expr.Arg("channel"), sc)
	if err != nil {
		return nil, err
	}
	if isError(cv) {
		return cv, nil
	}
	ch, ok := cv.(*value.Channel)
	if !ok {
		return errVal(ierr.TypeError, "send: expected a channel, got %s", cv.Kind()), nil
	}
	v, err := e.EvalArg(expr.Arg("value"), sc)
	if err != nil {
		return nil, err
	}
	if isError(v) {
		return v, nil
	}
	if err := e.Channels.Send(ch.ID, v); err != nil {
		return errVal(ierr.DomainError, "%s", err.Error()), nil
	}
	return value.Void{}, nil
}

// evalRecv handles recv(channel) (§4.4): blocks until a value is
// available.
func (e *Evaluator) evalRecv(expr document.Expr, sc *env.Environment) (value.Value, error) {
	cv, err := e.EvalArg(expr.Arg("channel"), sc)
	if err != nil {
		return nil, err
	}
	if isError(cv) {
		return cv, nil
	}
	ch, ok := cv.(*value.Channel)
	if !ok {
		return errVal(ierr.TypeError, "recv: expected a channel, got %s", cv.Kind()), nil
	}
	raw, err := e.Channels.Recv(ch.ID)
	if err != nil {
		return errVal(ierr.DomainError, "%s", err.Error()), nil
	}
	v, ok := raw.(value.Value)
	if !ok {
		return errVal(ierr.DomainError, "recv: channel %s carried a non-value payload", ch.ID), nil
	}
	return v, nil
}
