package eir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalSeq handles seq(first, then): evaluate both in order, propagating
// whatever mutable state first's evaluation produced (env mutations,
// ref-cell writes, effect-log entries); the result is then's value. An
// error from first short-circuits and skips then, per the default
// propagation policy (§7).
func (e *Evaluator) evalSeq(expr document.Expr, sc *env.Environment) (value.Value, error) {
	firstVal, err := e.EvalArg(expr.Arg("first"), sc)
	if err != nil {
		return nil, err
	}
	if isError(firstVal) {
		return firstVal, nil
	}
	return e.EvalArg(expr.Arg("then"), sc)
}
