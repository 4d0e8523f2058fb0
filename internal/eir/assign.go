package eir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalAssign handles assign(target, value) (§4.3): evaluate value in the
// current env, store the result into the ref-cell store and the
// node-value cache under target, and extend env with target→value so
// later reads in the same or a nested scope see it. Result is void.
//
// Cache invalidation is load-bearing (§9 "rewrite notes"): target's
// cached node-eval entry is dropped before value is evaluated, so a
// value expression that reads target (directly, or via a node the
// current node's id aliases) re-reads rather than replaying a stale
// cached result — without this a loop body that re-assigns the same
// target every iteration would never observe its own prior writes.
func (e *Evaluator) evalAssign(expr document.Expr, sc *env.Environment) (value.Value, error) {
	target := expr.Str("target")
	e.invalidateTarget(target)

	v, err := e.EvalArg(expr.Arg("value"), sc)
	if err != nil {
		return nil, err
	}
	if isError(v) {
		return v, nil
	}

	if e.Cells != nil {
		e.Cells.Set(target, v)
	}
	e.Cache[target] = v
	if !sc.AssignExisting(target, v) {
		sc.DefineHere(target, v)
	}
	return value.Void{}, nil
}
