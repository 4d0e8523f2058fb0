package eir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalEffect handles effect(op, args) (§4.3): evaluate args, look up op
// in the effect registry, check arity, invoke it and append the call
// (with its resolved argument values and result) to the effect log.
// Result is always void — effects communicate through their side
// effects and the log, not a return value.
func (e *Evaluator) evalEffect(expr document.Expr, sc *env.Environment) (value.Value, error) {
	name := expr.Str("op")
	args := expr.Args("args")

	argv := make([]value.Value, len(args))
	for i, a := range args {
		v, err := e.EvalArg(a, sc)
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return v, nil
		}
		argv[i] = v
	}

	if e.Effects == nil {
		return errVal(ierr.UnknownOperator, "unknown effect %q", name), nil
	}
	eff, ok := e.Effects.LookupEffect(name)
	if !ok {
		return errVal(ierr.UnknownOperator, "unknown effect %q", name), nil
	}
	if err := registry.CheckArity("effect "+name, eff.Arity, len(argv)); err != nil {
		return errVal(ierr.ArityError, "%s", err.Error()), nil
	}

	result, err := eff.Fn(argv)
	if err != nil {
		if ee, ok := err.(*ierr.EvalError); ok {
			return value.NewError(ee), nil
		}
		return errVal(ierr.DomainError, "%s", err.Error()), nil
	}
	if result == nil {
		result = value.Void{}
	}

	e.EffectLog = append(e.EffectLog, LoggedEffect{Name: name, Args: argv, Result: result})
	e.Metrics.RecordEffect(name)
	return value.Void{}, nil
}
