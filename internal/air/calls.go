package air

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalCall handles call(ns, name, args): operator application (§4.1).
// Args are evaluated left-to-right; the first error value short-circuits
// (§3.5 invariant 8). An operator that returns an *ierr.EvalError keeps
// that error's code; any other returned Go error, and any recovered
// operator panic, is reported as DomainError.
func (e *Evaluator) evalCall(expr document.Expr, sc *env.Environment) (v value.Value, err error) {
	ns := expr.Str("ns")
	name := expr.Str("name")
	args := expr.Args("args")

	argv := make([]value.Value, len(args))
	for i, a := range args {
		val, aerr := e.EvalArg(a, sc)
		if aerr != nil {
			return nil, aerr
		}
		if isError(val) {
			return val, nil
		}
		argv[i] = val
	}

	op, ok := e.Ops.LookupOperator(ns, name)
	if !ok {
		return errVal(ierr.UnknownOperator, "unknown operator %s", qualifiedName(ns, name)), nil
	}
	if err := registry.CheckArity(qualifiedName(ns, name), op.Arity, len(argv)); err != nil {
		return errVal(ierr.ArityError, "%s", err.Error()), nil
	}

	defer func() {
		if r := recover(); r != nil {
			v = errVal(ierr.DomainError, "operator %s panicked: %v", qualifiedName(ns, name), r)
			err = nil
		}
	}()

	result, callErr := op.Fn(argv)
	if callErr != nil {
		// An operator may raise a specific taxonomy code (e.g.
		// DivideByZero, §7) by returning an *ierr.EvalError directly;
		// any other Go error is an uncontrolled operator failure and
		// becomes a generic DomainError.
		if ee, ok := callErr.(*ierr.EvalError); ok {
			return value.NewError(ee), nil
		}
		return errVal(ierr.DomainError, "%s", callErr.Error()), nil
	}
	return result, nil
}

func qualifiedName(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// evalAirRef handles airRef(ns, name, args): named-procedure application
// (§4.1). Named procedures are not closures: the body evaluates under a
// fresh environment containing only the bound parameters, never the
// caller's scope.
func (e *Evaluator) evalAirRef(expr document.Expr, sc *env.Environment) (value.Value, error) {
	ns := expr.Str("ns")
	name := expr.Str("name")
	args := expr.Args("args")

	proc, ok := e.Defs.Lookup(ns, name)
	if !ok {
		return errVal(ierr.UnknownDefinition, "unknown procedure %s", qualifiedName(ns, name)), nil
	}
	if len(args) != len(proc.Params) {
		return errVal(ierr.ArityError, "%s expects %d argument(s), got %d", qualifiedName(ns, name), len(proc.Params), len(args)), nil
	}

	bindings := make(map[string]value.Value, len(proc.Params))
	for i, p := range proc.Params {
		v, err := e.EvalArg(args[i], sc)
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return v, nil
		}
		bindings[p.Name] = v
	}

	body := env.New().ExtendEnv(bindings)
	return e.Eval(proc.Body, body)
}
