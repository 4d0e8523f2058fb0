package air

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalLambda handles lambda(params, body, fn-type): a closure capturing
// sc. predicate(...) is evaluated identically — the grammar lists it
// separately (§3.4) but gives it no distinct runtime contract beyond
// "a first-class function used as a boolean test", which this capture
// semantics already provides.
func (e *Evaluator) evalLambda(expr document.Expr, sc *env.Environment) (value.Value, error) {
	return &value.Closure{
		Params: toParams(expr.Params("params")),
		Body:   expr.Arg("body"),
		Env:    sc,
	}, nil
}

// toParams converts the document's JSON param array into value.Params.
func toParams(items []document.Param) []value.Param {
	out := make([]value.Param, len(items))
	for i, p := range items {
		out[i] = value.Param{Name: p.Name, Optional: p.Optional, Default: p.Default}
	}
	return out
}

// evalCallExpr handles callExpr(fn, args): apply a closure (§4.1).
// Required parameters never receive defaults; optional parameters
// omitted at the call site evaluate their default in the closure's
// defining environment, or bind Undefined if no default was given.
func (e *Evaluator) evalCallExpr(expr document.Expr, sc *env.Environment) (value.Value, error) {
	fnVal, err := e.EvalArg(expr.Arg("fn"), sc)
	if err != nil {
		return nil, err
	}
	if isError(fnVal) {
		return fnVal, nil
	}
	closure, ok := fnVal.(*value.Closure)
	if !ok {
		return errVal(ierr.TypeError, "callExpr: expected a closure, got %s", fnVal.Kind()), nil
	}

	args := expr.Args("args")
	argv, err := e.EvalArgs(args, sc)
	if err != nil {
		return nil, err
	}
	for _, v := range argv {
		if isError(v) {
			return v, nil
		}
	}

	return e.applyClosure(closure, argv)
}

// applyClosure binds argv against closure.Params (enforcing min/max
// arity, filling omitted optionals from defaults or Undefined) and
// evaluates the body under the captured environment extended with the
// bindings.
func (e *Evaluator) applyClosure(closure *value.Closure, argv []value.Value) (value.Value, error) {
	min := closure.RequiredCount()
	max := len(closure.Params)
	if len(argv) < min || len(argv) > max {
		return errVal(ierr.ArityError, "closure expects %d to %d argument(s), got %d", min, max, len(argv)), nil
	}

	definingEnv, ok := closure.Env.(*env.Environment)
	if !ok {
		return nil, &malformedEnvError{}
	}

	bindings := make(map[string]value.Value, len(closure.Params))
	for i, p := range closure.Params {
		if i < len(argv) {
			bindings[p.Name] = argv[i]
			continue
		}
		if p.Default != nil {
			v, err := e.Eval(*p.Default, definingEnv)
			if err != nil {
				return nil, err
			}
			bindings[p.Name] = v
			continue
		}
		bindings[p.Name] = value.Undefined{}
	}

	callEnv := definingEnv.ExtendEnv(bindings)
	return e.EvalArg(closure.Body, callEnv)
}

type malformedEnvError struct{}

func (*malformedEnvError) Error() string {
	return "air: closure environment is not an *env.Environment"
}

// evalFix handles fix(fn): self-tying a single-parameter closure into a
// self-referential one (§4.1, §9). fn is expected to evaluate to a
// closure of exactly one parameter whose body, once invoked, produces
// the "real" recursive function; fix ties that function's own name
// (the parameter) back to itself.
//
// Implementation follows the two-phase construction from §9: allocate
// an empty shell closure, bind the parameter to the shell in a fresh
// environment, evaluate fn's body under that environment to obtain the
// real closure, then copy the real closure's fields into the shell so
// that the shell is now indistinguishable from — and usable in place
// of — the real closure, while still being the exact value that "rec"
// resolves to inside recursive calls.
func (e *Evaluator) evalFix(expr document.Expr, sc *env.Environment) (value.Value, error) {
	fnVal, err := e.EvalArg(expr.Arg("fn"), sc)
	if err != nil {
		return nil, err
	}
	if isError(fnVal) {
		return fnVal, nil
	}
	outer, ok := fnVal.(*value.Closure)
	if !ok {
		return errVal(ierr.TypeError, "fix: expected a closure, got %s", fnVal.Kind()), nil
	}
	if len(outer.Params) != 1 {
		return errVal(ierr.ArityError, "fix: expected a single-parameter closure, got %d parameter(s)", len(outer.Params)), nil
	}

	definingEnv, ok := outer.Env.(*env.Environment)
	if !ok {
		return nil, &malformedEnvError{}
	}

	shell := &value.Closure{}
	selfEnv := definingEnv.With1(outer.Params[0].Name, shell)

	real, err := e.EvalArg(outer.Body, selfEnv)
	if err != nil {
		return nil, err
	}
	if isError(real) {
		return real, nil
	}
	realClosure, ok := real.(*value.Closure)
	if !ok {
		return errVal(ierr.TypeError, "fix: body did not produce a closure, got %s", real.Kind()), nil
	}

	shell.Params = realClosure.Params
	shell.Body = realClosure.Body
	shell.Env = realClosure.Env
	return shell, nil
}
