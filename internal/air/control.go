package air

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

func (e *Evaluator) evalIf(expr document.Expr, sc *env.Environment) (value.Value, error) {
	cond, err := e.EvalArg(expr.Arg("cond"), sc)
	if err != nil {
		return nil, err
	}
	if isError(cond) {
		return cond, nil
	}
	b, ok := cond.(value.Bool)
	if !ok {
		return errVal(ierr.TypeError, "if: condition must be bool, got %s", cond.Kind()), nil
	}
	if bool(b) {
		return e.EvalArg(expr.Arg("then"), sc)
	}
	if elseArg := expr.OptArg("else"); elseArg != nil {
		return e.EvalArg(*elseArg, sc)
	}
	return value.Void{}, nil
}

func (e *Evaluator) evalLet(expr document.Expr, sc *env.Environment) (value.Value, error) {
	v, err := e.EvalArg(expr.Arg("value"), sc)
	if err != nil {
		return nil, err
	}
	if isError(v) {
		return v, nil
	}
	name := expr.Str("name")
	extended := sc.With1(name, v)
	return e.EvalArg(expr.Arg("body"), extended)
}

func isError(v value.Value) bool {
	_, ok := value.IsError(v)
	return ok
}
