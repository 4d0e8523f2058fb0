package eir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalWhile handles while(cond, body) (§4.3): re-evaluate cond every
// iteration, invalidating any cached entry for it first so a cond that
// reads an assigned variable sees the loop body's writes; stop when
// cond is false or the iteration budget is exhausted.
func (e *Evaluator) evalWhile(expr document.Expr, sc *env.Environment) (value.Value, error) {
	cond := expr.Arg("cond")
	body := expr.Arg("body")

	for i := 0; i < e.budget(); i++ {
		e.invalidateArg(cond)
		cv, err := e.EvalArg(cond, sc)
		if err != nil {
			return nil, err
		}
		if isError(cv) {
			return cv, nil
		}
		b, ok := cv.(value.Bool)
		if !ok {
			return errVal(ierr.TypeError, "while: condition must be bool, got %s", cv.Kind()), nil
		}
		if !bool(b) {
			return value.Void{}, nil
		}
		if bv, err := e.EvalArg(body, sc); err != nil {
			return nil, err
		} else if isError(bv) {
			return bv, nil
		}
	}
	return errVal(ierr.NonTermination, "while: exceeded iteration budget of %d", e.budget()), nil
}

// evalFor handles for(var, init, cond, update, body) (§4.3): evaluate
// init once and bind var in a fresh loop environment; each iteration
// evaluates cond, then body, then update under that same loop
// environment, rebinding var to update's result for the next iteration.
func (e *Evaluator) evalFor(expr document.Expr, sc *env.Environment) (value.Value, error) {
	name := expr.Str("var")
	initVal, err := e.EvalArg(expr.Arg("init"), sc)
	if err != nil {
		return nil, err
	}
	if isError(initVal) {
		return initVal, nil
	}

	loopEnv := sc.ExtendEnv(map[string]value.Value{name: initVal})
	cond := expr.Arg("cond")
	update := expr.Arg("update")
	body := expr.Arg("body")

	for i := 0; i < e.budget(); i++ {
		e.invalidateArg(cond)
		cv, err := e.EvalArg(cond, loopEnv)
		if err != nil {
			return nil, err
		}
		if isError(cv) {
			return cv, nil
		}
		b, ok := cv.(value.Bool)
		if !ok {
			return errVal(ierr.TypeError, "for: condition must be bool, got %s", cv.Kind()), nil
		}
		if !bool(b) {
			return value.Void{}, nil
		}

		if bv, err := e.EvalArg(body, loopEnv); err != nil {
			return nil, err
		} else if isError(bv) {
			return bv, nil
		}

		e.invalidateArg(update)
		uv, err := e.EvalArg(update, loopEnv)
		if err != nil {
			return nil, err
		}
		if isError(uv) {
			return uv, nil
		}
		loopEnv.AssignExisting(name, uv)
	}
	return errVal(ierr.NonTermination, "for: exceeded iteration budget of %d", e.budget()), nil
}

// evalIter handles iter(var, iterable, body) (§4.3): iterable must be a
// list or set. List elements bind in insertion order; set elements
// decode their content hash back to a typed primitive (§4.3, §4.4) since
// a set's canonical membership test operates on hashes, not the
// original typed value.
func (e *Evaluator) evalIter(expr document.Expr, sc *env.Environment) (value.Value, error) {
	name := expr.Str("var")
	iterableVal, err := e.EvalArg(expr.Arg("iterable"), sc)
	if err != nil {
		return nil, err
	}
	if isError(iterableVal) {
		return iterableVal, nil
	}
	body := expr.Arg("body")

	var items []value.Value
	switch coll := iterableVal.(type) {
	case *value.List:
		items = coll.Items
	case *value.Set:
		items = make([]value.Value, 0, coll.Len())
		for _, h := range coll.Hashes() {
			v, derr := value.DecodePrimitiveHash(h)
			if derr != nil {
				return errVal(ierr.TypeError, "iter: %s", derr.Error()), nil
			}
			items = append(items, v)
		}
	default:
		return errVal(ierr.TypeError, "iter: expected a list or set, got %s", iterableVal.Kind()), nil
	}

	if len(items) > e.budget() {
		return errVal(ierr.NonTermination, "iter: exceeded iteration budget of %d", e.budget()), nil
	}

	loopEnv := sc.ExtendEnv(map[string]value.Value{name: value.Void{}})
	for _, item := range items {
		loopEnv.AssignExisting(name, item)
		if bv, err := e.EvalArg(body, loopEnv); err != nil {
			return nil, err
		} else if isError(bv) {
			return bv, nil
		}
	}
	return value.Void{}, nil
}
