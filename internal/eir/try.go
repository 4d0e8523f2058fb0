package eir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalTry handles try(tryBody, catchParam, catchBody, fallback?)
// (§4.3): evaluate tryBody; if it yielded an error, bind catchParam to
// the error value and evaluate catchBody; if it succeeded and fallback
// is present, evaluate fallback and return that instead; otherwise
// return the try result unchanged.
//
// tryBody is special-cased: if it is a node-id reference already
// present in the cache, that cached result is used directly even if it
// is an error — bypassing ResolveRef's usual "skip a cached error, force
// re-evaluation" rule — because try exists specifically to catch an
// error that occurred during the document's main evaluation pass, and
// re-running tryBody here would simply discard the very error try is
// meant to observe.
func (e *Evaluator) evalTry(expr document.Expr, sc *env.Environment) (value.Value, error) {
	result, err := e.tryBodyValue(expr.Arg("tryBody"), sc)
	if err != nil {
		return nil, err
	}

	if ev, caught := value.IsError(result); caught {
		catchParam := expr.Str("catchParam")
		catchEnv := sc.With1(catchParam, ev)
		return e.EvalArg(expr.Arg("catchBody"), catchEnv)
	}

	if fb := expr.OptArg("fallback"); fb != nil {
		return e.EvalArg(*fb, sc)
	}
	return result, nil
}

func (e *Evaluator) tryBodyValue(arg document.Arg, sc *env.Environment) (value.Value, error) {
	if arg.IsNodeID {
		if cached, ok := e.Cache[arg.NodeID]; ok {
			return cached, nil
		}
	}
	return e.EvalArg(arg, sc)
}
