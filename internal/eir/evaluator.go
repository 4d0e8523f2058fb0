// Package eir implements the imperative/effectful extension (§4.3):
// sequencing, assignment, while/for/iter loops, effects, ref-cells and
// try/catch/fallback. It embeds an *air.Evaluator and layers a mutable
// execution state (current env, ref-cell store, effect log, step
// counter, step budget) on top of it, following the "extends the
// expression evaluator" relationship the specification describes.
package eir

import (
	"github.com/go-air/airvm/internal/air"
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/scheduler"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// DefaultIterBudget is the per-loop maximum-iteration guard (§4.2):
// while/for/iter exceeding it convert runaway control flow into a
// NonTermination value rather than looping forever.
const DefaultIterBudget = 10000

// LoggedEffect records one effect invocation for the evaluation's effect
// log (§3.6): the evaluation order of effect(...) nodes is the log's
// order.
type LoggedEffect struct {
	Name   string
	Args   []value.Value
	Result value.Value
}

// Evaluator layers EIR's imperative constructs over the embedded AIR/CIR
// expression evaluator. Effects, EffectLog, Cells and Steps are mutable,
// shared state: every sub-evaluation observes the writes of every prior
// one (§4.3 "state threading rule").
type Evaluator struct {
	*air.Evaluator
	Effects   registry.EffectRegistry
	EffectLog []LoggedEffect

	// Metrics is nil unless a pir.Evaluator above this one had
	// EnableMetrics called on it; evalEffect records into it
	// unconditionally (RecordEffect is a no-op on a nil receiver) so
	// a pure EIR run with no scheduler underneath never needs to care.
	Metrics *scheduler.Metrics

	IterBudget int // 0 means DefaultIterBudget
	steps      int
}

// New creates an imperative evaluator over doc. cells is the ref-cell
// store shared with anything else evaluating the same document (e.g. a
// pir.Evaluator layered on top); effects may be nil if the document
// contains no effect(...) nodes.
func New(doc *document.Document, defs *env.Definitions, ops registry.OperatorRegistry, effects registry.EffectRegistry, cells *env.RefCellStore) *Evaluator {
	base := air.New(doc, defs, ops, cells)
	e := &Evaluator{Evaluator: base, Effects: effects, IterBudget: DefaultIterBudget}
	base.Ext = e.Eval
	return e
}

func (e *Evaluator) budget() int {
	if e.IterBudget <= 0 {
		return DefaultIterBudget
	}
	return e.IterBudget
}

// Eval is the single entry point for every expression kind: it handles
// the EIR-only constructs itself and falls back to the embedded
// air.Evaluator for everything else (lit, var, ref, call, if, let,
// lambda, callExpr, fix, airRef). air.Evaluator.Ext is wired to this
// method so EIR constructs nested inside an AIR/CIR sub-expression (an
// if branch, a call argument, a closure body) still reach it.
func (e *Evaluator) Eval(expr document.Expr, sc *env.Environment) (value.Value, error) {
	switch expr.Kind {
	case "seq":
		return e.evalSeq(expr, sc)
	case "assign":
		return e.evalAssign(expr, sc)
	case "while":
		return e.evalWhile(expr, sc)
	case "for":
		return e.evalFor(expr, sc)
	case "iter":
		return e.evalIter(expr, sc)
	case "effect":
		return e.evalEffect(expr, sc)
	case "refCell":
		return e.evalRefCellExpr(expr, sc)
	case "deref":
		return e.evalDeref(expr, sc)
	case "try":
		return e.evalTry(expr, sc)
	default:
		return e.Evaluator.Eval(expr, sc)
	}
}

// EvalArg overrides the promoted air.Evaluator.EvalArg so inline EIR
// expressions reached directly (not through Eval's default branch)
// dispatch here rather than hitting air's "unknown expression kind"
// error. Node-id args still resolve through the embedded ResolveRef,
// which already consults e.Ext via Eval for the node's expression.
func (e *Evaluator) EvalArg(a document.Arg, sc *env.Environment) (value.Value, error) {
	if a.IsNodeID {
		return e.ResolveRef(a.NodeID, sc)
	}
	if a.Inline == nil {
		return e.Evaluator.EvalArg(a, sc) // let air produce its structural error
	}
	return e.Eval(*a.Inline, sc)
}

// isError reports whether v is a *value.Error.
func isError(v value.Value) bool {
	_, ok := value.IsError(v)
	return ok
}

func errVal(code ierr.Code, format string, args ...interface{}) *value.Error {
	return value.NewError(ierr.Newf(code, format, args...))
}

// invalidateTarget drops target's cached node-eval entry. The §4.3
// cache-invalidation rule: "before evaluating the value expression, drop
// its cached entry — loops must re-read variables each iteration."
func (e *Evaluator) invalidateTarget(target string) {
	delete(e.Cache, target)
}

// invalidateArg drops the cache entry for a, if a refers to a node id.
// Inline expressions have nothing cached to invalidate — ResolveRef only
// ever caches under a node id, never an inline expression's own site.
func (e *Evaluator) invalidateArg(a document.Arg) {
	if a.IsNodeID {
		delete(e.Cache, a.NodeID)
	}
}
