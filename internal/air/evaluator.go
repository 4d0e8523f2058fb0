// Package air implements the big-step expression evaluator for AIR
// (applicative) and CIR (+ first-class functions, fix) nodes (§4.1).
// The imperative (eir) and async (pir) extensions embed an *Evaluator
// and layer their own constructs on top of Eval/EvalArg/ResolveRef.
package air

import (
	"fmt"

	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// Evaluator holds everything the expression evaluator needs that is not
// scoped to a single call: the document (for node lookup), the named
// procedure table, the operator registry, the node-value cache, and
// (when layered under eir) the ref-cell store. Cache and Cells are
// shared, mutable state — every other argument is read-only.
type Evaluator struct {
	Doc   *document.Document
	Defs  *env.Definitions
	Ops   registry.OperatorRegistry
	Cache map[string]value.Value
	Cells *env.RefCellStore // nil when running pure AIR/CIR with no imperative layer

	// Ext is consulted for expression kinds Eval's switch does not
	// recognize. eir and pir set this to their own Eval method so that an
	// EIR/PIR construct nested anywhere inside an AIR/CIR sub-expression
	// (an if branch, a let body, a call argument, a closure body) is
	// still reachable, without air needing to know those kinds exist.
	// Go has no virtual dispatch through embedding, so this hook is what
	// lets the extended evaluators recurse back into themselves from
	// code that only ever calls methods on the embedded *Evaluator.
	Ext func(document.Expr, *env.Environment) (value.Value, error)
}

// New creates an expression evaluator over doc. cells may be nil; eir
// passes its own store so that ref-cell-bound names resolve through
// node-reference indirection (§4.1 resolution rule, step 2).
func New(doc *document.Document, defs *env.Definitions, ops registry.OperatorRegistry, cells *env.RefCellStore) *Evaluator {
	return &Evaluator{Doc: doc, Defs: defs, Ops: ops, Cache: make(map[string]value.Value), Cells: cells}
}

// Eval reduces expr to a value under sc (the environment active at this
// point in the program). It never returns a Go error for language-level
// failures — those come back as a *value.Error — Go errors are reserved
// for structural problems (malformed documents) the caller cannot
// recover from.
func (e *Evaluator) Eval(expr document.Expr, sc *env.Environment) (value.Value, error) {
	switch expr.Kind {
	case "lit":
		return e.evalLit(expr)
	case "var":
		return e.evalVar(expr, sc)
	case "ref":
		return e.ResolveRef(expr.Str("id"), sc)
	case "call":
		return e.evalCall(expr, sc)
	case "if":
		return e.evalIf(expr, sc)
	case "let":
		return e.evalLet(expr, sc)
	case "airRef":
		return e.evalAirRef(expr, sc)
	case "predicate":
		return e.evalLambda(expr, sc)
	case "lambda":
		return e.evalLambda(expr, sc)
	case "callExpr":
		return e.evalCallExpr(expr, sc)
	case "fix":
		return e.evalFix(expr, sc)
	default:
		if e.Ext != nil {
			return e.Ext(expr, sc)
		}
		return nil, fmt.Errorf("air: unknown expression kind %q", expr.Kind)
	}
}

// EvalArg evaluates an operand that may be a node-id reference or an
// inline expression (§3.4).
func (e *Evaluator) EvalArg(a document.Arg, sc *env.Environment) (value.Value, error) {
	if a.IsNodeID {
		return e.ResolveRef(a.NodeID, sc)
	}
	if a.Inline == nil {
		return nil, fmt.Errorf("air: arg has neither node id nor inline expression")
	}
	return e.Eval(*a.Inline, sc)
}

// EvalArgs evaluates a list of operands left-to-right, short-circuiting
// on the first structural (Go) error; a language-level error value is
// not short-circuited here — callers that need §3.5 invariant 8
// left-to-right error propagation do that check themselves so they can
// choose which error wins.
func (e *Evaluator) EvalArgs(args []document.Arg, sc *env.Environment) ([]value.Value, error) {
	out := make([]value.Value, len(args))
	for i, a := range args {
		v, err := e.EvalArg(a, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ResolveRef implements the node-reference resolution order (§4.1):
// environment, then ref-cell store, then node-value cache (skipping a
// cached error so it can be retried under a context that may now have
// the bindings it was missing), then evaluating the referenced node
// fresh under the current environment.
func (e *Evaluator) ResolveRef(id string, sc *env.Environment) (value.Value, error) {
	if v, ok := sc.Lookup(id); ok {
		return v, nil
	}
	if e.Cells != nil {
		if cell, ok := e.Cells.Get(id); ok {
			return cell.Val, nil
		}
	}
	if cached, ok := e.Cache[id]; ok {
		if _, isErr := value.IsError(cached); !isErr {
			return cached, nil
		}
		// fall through: re-evaluate, per the cached-error escape hatch
	}
	node, ok := e.Doc.Node(id)
	if !ok {
		return nil, fmt.Errorf("air: unknown node id %q", id)
	}
	if node.IsBlock {
		return nil, fmt.Errorf("air: node %q is block-form, cannot be resolved as an expression reference", id)
	}
	v, err := e.Eval(node.Expr, sc)
	if err != nil {
		return nil, err
	}
	e.Cache[id] = v
	return v, nil
}

func (e *Evaluator) evalVar(expr document.Expr, sc *env.Environment) (value.Value, error) {
	name := expr.Str("name")
	if v, ok := sc.Lookup(name); ok {
		return v, nil
	}
	return errVal(ierr.UnboundIdentifier, "undefined identifier %q", name), nil
}

// errVal wraps an EvalError as a value.Value, the uniform way every
// construct in §4 reports a language-level failure.
func errVal(code ierr.Code, format string, args ...interface{}) *value.Error {
	return value.NewError(ierr.Newf(code, format, args...))
}
