// Package pir implements the async/parallel evaluator (§4.4): par,
// spawn/await, channel/send/recv, select, race, plus the TaskRunner
// implementation that makes lir's fork/join/suspend terminators
// functional. It embeds an *lir.Evaluator so block-form task nodes run
// through the same CFG executor as synchronous LIR, and an expression
// evaluator (inherited transitively from eir/air) so expression-form
// task nodes and every AIR/CIR/EIR construct keep working unmodified.
//
// Concurrency is real goroutines, one per spawned task, coordinated by
// internal/scheduler's cooperative GIL: exactly one task's evaluator
// code runs at a time, and it only yields at await, recv and timers;
// send hands its value off without suspending the sender. See
// scheduler.go's package doc for the full rationale.
package pir

import (
	"fmt"

	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/lir"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/scheduler"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// Evaluator layers PIR's async constructs over the embedded LIR/EIR/AIR
// stack, plus a Scheduler and ChannelStore shared by every task spawned
// from the same document (§5 "Shared-resource policy").
type Evaluator struct {
	*lir.Evaluator
	Scheduler *scheduler.Scheduler
	Channels  *scheduler.ChannelStore
}

// New creates an async evaluator over doc using the Default (eager)
// scheduling strategy; use NewWithStrategy for the deterministic
// strategies §4.5 offers as plug-ins.
func New(doc *document.Document, defs *env.Definitions, ops registry.OperatorRegistry, effects registry.EffectRegistry, cells *env.RefCellStore) *Evaluator {
	return NewWithStrategy(doc, defs, ops, effects, cells, nil)
}

// NewWithStrategy is New with an explicit scheduler.Strategy.
func NewWithStrategy(doc *document.Document, defs *env.Definitions, ops registry.OperatorRegistry, effects registry.EffectRegistry, cells *env.RefCellStore, strategy scheduler.Strategy) *Evaluator {
	base := lir.New(doc, defs, ops, effects, cells)
	sched := scheduler.New(strategy)
	e := &Evaluator{
		Evaluator: base,
		Scheduler: sched,
		Channels:  scheduler.NewChannelStore(sched.GIL()),
	}
	base.Tasks = e

	// Reach through lir -> eir to the innermost air.Evaluator's Ext hook,
	// the same wiring eir.New performs one layer down (§ air/evaluator.go
	// doc comment) — without this, a par/spawn/channel/... construct
	// nested inside an if/let/call would never reach Eval below.
	airBase := base.Evaluator.Evaluator
	airBase.Ext = e.Eval
	return e
}

// EnableMetrics wires m into both the Scheduler (task-count and
// step-budget-remaining gauges) and the embedded eir.Evaluator
// (effect-invocation counter), so cmd/airvm's --metrics-addr flag has
// one call that covers every metric SPEC_FULL's domain stack commits
// this evaluator stack to exporting.
func (e *Evaluator) EnableMetrics(m *scheduler.Metrics) {
	e.Scheduler.EnableMetrics(m)
	e.Evaluator.Metrics = m
}

// RunTop is the entry point for driving a PIR document's outermost,
// non-spawned evaluation: it acquires the cooperative GIL for the whole
// run, exactly like every task's own computation does when the
// scheduler launches it. External callers (cmd/airvm, tests) should
// call RunTop/EvalTop rather than RunBlockNode/Eval directly once any
// spawn/fork/par(parallel) is in play.
func (e *Evaluator) RunTop(node *document.Node, sc *env.Environment) (value.Value, error) {
	e.Scheduler.GIL().Lock()
	defer e.Scheduler.GIL().Unlock()
	return e.RunBlockNode(node, sc)
}

// EvalTop is RunTop's expression-form counterpart.
func (e *Evaluator) EvalTop(expr document.Expr, sc *env.Environment) (value.Value, error) {
	e.Scheduler.GIL().Lock()
	defer e.Scheduler.GIL().Unlock()
	return e.Eval(expr, sc)
}

// Eval handles the PIR-only expression kinds and falls back to the
// embedded lir/eir/air stack for everything else.
func (e *Evaluator) Eval(expr document.Expr, sc *env.Environment) (value.Value, error) {
	switch expr.Kind {
	case "par":
		return e.evalPar(expr, sc)
	case "spawn":
		return e.evalSpawn(expr, sc)
	case "await":
		return e.evalAwait(expr, sc)
	case "channel":
		return e.evalChannel(expr, sc)
	case "send":
		return e.evalSend(expr, sc)
	case "recv":
		return e.evalRecv(expr, sc)
	case "select":
		return e.evalSelect(expr, sc)
	case "race":
		return e.evalRace(expr, sc)
	default:
		return e.Evaluator.Eval(expr, sc)
	}
}

// EvalArg overrides the promoted EvalArg so inline PIR expressions
// dispatch here instead of falling into eir/air's unknown-kind error,
// the same shadowing eir.Evaluator.EvalArg already does one layer down.
func (e *Evaluator) EvalArg(a document.Arg, sc *env.Environment) (value.Value, error) {
	if a.IsNodeID {
		return e.ResolveRef(a.NodeID, sc)
	}
	if a.Inline == nil {
		return e.Evaluator.EvalArg(a, sc)
	}
	return e.Eval(*a.Inline, sc)
}

// runTaskNode evaluates the node named id to completion, dispatching on
// whether it is expression-form or block-form (§4.4 "spawn... evaluates
// the task node"); used by spawn, fork, par and race alike.
func (e *Evaluator) runTaskNode(nodeID string, sc *env.Environment) (value.Value, error) {
	node, ok := e.Doc.Node(nodeID)
	if !ok {
		return errVal(ierr.UnknownDefinition, "pir: unknown task node %q", nodeID), nil
	}
	if node.IsBlock {
		return e.RunFromBlockOf(node, sc)
	}
	return e.Eval(node.Expr, sc)
}

// RunFromBlockOf runs a block-form node to completion from its own
// entry, recording it as the current node so any fork nested within it
// can resolve branch block ids (lir.RunBlockNode already does this; this
// wrapper exists so pir's own call sites read uniformly).
func (e *Evaluator) RunFromBlockOf(node *document.Node, sc *env.Environment) (value.Value, error) {
	return e.RunBlockNode(node, sc)
}

func isError(v value.Value) bool {
	_, ok := value.IsError(v)
	return ok
}

func errVal(code ierr.Code, format string, args ...interface{}) *value.Error {
	return value.NewError(ierr.Newf(code, format, args...))
}

// toValue asserts a scheduler result (interface{}, since the scheduler
// itself has no dependency on this module's Value algebra) back to
// value.Value; a structural mismatch here means a task's computation
// callback didn't return a value.Value, which is this package's own
// bug, not a language-level error.
func toValue(v interface{}, err error) (value.Value, error) {
	if err != nil {
		if ee, ok := err.(*ierr.EvalError); ok {
			return value.NewError(ee), nil
		}
		return nil, err
	}
	if v == nil {
		return value.Void{}, nil
	}
	vv, ok := v.(value.Value)
	if !ok {
		return nil, fmt.Errorf("pir: task result %v is not a value.Value", v)
	}
	return vv, nil
}
