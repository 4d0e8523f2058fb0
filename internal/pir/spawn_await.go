package pir

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalSpawn handles spawn(node) (§4.4): allocate a fresh task id,
// register an async computation with the scheduler that evaluates the
// named task node against a snapshot of the current environment, and
// return a future. The computation starts running immediately (the
// Default strategy's eager contract); its result is cached by the
// scheduler so every subsequent await of this future sees the same
// value regardless of how many times it is awaited.
func (e *Evaluator) evalSpawn(expr document.Expr, sc *env.Environment) (value.Value, error) {
	nodeID := expr.Str("node")
	if nodeID == "" {
		return errVal(ierr.ValidationError, "spawn: missing task node id"), nil
	}
	snapshot := sc // Extend/With1 never mutate an ancestor frame, so the
	// current pointer already behaves as a snapshot for everything but
	// assign's in-place AssignExisting escape hatch (§5 accepts cells,
	// not environment frames, as the shared-mutation channel).

	taskID := uuid.NewString()
	e.Scheduler.Spawn(taskID, func() (interface{}, error) {
		return e.runTaskNode(nodeID, snapshot)
	})
	return &value.Future{TaskID: taskID, Status: value.FuturePending}, nil
}

// evalAwait handles await(future, timeout?, fallback?, returnIndex?)
// (§4.4).
func (e *Evaluator) evalAwait(expr document.Expr, sc *env.Environment) (value.Value, error) {
	fv, err := e.EvalArg(expr.Arg("future"), sc)
	if err != nil {
		return nil, err
	}
	if isError(fv) {
		return fv, nil
	}
	fut, ok := fv.(*value.Future)
	if !ok {
		return errVal(ierr.TypeError, "await: expected a future, got %s", fv.Kind()), nil
	}
	returnIndex := expr.Bool("returnIndex")

	if !expr.Has("timeout") {
		v, err := toValue(e.Scheduler.Await(fut.TaskID))
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return errVal(ierr.DomainError, "await: task %s failed: %s", fut.TaskID, v.(*value.Error).Err.Message), nil
		}
		return wrapIndexed(v, 0, returnIndex), nil
	}

	// The timeout path races the task's completion against a timer, so it
	// cannot delegate to Scheduler.Await (a single GIL release/reacquire
	// owned by exactly one caller): instead it does that release/reacquire
	// itself, directly around a select on the task's raw Done channel, the
	// same pattern evalSelect and evalRace use for racing several tasks.
	e.Scheduler.EnsureStarted(fut.TaskID)
	done := e.Scheduler.Done(fut.TaskID)
	if done == nil {
		return errVal(ierr.DomainError, "await: unknown task %s", fut.TaskID), nil
	}
	timeout := time.Duration(expr.Int("timeout")) * time.Millisecond

	gil := e.Scheduler.GIL()
	gil.Unlock()
	select {
	case <-done:
		gil.Lock()
		v, err := toValue(e.Scheduler.Result(fut.TaskID))
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return errVal(ierr.DomainError, "await: task %s failed: %s", fut.TaskID, v.(*value.Error).Err.Message), nil
		}
		return wrapIndexed(v, 0, returnIndex), nil
	case <-time.After(timeout):
		gil.Lock()
		if fb := expr.OptArg("fallback"); fb != nil {
			v, err := e.EvalArg(*fb, sc)
			if err != nil {
				return nil, err
			}
			return wrapIndexed(v, 1, returnIndex), nil
		}
		return wrapIndexed(errVal(ierr.TimeoutError, "await: task %s timed out after %s", fut.TaskID, timeout), 1, returnIndex), nil
	}
}

// wrapIndexed wraps v as a selectResult{index, v} when returnIndex is
// set, otherwise returns v unchanged (§4.4).
func wrapIndexed(v value.Value, index int, returnIndex bool) value.Value {
	if !returnIndex {
		return v
	}
	return &value.SelectResult{Index: index, Val: v}
}
