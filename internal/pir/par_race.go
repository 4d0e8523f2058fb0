package pir

import (
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// evalPar handles par(branches, mode) (§4.4): sequential evaluates each
// branch in order on the caller's own goroutine; parallel spawns one
// scheduler task per branch (so they actually run concurrently, under
// the GIL's usual one-at-a-time discipline) and joins them with an
// errgroup — the teacher pack's idiom for fan-out-then-join. The join
// goroutines only ever touch each task's raw Done channel and cached
// Result, never the GIL directly, so the GIL's single release/reacquire
// pair stays owned by this call, not scattered across siblings (see
// scheduler.Done's comment). Either mode's result is the list of branch
// values in branch order.
func (e *Evaluator) evalPar(expr document.Expr, sc *env.Environment) (value.Value, error) {
	branches := expr.Args("branches")
	mode := expr.Str("mode")
	if mode == "" {
		mode = "sequential"
	}
	results := make([]value.Value, len(branches))

	if mode == "sequential" {
		for i, b := range branches {
			v, err := e.EvalArg(b, sc)
			if err != nil {
				return nil, err
			}
			if isError(v) {
				return v, nil
			}
			results[i] = v
		}
		return value.NewList(results...), nil
	}

	ids := make([]string, len(branches))
	for i, b := range branches {
		b := b
		ids[i] = uuid.NewString()
		e.Scheduler.Spawn(ids[i], func() (interface{}, error) {
			return e.EvalArg(b, sc)
		})
	}

	gil := e.Scheduler.GIL()
	gil.Unlock()
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			<-e.Scheduler.Done(id)
			v, err := toValue(e.Scheduler.Result(id))
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	joinErr := g.Wait()
	gil.Lock()
	if joinErr != nil {
		return nil, joinErr
	}
	for _, v := range results {
		if isError(v) {
			return v, nil
		}
	}
	return value.NewList(results...), nil
}

// raceSelect blocks on the first of done (in index order, for
// deterministic tie-breaking, §5) to become ready, racing an optional
// timeout as the final case. It releases/reacquires the GIL exactly
// once around the wait; callers must already hold it. Returns the
// winning index, or len(done) if the timeout fired first.
func raceSelect(gil *sync.Mutex, done []<-chan struct{}, timeout <-chan time.Time) int {
	cases := make([]reflect.SelectCase, 0, len(done)+1)
	for _, d := range done {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(d)})
	}
	hasTimeout := timeout != nil
	if hasTimeout {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(timeout)})
	}

	gil.Unlock()
	chosen, _, _ := reflect.Select(cases)
	gil.Lock()

	// reflect.Select breaks ties among simultaneously-ready cases at
	// random; rescan in order for the lowest-index case that is also
	// ready right now, the deterministic tie-break §5 calls for.
	for i, d := range done {
		select {
		case <-d:
			return i
		default:
		}
	}
	return chosen
}

// evalSelect handles select(futures[], timeout?, fallback?,
// returnIndex?) (§4.4): races every future plus an optional timeout;
// first to complete wins, ties breaking toward the lower index.
func (e *Evaluator) evalSelect(expr document.Expr, sc *env.Environment) (value.Value, error) {
	futureArgs := expr.Args("futures")
	returnIndex := expr.Bool("returnIndex")

	futs := make([]*value.Future, len(futureArgs))
	for i, a := range futureArgs {
		v, err := e.EvalArg(a, sc)
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return v, nil
		}
		f, ok := v.(*value.Future)
		if !ok {
			return errVal(ierr.TypeError, "select: expected a future, got %s", v.Kind()), nil
		}
		futs[i] = f
	}

	done := make([]<-chan struct{}, len(futs))
	for i, f := range futs {
		e.Scheduler.EnsureStarted(f.TaskID)
		done[i] = e.Scheduler.Done(f.TaskID)
	}

	var timeoutCh <-chan time.Time
	hasTimeout := expr.Has("timeout")
	if hasTimeout {
		timeoutCh = time.After(time.Duration(expr.Int("timeout")) * time.Millisecond)
	}

	if len(futs) == 0 && !hasTimeout {
		return errVal(ierr.ValidationError, "select: empty future list"), nil
	}

	chosen := raceSelect(e.Scheduler.GIL(), done, timeoutCh)

	if hasTimeout && chosen == len(futs) {
		if fb := expr.OptArg("fallback"); fb != nil {
			v, err := e.EvalArg(*fb, sc)
			if err != nil {
				return nil, err
			}
			return wrapIndexed(v, -1, returnIndex), nil
		}
		return wrapIndexed(errVal(ierr.SelectTimeout, "select: timed out with no fallback"), -1, returnIndex), nil
	}

	v, err := toValue(e.Scheduler.Result(futs[chosen].TaskID))
	if err != nil {
		return nil, err
	}
	if isError(v) {
		return errVal(ierr.DomainError, "select: task %s failed: %s", futs[chosen].TaskID, v.(*value.Error).Err.Message), nil
	}
	return wrapIndexed(v, chosen, returnIndex), nil
}

// evalRace handles race(tasks[]) (§4.4): evaluate every task
// concurrently (as scheduler tasks, so they truly interleave rather
// than running one at a time), return the first to complete. Losing
// tasks are left to run to completion in the background rather than
// cancelled — the specification describes racing for the result, not
// cancellation of the losers.
func (e *Evaluator) evalRace(expr document.Expr, sc *env.Environment) (value.Value, error) {
	tasks := expr.Args("tasks")
	ids := make([]string, len(tasks))
	for i, a := range tasks {
		a := a
		ids[i] = uuid.NewString()
		e.Scheduler.Spawn(ids[i], func() (interface{}, error) {
			return e.EvalArg(a, sc)
		})
	}

	done := make([]<-chan struct{}, len(ids))
	for i, id := range ids {
		done[i] = e.Scheduler.Done(id)
	}

	chosen := raceSelect(e.Scheduler.GIL(), done, nil)

	v, err := toValue(e.Scheduler.Result(ids[chosen]))
	if err != nil {
		return nil, err
	}
	return v, nil
}
