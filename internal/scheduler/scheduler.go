// Package scheduler implements the cooperative task scheduler (§4.5): task
// registration, await/cancel/completion queries, a global step counter
// (CheckGlobalSteps) that reports NonTermination once its budget is
// exceeded (the evaluators in this module do not call it, so the budget
// bounds only code that calls CheckGlobalSteps itself), a
// pluggable Strategy controlling when queued tasks actually start, a
// channel store (§4.4/§4.5) and a Barrier primitive.
//
// "Cooperative single-threaded" (§5) is expressed here with real
// goroutines rather than a hand-rolled green-thread loop — idiomatic Go
// already treats goroutines plus blocking channel operations as its
// native cooperative scheduling unit. What the specification actually
// requires is that at most one task's user-level code ever runs at once
// and that suspension only happens at well-defined points (await, recv,
// timers; a send never suspends its caller). Both are enforced with a single shared
// token mutex (GIL) that every task holds while running and releases
// exactly at those suspension points; see Await and the companion
// ChannelStore in channels.go.
//
// Grounded on dshills-langgraph-go/graph/scheduler.go for the general
// shape of a scheduler owning a work set plus metrics-friendly counters,
// adapted from its concurrent-graph-node model to this specification's
// single-task-handle model (no frontier heap is needed here: ordering
// between tasks is governed by Strategy, not by a deterministic
// hash-based OrderKey, since §5 only asks for "lower-indexed task wins"
// tie-breaking under the deterministic strategies).
package scheduler

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-air/airvm/internal/ierr"
)

// DefaultGlobalStepBudget is the scheduler-enforced step budget (§5):
// distinct from eir's per-loop DefaultIterBudget and lir's per-node
// DefaultStepBudget, which bound a single evaluator's own walk. This one
// bounds the whole run, across every task sharing this Scheduler.
const DefaultGlobalStepBudget = 1000000

// DefaultYieldInterval is how often CheckGlobalSteps cooperatively yields
// the goroutine scheduler even when nothing is blocked on I/O.
const DefaultYieldInterval = 1000

// Task is a handle to one asynchronous computation.
type Task struct {
	ID         string
	order      int
	computation func() (interface{}, error)

	started   bool
	completed bool
	cancelled bool
	value     interface{}
	err       error
	done      chan struct{}
}

// Scheduler registers, starts and awaits tasks under a Strategy.
type Scheduler struct {
	mu       sync.Mutex
	gil      sync.Mutex
	tasks    map[string]*Task
	strategy Strategy
	seq      int
	active   int

	steps         int64
	stepBudget    int64
	yieldInterval int64

	metrics *Metrics // nil unless EnableMetrics was called
}

// New creates a Scheduler using strategy (nil means Default/eager).
func New(strategy Strategy) *Scheduler {
	if strategy == nil {
		strategy = Default{}
	}
	return &Scheduler{
		tasks:         make(map[string]*Task),
		strategy:      strategy,
		stepBudget:    DefaultGlobalStepBudget,
		yieldInterval: DefaultYieldInterval,
	}
}

// NewTaskID returns a scheduler-local, never-reused task id, for
// callers (fork branches without an explicit taskId in the document)
// that need one without depending on a uuid generator of their own.
func (s *Scheduler) NewTaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("task%d", s.seq)
}

// SetStepBudget overrides the global step budget; n<=0 resets to default.
func (s *Scheduler) SetStepBudget(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		s.stepBudget = DefaultGlobalStepBudget
		return
	}
	s.stepBudget = int64(n)
}

// GIL is the cooperative-execution token: exactly one goroutine running
// task user-code holds it at a time. Task computations registered via
// Spawn run with it held, and release it (via ChannelStore.Recv or
// Await) at their suspension points. Callers driving a document
// from outside any task (the initial, non-spawned evaluation) must also
// hold it for the duration of their own run — see pir.Evaluator.RunTop.
func (s *Scheduler) GIL() *sync.Mutex { return &s.gil }

// Spawn registers id with computation and asks the strategy whether it
// should start now (§4.5 "registers and starts ... immediately (eager)"
// for the Default strategy; the deterministic strategies may queue it).
func (s *Scheduler) Spawn(id string, computation func() (interface{}, error)) *Task {
	s.mu.Lock()
	t := &Task{ID: id, order: s.seq, computation: computation, done: make(chan struct{})}
	s.seq++
	s.tasks[id] = t
	toStart := s.strategy.OnSpawn(s, t)
	s.mu.Unlock()

	for _, st := range toStart {
		s.launch(st)
	}
	return t
}

func (s *Scheduler) launch(t *Task) {
	s.mu.Lock()
	if t.started || t.cancelled {
		s.mu.Unlock()
		return
	}
	t.started = true
	s.active++
	s.metrics.setTaskCount(s.active)
	s.mu.Unlock()

	go func() {
		s.gil.Lock()
		v, err := t.computation()
		s.gil.Unlock()

		s.mu.Lock()
		t.value, t.err = v, err
		t.completed = true
		s.active--
		s.metrics.setTaskCount(s.active)
		close(t.done)
		toStart := s.strategy.OnComplete(s, t)
		s.mu.Unlock()

		for _, st := range toStart {
			s.launch(st)
		}
	}()
}

// EnsureStarted asks the strategy to start id if it is registered but
// has not begun running yet — the non-blocking half of Await, exposed
// separately so a caller waiting on several tasks at once (select,
// race, par) can kick them all off before racing their completions
// itself (see Done/Result).
func (s *Scheduler) EnsureStarted(id string) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok || t.completed || t.started || t.cancelled {
		s.mu.Unlock()
		return
	}
	toStart := s.strategy.OnAwait(s, id)
	s.mu.Unlock()
	for _, st := range toStart {
		s.launch(st)
	}
}

// Done returns id's raw completion channel (closed once the task
// finishes), or nil if id is unknown. It never touches the GIL — a
// caller racing several tasks (reflect.Select over several Done
// channels, or an errgroup of goroutines each blocking on one) must
// release the GIL itself exactly once before waiting and reacquire it
// exactly once after, rather than letting each sibling goroutine do its
// own release/reacquire (which would race on the same mutex).
func (s *Scheduler) Done(id string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	return t.done
}

// Result returns id's completion value without blocking; call it only
// after Done's channel has closed.
func (s *Scheduler) Result(id string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("scheduler: unknown task %q", id)
	}
	return t.value, t.err
}

// Await returns id's completion value, starting it first if the strategy
// has been holding it queued. Blocking releases the GIL so other tasks
// (including the one that will complete id) can run; it is reacquired
// before returning, matching every other suspension point in this
// package. This is the single-future case; multi-future callers use
// EnsureStarted/Done/Result directly so only one GIL release/reacquire
// pair covers the whole wait (see the package doc and Done's comment).
func (s *Scheduler) Await(id string) (interface{}, error) {
	s.EnsureStarted(id)
	done := s.Done(id)
	if done == nil {
		return nil, fmt.Errorf("scheduler: unknown task %q", id)
	}
	select {
	case <-done:
	default:
		s.gil.Unlock()
		<-done
		s.gil.Lock()
	}
	return s.Result(id)
}

// Cancel removes a not-yet-started task from the ready set (§4.5); a
// completed task is left untouched since its result must stay
// observable, and a cancelled-but-never-started task is itself marked
// complete (with a DomainError result) so a stray Await does not block
// forever. A task that had already started keeps running to completion
// in the background (Cancel "does not interrupt a running
// continuation", §4.5) but is immediately treated as detached: see
// IsComplete, which reports true for any cancelled id whether or not
// the background goroutine has actually finished yet.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.completed {
		return
	}
	t.cancelled = true
	if !t.started {
		s.strategy.OnCancel(s, t)
		t.completed = true
		t.err = ierr.Newf(ierr.DomainError, "scheduler: task %q was cancelled before it started", id)
		close(t.done)
	}
}

// IsComplete reports whether id has finished (successfully, with an
// error, or via Cancel). Cancel does not interrupt a running
// continuation (§4.5), so a cancelled task that had already started may
// still be executing in the background when IsComplete is asked about
// it; it is reported complete regardless, since Cancel detaches id from
// the scheduler's bookkeeping the moment it is called.
func (s *Scheduler) IsComplete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return ok && (t.completed || t.cancelled)
}

// CheckGlobalSteps increments the scheduler-wide step counter (§4.5,
// §5); exceeding the budget is fatal (NonTermination). Every
// yield-interval steps it cooperatively yields the goroutine scheduler,
// the closest idiomatic analogue to the specification's explicit
// "yields every yield-interval steps".
func (s *Scheduler) CheckGlobalSteps() error {
	n := atomic.AddInt64(&s.steps, 1)
	s.mu.Lock()
	budget := s.stepBudget
	yield := s.yieldInterval
	s.metrics.setStepBudgetRemaining(budget - n)
	s.mu.Unlock()
	if n > budget {
		return ierr.Newf(ierr.NonTermination, "scheduler: global step budget of %d exceeded", budget)
	}
	if yield > 0 && n%yield == 0 {
		runtime.Gosched()
	}
	return nil
}

// Steps returns the current global step count, for tests and metrics.
func (s *Scheduler) Steps() int64 { return atomic.LoadInt64(&s.steps) }
