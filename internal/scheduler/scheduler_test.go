package scheduler

import (
	"testing"
	"time"

	"github.com/go-air/airvm/internal/ierr"
)

func TestDefaultSpawnAwaitReturnsCachedValue(t *testing.T) {
	s := New(nil)
	s.GIL().Lock()
	defer s.GIL().Unlock()

	s.Spawn("t1", func() (interface{}, error) { return 42, nil })

	v1, err := s.Await("t1")
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	v2, err := s.Await("t1")
	if err != nil {
		t.Fatalf("second await: %v", err)
	}
	if v1 != 42 || v2 != 42 {
		t.Fatalf("expected both awaits to return 42, got %v and %v", v1, v2)
	}
}

func TestCancelNeverStartedTaskIsComplete(t *testing.T) {
	s := New(&DeterministicSequential{})
	s.GIL().Lock()
	defer s.GIL().Unlock()

	s.Spawn("first", func() (interface{}, error) {
		time.Sleep(10 * time.Millisecond)
		return 1, nil
	})
	s.Spawn("second", func() (interface{}, error) { return 2, nil })

	s.Cancel("second")
	if !s.IsComplete("second") {
		t.Fatalf("expected cancelled never-started task to report complete")
	}
}

func TestCancelAlreadyStartedTaskIsComplete(t *testing.T) {
	s := New(nil) // Default: spawn starts eagerly
	s.GIL().Lock()
	defer s.GIL().Unlock()

	release := make(chan struct{})
	s.Spawn("t1", func() (interface{}, error) { <-release; return 1, nil })

	// t1 is started (the Default strategy starts it immediately), but its
	// goroutine is blocked acquiring the GIL we're holding, so it hasn't
	// run its computation yet.
	s.Cancel("t1")
	if !s.IsComplete("t1") {
		t.Fatalf("expected an already-started but cancelled task to report complete immediately")
	}

	close(release)
	if _, err := s.Await("t1"); err != nil {
		t.Fatalf("Await: %v", err)
	}
}

func TestDeterministicSequentialRunsInFIFOOrder(t *testing.T) {
	s := New(&DeterministicSequential{})
	s.GIL().Lock()
	defer s.GIL().Unlock()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		id := string(rune('a' + i))
		s.Spawn(id, func() (interface{}, error) {
			order = append(order, i)
			return i, nil
		})
	}
	s.Await("c")
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected FIFO order [0 1 2], got %v", order)
	}
}

func TestGlobalStepBudgetExhaustion(t *testing.T) {
	s := New(nil)
	s.SetStepBudget(3)
	for i := 0; i < 3; i++ {
		if err := s.CheckGlobalSteps(); err != nil {
			t.Fatalf("unexpected error at step %d: %v", i, err)
		}
	}
	err := s.CheckGlobalSteps()
	if err == nil {
		t.Fatalf("expected NonTermination error once budget is exceeded")
	}
	ee, ok := err.(*ierr.EvalError)
	if !ok || ee.Code != ierr.NonTermination {
		t.Fatalf("expected NonTermination EvalError, got %v", err)
	}
}

func TestChannelRendezvousUnbuffered(t *testing.T) {
	s := New(nil)
	gil := s.GIL()
	cs := NewChannelStore(gil)
	id := cs.Create("int", 0)

	gil.Lock()
	defer gil.Unlock()

	if err := cs.Send(id, 7); err != nil {
		t.Fatalf("send: %v", err)
	}
	v, err := cs.Recv(id)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if v != 7 {
		t.Fatalf("expected 7, got %v", v)
	}
}

func TestBarrierReleasesAllWaiters(t *testing.T) {
	b, err := NewBarrier(3)
	if err != nil {
		t.Fatalf("NewBarrier: %v", err)
	}
	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			b.Wait()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("barrier did not release all waiters")
		}
	}
}

func TestBarrierRejectsNonPositiveCount(t *testing.T) {
	if _, err := NewBarrier(0); err == nil {
		t.Fatalf("expected error for zero count")
	}
	if _, err := NewBarrier(-1); err == nil {
		t.Fatalf("expected error for negative count")
	}
}
