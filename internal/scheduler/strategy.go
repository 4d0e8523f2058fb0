package scheduler

// Strategy decides when a registered-but-not-yet-running task actually
// starts (§4.5 "Strategies (plug-in)"). Every hook runs with s.mu held by
// the caller, so implementations must not call back into the Scheduler —
// they only inspect/mutate their own queue and return the tasks that
// should be launched; Scheduler.launch is always called by the caller,
// outside the lock.
type Strategy interface {
	// OnSpawn is called immediately after a new task is registered.
	OnSpawn(s *Scheduler, t *Task) []*Task
	// OnComplete is called after a task finishes.
	OnComplete(s *Scheduler, t *Task) []*Task
	// OnAwait is called when Await observes that id has not started yet.
	OnAwait(s *Scheduler, id string) []*Task
	// OnCancel is called when a not-yet-started task is cancelled, so the
	// strategy can drop it from whatever queue it was sitting in.
	OnCancel(s *Scheduler, t *Task)
}

// Default is the eager strategy (§4.5): every spawn starts running
// immediately; await simply attaches to the task's completion.
type Default struct{}

func (Default) OnSpawn(s *Scheduler, t *Task) []*Task    { return []*Task{t} }
func (Default) OnComplete(s *Scheduler, t *Task) []*Task { return nil }
func (Default) OnAwait(s *Scheduler, id string) []*Task  { return nil }
func (Default) OnCancel(s *Scheduler, t *Task)           {}

// fifoQueue is a small helper the deterministic strategies share: an
// order-preserving, remove-by-id slice of not-yet-started tasks.
type fifoQueue struct {
	items []*Task
}

func (q *fifoQueue) push(t *Task) { q.items = append(q.items, t) }

func (q *fifoQueue) popFront() *Task {
	if len(q.items) == 0 {
		return nil
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t
}

func (q *fifoQueue) popBack() *Task {
	if len(q.items) == 0 {
		return nil
	}
	n := len(q.items) - 1
	t := q.items[n]
	q.items = q.items[:n]
	return t
}

func (q *fifoQueue) drain() []*Task {
	out := q.items
	q.items = nil
	return out
}

func (q *fifoQueue) remove(t *Task) {
	for i, x := range q.items {
		if x == t {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// DeterministicSequential (§4.5 "sequential"): the first task starts on
// spawn; every later spawn queues, and awaits pull from the head of the
// queue in FIFO order as the active task completes.
type DeterministicSequential struct {
	q fifoQueue
}

func (d *DeterministicSequential) OnSpawn(s *Scheduler, t *Task) []*Task {
	if s.active == 0 {
		return []*Task{t}
	}
	d.q.push(t)
	return nil
}

func (d *DeterministicSequential) OnComplete(s *Scheduler, t *Task) []*Task {
	if next := d.q.popFront(); next != nil {
		return []*Task{next}
	}
	return nil
}

func (d *DeterministicSequential) OnAwait(s *Scheduler, id string) []*Task {
	if s.active > 0 {
		return nil
	}
	if next := d.q.popFront(); next != nil {
		return []*Task{next}
	}
	return nil
}

func (d *DeterministicSequential) OnCancel(s *Scheduler, t *Task) { d.q.remove(t) }

// DeterministicParallel (§4.5 "parallel"): spawns always queue; the
// first Await that needs a not-yet-started task starts every
// currently-queued task together.
type DeterministicParallel struct {
	q fifoQueue
}

func (d *DeterministicParallel) OnSpawn(s *Scheduler, t *Task) []*Task {
	d.q.push(t)
	return nil
}

func (d *DeterministicParallel) OnComplete(s *Scheduler, t *Task) []*Task { return nil }

func (d *DeterministicParallel) OnAwait(s *Scheduler, id string) []*Task {
	return d.q.drain()
}

func (d *DeterministicParallel) OnCancel(s *Scheduler, t *Task) { d.q.remove(t) }

// DeterministicBreadthFirst (§4.5 "breadth-first"): snapshot the queue on
// each batch, run all in parallel; spawns that happen while a batch is
// running form the next batch, triggered the same way once the current
// batch has fully drained (s.active returns to 0).
type DeterministicBreadthFirst struct {
	q fifoQueue
}

func (d *DeterministicBreadthFirst) OnSpawn(s *Scheduler, t *Task) []*Task {
	d.q.push(t)
	if s.active == 0 {
		return d.q.drain()
	}
	return nil
}

func (d *DeterministicBreadthFirst) OnComplete(s *Scheduler, t *Task) []*Task {
	if s.active == 0 {
		return d.q.drain()
	}
	return nil
}

func (d *DeterministicBreadthFirst) OnAwait(s *Scheduler, id string) []*Task {
	if s.active == 0 {
		return d.q.drain()
	}
	return nil
}

func (d *DeterministicBreadthFirst) OnCancel(s *Scheduler, t *Task) { d.q.remove(t) }

// DeterministicDepthFirst (§4.5 "depth-first"): LIFO — the most recently
// spawned task runs to completion before the next one starts.
type DeterministicDepthFirst struct {
	q fifoQueue
}

func (d *DeterministicDepthFirst) OnSpawn(s *Scheduler, t *Task) []*Task {
	if s.active == 0 {
		return []*Task{t}
	}
	d.q.push(t)
	return nil
}

func (d *DeterministicDepthFirst) OnComplete(s *Scheduler, t *Task) []*Task {
	if next := d.q.popBack(); next != nil {
		return []*Task{next}
	}
	return nil
}

func (d *DeterministicDepthFirst) OnAwait(s *Scheduler, id string) []*Task {
	if s.active > 0 {
		return nil
	}
	if next := d.q.popBack(); next != nil {
		return []*Task{next}
	}
	return nil
}

func (d *DeterministicDepthFirst) OnCancel(s *Scheduler, t *Task) { d.q.remove(t) }
