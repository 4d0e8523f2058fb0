package scheduler

import (
	"fmt"
	"sync"
)

// chanEntry owns one channel's queue. A Go channel is the queue itself:
// capacity 0 gives the exact rendezvous semantics §4.5 asks for (send
// blocks until a matching recv arrives), and capacity>0 gives bounded
// buffering — both for free from the language, with no separate
// condition-variable bookkeeping to get wrong.
type chanEntry struct {
	id       string
	typ      string
	capacity int
	queue    chan interface{}
}

// ChannelStore owns every channel created by a document's channel(...)
// expressions, keyed by id (§4.5 "Channel store").
type ChannelStore struct {
	mu       sync.Mutex
	gil      *sync.Mutex
	channels map[string]*chanEntry
	seq      int
}

// NewChannelStore creates a store whose blocking operations release gil
// while suspended, the same cooperative-yield discipline Scheduler.Await
// uses. Pass the same *sync.Mutex returned by a Scheduler's GIL method so
// channel operations and task awaits share one cooperative token.
func NewChannelStore(gil *sync.Mutex) *ChannelStore {
	return &ChannelStore{channels: make(map[string]*chanEntry), gil: gil}
}

// Create allocates a new channel of the given type and capacity (0 =
// unbuffered/rendezvous).
func (cs *ChannelStore) Create(typ string, capacity int) string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.seq++
	id := fmt.Sprintf("chan%d", cs.seq)
	cs.channels[id] = &chanEntry{id: id, typ: typ, capacity: capacity, queue: make(chan interface{}, capacity)}
	return id
}

func (cs *ChannelStore) lookup(id string) (*chanEntry, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	e, ok := cs.channels[id]
	return e, ok
}

// Send is fire-and-forget (§4.4): it returns as soon as the transfer is
// initiated, never suspending the caller. The actual handoff — which, for
// a zero-capacity channel, cannot complete before a matching Recv begins
// — happens on a background goroutine that holds no GIL token, since it
// represents the channel's own machinery rather than a task's user code.
func (cs *ChannelStore) Send(id string, v interface{}) error {
	e, ok := cs.lookup(id)
	if !ok {
		return fmt.Errorf("scheduler: unknown channel %q", id)
	}
	go func() { e.queue <- v }()
	return nil
}

// Recv blocks until a value is available, releasing the GIL for the
// duration so other tasks can run (§5 "Suspension points").
func (cs *ChannelStore) Recv(id string) (interface{}, error) {
	e, ok := cs.lookup(id)
	if !ok {
		return nil, fmt.Errorf("scheduler: unknown channel %q", id)
	}
	if cs.gil != nil {
		cs.gil.Unlock()
		defer cs.gil.Lock()
	}
	v := <-e.queue
	return v, nil
}
