package value

import "fmt"

// FutureStatus is the lifecycle state of an async handle.
type FutureStatus string

const (
	FuturePending FutureStatus = "pending"
	FutureReady   FutureStatus = "ready"
	FutureError   FutureStatus = "error"
)

// Future is a handle to an asynchronously computed value, identified by
// a task id unique within the evaluation (§3.1, §4.4).
type Future struct {
	TaskID   string
	Status   FutureStatus
	Resolved Value // set once Status != pending
}

func (f *Future) Kind() Kind     { return KindFuture }
func (f *Future) String() string { return fmt.Sprintf("future(%s, %s)", f.TaskID, f.Status) }
func (f *Future) Hash() string   { return "fu:" + f.TaskID }
func (f *Future) Equals(other Value) (bool, error) {
	o, ok := other.(*Future)
	return ok && o.TaskID == f.TaskID, nil
}

// Channel is a typed communication handle; the store keyed by ID owns
// the actual queue (§4.5).
type Channel struct {
	ID   string
	Type string
}

func (c *Channel) Kind() Kind     { return KindChannel }
func (c *Channel) String() string { return fmt.Sprintf("channel(%s:%s)", c.ID, c.Type) }
func (c *Channel) Hash() string   { return "ch:" + c.ID }
func (c *Channel) Equals(other Value) (bool, error) {
	o, ok := other.(*Channel)
	return ok && o.ID == c.ID, nil
}

// SelectResult tags the winner of a select/await-with-timeout by index.
type SelectResult struct {
	Index int
	Val   Value
}

func (s *SelectResult) Kind() Kind     { return KindSelectResult }
func (s *SelectResult) String() string { return fmt.Sprintf("selectResult(%d, %s)", s.Index, s.Val.String()) }
func (s *SelectResult) Hash() string   { return fmt.Sprintf("sr:%d:%s", s.Index, s.Val.Hash()) }
func (s *SelectResult) Equals(other Value) (bool, error) {
	o, ok := other.(*SelectResult)
	if !ok || o.Index != s.Index {
		return false, nil
	}
	return s.Val.Equals(o.Val)
}
