package env

import "github.com/go-air/airvm/internal/value"

// RefCellStore maps target identifiers to mutable ref-cells. Unlike
// Environment it is intentionally shared, mutable state: assignments,
// loop bodies and the async evaluator's tasks all need to observe each
// other's writes to the same cell (§3.2, §5 "shared-resource policy").
type RefCellStore struct {
	cells map[string]*value.RefCell
}

// NewRefCellStore creates an empty store.
func NewRefCellStore() *RefCellStore {
	return &RefCellStore{cells: make(map[string]*value.RefCell)}
}

// Get returns the cell bound to target, if any.
func (s *RefCellStore) Get(target string) (*value.RefCell, bool) {
	c, ok := s.cells[target]
	return c, ok
}

// Set stores v in target's cell, creating the cell on first write.
func (s *RefCellStore) Set(target string, v value.Value) {
	if c, ok := s.cells[target]; ok {
		c.Val = v
		return
	}
	s.cells[target] = value.NewRefCell(v)
}

// Bind installs an existing cell under target (used by refCell(target)
// to wrap a value already bound in the environment, §4.3).
func (s *RefCellStore) Bind(target string, cell *value.RefCell) {
	s.cells[target] = cell
}

// Has reports whether target has a cell.
func (s *RefCellStore) Has(target string) bool {
	_, ok := s.cells[target]
	return ok
}

// Delete removes target's cell, if present.
func (s *RefCellStore) Delete(target string) {
	delete(s.cells, target)
}
