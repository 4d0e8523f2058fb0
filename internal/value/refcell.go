package value

import "fmt"

// RefCell is a mutable, identity-distinct slot. Two RefCells are never
// structurally equal to one another even if their contents match —
// identity is what distinguishes a ref-cell from a plain value.
type RefCell struct {
	Val Value
}

func NewRefCell(v Value) *RefCell { return &RefCell{Val: v} }

func (c *RefCell) Kind() Kind      { return KindRefCell }
func (c *RefCell) String() string  { return fmt.Sprintf("ref(%s)", c.Val.String()) }
func (c *RefCell) Hash() string    { return fmt.Sprintf("r:%p", c) }
func (c *RefCell) Equals(other Value) (bool, error) {
	o, ok := other.(*RefCell)
	return ok && o == c, nil
}

// Opaque is a named, uninterpreted payload supplied by an external
// collaborator (operator/effect registry). Equality is by identity.
type Opaque struct {
	Name    string
	Payload interface{}
}

func NewOpaque(name string, payload interface{}) *Opaque {
	return &Opaque{Name: name, Payload: payload}
}

func (o *Opaque) Kind() Kind     { return KindOpaque }
func (o *Opaque) String() string { return fmt.Sprintf("opaque(%s)", o.Name) }
func (o *Opaque) Hash() string   { return fmt.Sprintf("p:%s#%p", o.Name, o) }
func (o *Opaque) Equals(other Value) (bool, error) {
	oo, ok := other.(*Opaque)
	return ok && oo == o, nil
}
