package value

import (
	"fmt"

	"github.com/go-air/airvm/pkg/document"
)

// Param describes one formal parameter of a closure: a name, whether it
// is optional, and the expression to evaluate as its default when
// omitted (nil when omission simply binds Undefined).
type Param struct {
	Name     string
	Optional bool
	Default  *document.Expr
}

// Closure is a first-class function: formal parameters, a reference to
// its body (a node id or an inline expression), and the environment
// captured when it was created. Defaults evaluate in this captured
// (defining) environment, never the caller's — see §3.1.
type Closure struct {
	Params []Param
	Body   document.Arg
	Env    Env
}

func (c *Closure) Kind() Kind      { return KindClosure }
func (c *Closure) String() string  { return fmt.Sprintf("closure/%d", len(c.Params)) }
func (c *Closure) Hash() string    { return fmt.Sprintf("c:%p", c) }

// Equals for closures is identity: two closures are equal only if they
// are literally the same value, since structural comparison of captured
// environments is neither well-defined nor useful.
func (c *Closure) Equals(other Value) (bool, error) {
	o, ok := other.(*Closure)
	return ok && o == c, nil
}

// RequiredCount returns the number of non-optional parameters.
func (c *Closure) RequiredCount() int {
	n := 0
	for _, p := range c.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}
