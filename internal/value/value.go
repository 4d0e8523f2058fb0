// Package value implements the tagged value algebra shared by every IR
// evaluator (§3.1 of the language model): primitives, collections,
// closures, ref-cells, errors, futures, channels and select-results, all
// under a single Value interface with structural equality and a
// content-hashable representation for set/map keys.
package value

import "fmt"

// Kind identifies the tagged variant of a Value, mirroring the grammar's
// value algebra one-to-one.
type Kind string

const (
	KindVoid         Kind = "void"
	KindBool         Kind = "bool"
	KindInt          Kind = "int"
	KindFloat        Kind = "float"
	KindString       Kind = "string"
	KindList         Kind = "list"
	KindSet          Kind = "set"
	KindMap          Kind = "map"
	KindOption       Kind = "option"
	KindOpaque       Kind = "opaque"
	KindClosure      Kind = "closure"
	KindRefCell      Kind = "refCell"
	KindError        Kind = "error"
	KindFuture       Kind = "future"
	KindChannel      Kind = "channel"
	KindSelectResult Kind = "selectResult"
	KindUndefined    Kind = "undefined"
)

// Value is the common interface every tagged variant implements.
type Value interface {
	// Kind reports the tagged variant.
	Kind() Kind
	// String renders a debug/display form; it is not used for hashing.
	String() string
	// Equals implements structural equality. A (false, err) result is
	// reserved for comparisons that are themselves malformed; kind
	// mismatches simply return (false, nil).
	Equals(other Value) (bool, error)
	// Hash returns a content-hash string that encodes kind and payload,
	// so that two values considered equal always collide. Used as the
	// storage key for set<V> and map<V,V>.
	Hash() string
}

// Env is the minimal environment surface a closure needs to close over.
// It is declared here (rather than imported from package env) so that
// value and env can depend on each other without a cycle: env.Environment
// implements this interface.
type Env interface {
	Lookup(name string) (Value, bool)
	Extend(bindings map[string]Value) Env
}

// Equal is a convenience wrapper returning false on error, for callers
// that only care about the boolean (e.g. membership tests).
func Equal(a, b Value) bool {
	ok, err := a.Equals(b)
	return err == nil && ok
}

// typeMismatch is a small helper used by Equals implementations that
// want to report malformed comparisons rather than silently returning
// false (kept for symmetry with the teacher's NumericValue comparisons;
// nothing in this package calls it at present).
func typeMismatch(a, b Value) error {
	return fmt.Errorf("cannot compare %s with %s", a.Kind(), b.Kind())
}
