// Package env implements the immutable name→value environment, the
// ref-cell store, and the named-procedure definitions table (§3.2).
//
// The environment is a persistent cons-chain of scopes: Extend never
// mutates its receiver, it returns a new *Environment with a fresh
// bindings frame linked to the parent. This matches the teacher's scope
// chain for nested lookup. Every extension is a new environment; the
// only in-place writes are AssignExisting and DefineHere below, which
// EIR's assign uses to update the frame that defines its target.
package env

import "github.com/go-air/airvm/internal/value"

// Environment is one frame of the persistent scope chain.
type Environment struct {
	bindings map[string]value.Value
	parent   *Environment
}

// New creates an empty root environment.
func New() *Environment {
	return &Environment{bindings: map[string]value.Value{}}
}

// Extend returns a new environment with bindings layered on top of e.
// e itself is never modified, satisfying the "no aliasing" invariant.
func (e *Environment) Extend(bindings map[string]value.Value) value.Env {
	frame := make(map[string]value.Value, len(bindings))
	for k, v := range bindings {
		frame[k] = v
	}
	return &Environment{bindings: frame, parent: e}
}

// ExtendEnv is Extend with the concrete *Environment return type, for
// callers within this module that need further Environment-specific
// operations (With1, Has) rather than the narrower value.Env interface.
func (e *Environment) ExtendEnv(bindings map[string]value.Value) *Environment {
	frame := make(map[string]value.Value, len(bindings))
	for k, v := range bindings {
		frame[k] = v
	}
	return &Environment{bindings: frame, parent: e}
}

// With1 is a convenience for the very common case of binding a single
// name (let, for-loop variable, iter variable).
func (e *Environment) With1(name string, v value.Value) *Environment {
	return &Environment{bindings: map[string]value.Value{name: v}, parent: e}
}

// Lookup searches this frame, then each parent frame in turn.
func (e *Environment) Lookup(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// AssignExisting searches this frame then each parent frame for an
// existing binding of name and mutates it in place, returning true. It
// returns false if name is not bound anywhere in the chain.
//
// This is the one sanctioned escape from environment immutability: EIR's
// assign construct (§4.3) needs "subsequent reads see it" semantics for
// whichever frame already defines the target, while every other
// extension (let, closure application, loop variables) still creates a
// brand-new frame via Extend/With1/ExtendEnv and never mutates an
// ancestor. Modeled on the teacher's Environment.Set, which walks the
// scope chain to find where a variable is defined before updating it.
func (e *Environment) AssignExisting(name string, v value.Value) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.bindings[name]; ok {
			cur.bindings[name] = v
			return true
		}
	}
	return false
}

// DefineHere binds name in this exact frame, creating or overwriting
// the entry. Used by assign on first write, when no enclosing frame
// already defines the target.
func (e *Environment) DefineHere(name string, v value.Value) {
	e.bindings[name] = v
}

var _ value.Env = (*Environment)(nil)
