package value

import (
	"sort"
	"strings"
)

// List is an ordered sequence; insertion order is significant.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List { return &List{Items: items} }

func (l *List) Kind() Kind     { return KindList }
func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Hash() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = v.Hash()
	}
	return "l:[" + strings.Join(parts, ",") + "]"
}

func (l *List) Equals(other Value) (bool, error) {
	o, ok := other.(*List)
	if !ok || len(o.Items) != len(l.Items) {
		return false, nil
	}
	for i, v := range l.Items {
		eq, err := v.Equals(o.Items[i])
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// Set stores content-hashes so equal values collide, keyed by Hash().
type Set struct {
	entries map[string]Value
}

func NewSet(items ...Value) *Set {
	s := &Set{entries: make(map[string]Value, len(items))}
	for _, v := range items {
		s.Add(v)
	}
	return s
}

func (s *Set) Add(v Value) { s.entries[v.Hash()] = v }

func (s *Set) Has(v Value) bool {
	_, ok := s.entries[v.Hash()]
	return ok
}

// Hashes returns the set's element hashes, sorted for determinism.
func (s *Set) Hashes() []string {
	hs := make([]string, 0, len(s.entries))
	for h := range s.entries {
		hs = append(hs, h)
	}
	sort.Strings(hs)
	return hs
}

// Values returns the set's elements in hash-sorted order.
func (s *Set) Values() []Value {
	hs := s.Hashes()
	out := make([]Value, len(hs))
	for i, h := range hs {
		out[i] = s.entries[h]
	}
	return out
}

func (s *Set) Len() int { return len(s.entries) }

func (s *Set) Kind() Kind { return KindSet }

func (s *Set) String() string {
	parts := make([]string, 0, len(s.entries))
	for _, h := range s.Hashes() {
		parts = append(parts, s.entries[h].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Set) Hash() string {
	return "t:{" + strings.Join(s.Hashes(), ",") + "}"
}

func (s *Set) Equals(other Value) (bool, error) {
	o, ok := other.(*Set)
	if !ok || len(o.entries) != len(s.entries) {
		return false, nil
	}
	for h := range s.entries {
		if _, ok := o.entries[h]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// MapEntry is a single key/value pair retained alongside its key hash so
// the original (typed) key can be recovered.
type MapEntry struct {
	Key Value
	Val Value
}

// Map maps key-hash to value; ordering is irrelevant.
type Map struct {
	entries map[string]MapEntry
}

func NewMap() *Map { return &Map{entries: make(map[string]MapEntry)} }

func (m *Map) Set(key, val Value) { m.entries[key.Hash()] = MapEntry{Key: key, Val: val} }

func (m *Map) Get(key Value) (Value, bool) {
	e, ok := m.entries[key.Hash()]
	if !ok {
		return nil, false
	}
	return e.Val, true
}

func (m *Map) Delete(key Value) { delete(m.entries, key.Hash()) }

func (m *Map) Len() int { return len(m.entries) }

// Entries returns the map's entries in key-hash-sorted order.
func (m *Map) Entries() []MapEntry {
	hs := make([]string, 0, len(m.entries))
	for h := range m.entries {
		hs = append(hs, h)
	}
	sort.Strings(hs)
	out := make([]MapEntry, len(hs))
	for i, h := range hs {
		out[i] = m.entries[h]
	}
	return out
}

func (m *Map) Kind() Kind { return KindMap }

func (m *Map) String() string {
	parts := make([]string, 0, len(m.entries))
	for _, e := range m.Entries() {
		parts = append(parts, e.Key.String()+": "+e.Val.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Map) Hash() string {
	entries := m.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Key.Hash() + "=" + e.Val.Hash()
	}
	return "m:{" + strings.Join(parts, ",") + "}"
}

func (m *Map) Equals(other Value) (bool, error) {
	o, ok := other.(*Map)
	if !ok || len(o.entries) != len(m.entries) {
		return false, nil
	}
	for h, e := range m.entries {
		oe, ok := o.entries[h]
		if !ok {
			return false, nil
		}
		eq, err := e.Val.Equals(oe.Val)
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// Option is either none or some(V).
type Option struct {
	Some bool
	Val  Value
}

func None() *Option          { return &Option{} }
func Some(v Value) *Option   { return &Option{Some: true, Val: v} }

func (o *Option) Kind() Kind { return KindOption }

func (o *Option) String() string {
	if !o.Some {
		return "none"
	}
	return "some(" + o.Val.String() + ")"
}

func (o *Option) Hash() string {
	if !o.Some {
		return "o:none"
	}
	return "o:some(" + o.Val.Hash() + ")"
}

func (o *Option) Equals(other Value) (bool, error) {
	oo, ok := other.(*Option)
	if !ok || oo.Some != o.Some {
		return false, nil
	}
	if !o.Some {
		return true, nil
	}
	return o.Val.Equals(oo.Val)
}
