package value

import (
	"testing"

	"github.com/go-air/airvm/internal/ierr"
)

func TestPrimitiveEquality(t *testing.T) {
	if !Equal(Int(42), Int(42)) {
		t.Fatal("expected Int(42) == Int(42)")
	}
	if Equal(Int(42), Float(42)) {
		t.Fatal("Int and Float should not be equal under strict kind comparison")
	}
	if Equal(Str("a"), Str("b")) {
		t.Fatal("unexpectedly equal strings")
	}
}

func TestHashRoundTripPrimitives(t *testing.T) {
	cases := []Value{Int(7), Bool(true), Bool(false), Float(3.5), Str("hi")}
	for _, v := range cases {
		got, err := DecodePrimitiveHash(v.Hash())
		if err != nil {
			t.Fatalf("decode %q: %v", v.Hash(), err)
		}
		if !Equal(got, v) {
			t.Fatalf("round trip mismatch: %v vs %v", got, v)
		}
	}
}

func TestSetDeduplicatesByHash(t *testing.T) {
	s := NewSet(Int(1), Int(2), Int(1))
	if s.Len() != 2 {
		t.Fatalf("expected 2 distinct elements, got %d", s.Len())
	}
	if !s.Has(Int(2)) {
		t.Fatal("expected set to contain Int(2)")
	}
}

func TestMapGetSet(t *testing.T) {
	m := NewMap()
	m.Set(Str("k"), Int(1))
	v, ok := m.Get(Str("k"))
	if !ok || !Equal(v, Int(1)) {
		t.Fatalf("expected map lookup to find Int(1), got %v, %v", v, ok)
	}
	if _, ok := m.Get(Str("missing")); ok {
		t.Fatal("expected missing key to be absent")
	}
}

func TestListEquality(t *testing.T) {
	a := NewList(Int(1), Int(2))
	b := NewList(Int(1), Int(2))
	c := NewList(Int(1), Int(3))
	if !Equal(a, b) {
		t.Fatal("expected equal lists to compare equal")
	}
	if Equal(a, c) {
		t.Fatal("expected differing lists to compare unequal")
	}
}

func TestOptionEquality(t *testing.T) {
	if !Equal(None(), None()) {
		t.Fatal("expected none == none")
	}
	if !Equal(Some(Int(1)), Some(Int(1))) {
		t.Fatal("expected some(1) == some(1)")
	}
	if Equal(Some(Int(1)), None()) {
		t.Fatal("expected some(1) != none")
	}
}

func TestRefCellIdentity(t *testing.T) {
	a := NewRefCell(Int(1))
	b := NewRefCell(Int(1))
	if Equal(a, b) {
		t.Fatal("distinct ref-cells with equal contents must not be equal")
	}
	if !Equal(a, a) {
		t.Fatal("a ref-cell must equal itself")
	}
}

func TestErrorValueEquality(t *testing.T) {
	a := NewError(ierr.New(ierr.TypeError, "boom"))
	b := NewError(ierr.New(ierr.TypeError, "boom"))
	c := NewError(ierr.New(ierr.DomainError, "boom"))
	if !Equal(a, b) {
		t.Fatal("expected errors with same code+message to be equal")
	}
	if Equal(a, c) {
		t.Fatal("expected errors with differing codes to be unequal")
	}
}
