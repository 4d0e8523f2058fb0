package registry

import (
	"testing"

	"github.com/go-air/airvm/internal/value"
)

func TestOperatorsRegisterAndLookup(t *testing.T) {
	ops := NewOperators()
	ops.Register(Operator{NS: "core", Name: "add", Arity: 2, Pure: true, Fn: func(args []value.Value) (value.Value, error) {
		return value.Int(int64(args[0].(value.Int)) + int64(args[1].(value.Int))), nil
	}})

	op, ok := ops.LookupOperator("core", "add")
	if !ok {
		t.Fatal("expected core.add to be registered")
	}
	result, err := op.Fn([]value.Value{value.Int(10), value.Int(32)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != value.Int(42) {
		t.Fatalf("expected 42, got %v", result)
	}

	if _, ok := ops.LookupOperator("core", "missing"); ok {
		t.Fatal("unexpected match for unregistered operator")
	}
}

func TestEffectsRegisterAndLookup(t *testing.T) {
	effs := NewEffects()
	var logged []string
	effs.Register(Effect{Name: "print", Arity: 1, Fn: func(args []value.Value) (value.Value, error) {
		logged = append(logged, args[0].String())
		return value.Void{}, nil
	}})

	eff, ok := effs.LookupEffect("print")
	if !ok {
		t.Fatal("expected print effect to be registered")
	}
	if _, err := eff.Fn([]value.Value{value.Str("hi")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logged) != 1 || logged[0] != "hi" {
		t.Fatalf("unexpected log: %v", logged)
	}
}

func TestCheckArity(t *testing.T) {
	if err := CheckArity("core.add", 2, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := CheckArity("core.add", 2, 1); err == nil {
		t.Fatal("expected arity mismatch error")
	}
	if err := CheckArity("core.variadic", -1, 5); err != nil {
		t.Fatalf("expected variadic arity to accept any count, got %v", err)
	}
}
