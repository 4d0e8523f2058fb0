package builtins

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
)

func op(t *testing.T, ops *registry.Operators, name string, args ...value.Value) value.Value {
	t.Helper()
	o, ok := ops.LookupOperator("core", name)
	if !ok {
		t.Fatalf("core.%s not registered", name)
	}
	v, err := o.Fn(args)
	if err != nil {
		t.Fatalf("core.%s: %v", name, err)
	}
	return v
}

func TestArithPromotesToFloatWhenEitherOperandIsFloat(t *testing.T) {
	ops := registry.NewOperators()
	RegisterCore(ops)

	if got := op(t, ops, "add", value.Int(2), value.Int(3)); got != value.Int(5) {
		t.Fatalf("expected Int 5, got %v (%T)", got, got)
	}
	if got := op(t, ops, "add", value.Int(2), value.Float(0.5)); got != value.Float(2.5) {
		t.Fatalf("expected Float 2.5, got %v (%T)", got, got)
	}
}

func TestDivByZeroReturnsAnError(t *testing.T) {
	ops := registry.NewOperators()
	RegisterCore(ops)
	o, _ := ops.LookupOperator("core", "div")
	if _, err := o.Fn([]value.Value{value.Int(1), value.Int(0)}); err == nil {
		t.Fatalf("expected an error dividing by zero")
	}
}

func TestComparisonOperators(t *testing.T) {
	ops := registry.NewOperators()
	RegisterCore(ops)

	if got := op(t, ops, "lt", value.Int(1), value.Int(2)); got != value.Bool(true) {
		t.Fatalf("expected 1 < 2 to be true, got %v", got)
	}
	if got := op(t, ops, "gte", value.Float(1.5), value.Float(1.5)); got != value.Bool(true) {
		t.Fatalf("expected 1.5 >= 1.5 to be true, got %v", got)
	}
}

func TestConcat(t *testing.T) {
	ops := registry.NewOperators()
	RegisterCore(ops)
	if got := op(t, ops, "concat", value.Str("foo"), value.Str("bar")); got != value.Str("foobar") {
		t.Fatalf("expected foobar, got %v", got)
	}
}

func TestPrintEffectWritesToOut(t *testing.T) {
	effs := registry.NewEffects()
	var out bytes.Buffer
	RegisterEffects(effs, &out, strings.NewReader(""))

	eff, ok := effs.LookupEffect("print")
	if !ok {
		t.Fatalf("print not registered")
	}
	if _, err := eff.Fn([]value.Value{value.Str("hello"), value.Int(42)}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if got := out.String(); got != "hello 42\n" {
		t.Fatalf("expected %q, got %q", "hello 42\n", got)
	}
}

func TestReadLineStripsNewline(t *testing.T) {
	effs := registry.NewEffects()
	RegisterEffects(effs, &bytes.Buffer{}, strings.NewReader("hi there\n"))

	eff, _ := effs.LookupEffect("readLine")
	v, err := eff.Fn(nil)
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if v != value.Str("hi there") {
		t.Fatalf("expected %q, got %v", "hi there", v)
	}
}
