package eir

import (
	"testing"

	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

func arithmeticAndEffectOps() (*registry.Operators, *registry.Effects) {
	ops := registry.NewOperators()
	ops.Register(registry.Operator{NS: "core", Name: "add", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		return value.Int(int64(a[0].(value.Int)) + int64(a[1].(value.Int))), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "lt", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		return value.Bool(int64(a[0].(value.Int)) < int64(a[1].(value.Int))), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "div", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		denom := int64(a[1].(value.Int))
		if denom == 0 {
			return nil, ierr.New(ierr.DivideByZero, "division by zero")
		}
		return value.Int(int64(a[0].(value.Int)) / denom), nil
	}})

	effects := registry.NewEffects()
	effects.Register(registry.Effect{Name: "log", Arity: -1, Fn: func(a []value.Value) (value.Value, error) {
		return value.Void{}, nil
	}})
	return ops, effects
}

func evalResult(t *testing.T, doc *document.Document, ops registry.OperatorRegistry, effects registry.EffectRegistry) (*Evaluator, value.Value) {
	t.Helper()
	cells := env.NewRefCellStore()
	e := New(doc, env.NewDefinitions(doc.AirDefs), ops, effects, cells)
	v, err := e.ResolveRef(doc.Result, env.New())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return e, v
}

func TestAssignIterSum(t *testing.T) {
	// assign(sum, 0); iter(i, [1,2,3,4,5], assign(sum, sum+i)); deref(sum) => 15
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [
			{"id": "init", "expr": {"kind": "assign", "target": "sum", "value": {"kind": "lit", "type": "int", "value": 0}}},
			{"id": "loop", "expr": {
				"kind": "seq", "first": "init",
				"then": {
					"kind": "iter", "var": "i",
					"iterable": {"kind": "lit", "type": "list", "value": [
						{"type": "int", "value": 1}, {"type": "int", "value": 2}, {"type": "int", "value": 3},
						{"type": "int", "value": 4}, {"type": "int", "value": 5}
					]},
					"body": {
						"kind": "assign", "target": "sum",
						"value": {"kind": "call", "ns": "core", "name": "add",
							"args": [{"kind": "var", "name": "sum"}, {"kind": "var", "name": "i"}]}
					}
				}
			}},
			{"id": "result", "expr": {
				"kind": "seq", "first": "loop", "then": {"kind": "deref", "target": "sum"}
			}}
		],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops, effects := arithmeticAndEffectOps()
	_, got := evalResult(t, doc, ops, effects)
	if got != value.Int(15) {
		t.Fatalf("expected 15, got %v", got)
	}
}

func TestTryCatchesDivideByZero(t *testing.T) {
	// try(1/0, e, 99) => 99
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [{"id": "result", "expr": {
			"kind": "try",
			"tryBody": {"kind": "call", "ns": "core", "name": "div", "args": [
				{"kind": "lit", "type": "int", "value": 1}, {"kind": "lit", "type": "int", "value": 0}
			]},
			"catchParam": "e",
			"catchBody": {"kind": "lit", "type": "int", "value": 99}
		}}],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops, effects := arithmeticAndEffectOps()
	_, got := evalResult(t, doc, ops, effects)
	if got != value.Int(99) {
		t.Fatalf("expected 99, got %v", got)
	}
}

func TestTrySuccessfulWithFallback(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [{"id": "result", "expr": {
			"kind": "try",
			"tryBody": {"kind": "lit", "type": "int", "value": 7},
			"catchParam": "e",
			"catchBody": {"kind": "lit", "type": "int", "value": -1},
			"fallback": {"kind": "lit", "type": "int", "value": 42}
		}}],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops, effects := arithmeticAndEffectOps()
	_, got := evalResult(t, doc, ops, effects)
	if got != value.Int(42) {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestWhileLoop(t *testing.T) {
	// assign(n, 0); while(n<5, assign(n, n+1)); deref(n) => 5
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [
			{"id": "init", "expr": {"kind": "assign", "target": "n", "value": {"kind": "lit", "type": "int", "value": 0}}},
			{"id": "loop", "expr": {
				"kind": "seq", "first": "init",
				"then": {
					"kind": "while",
					"cond": {"kind": "call", "ns": "core", "name": "lt", "args": [
						{"kind": "var", "name": "n"}, {"kind": "lit", "type": "int", "value": 5}
					]},
					"body": {
						"kind": "assign", "target": "n",
						"value": {"kind": "call", "ns": "core", "name": "add", "args": [
							{"kind": "var", "name": "n"}, {"kind": "lit", "type": "int", "value": 1}
						]}
					}
				}
			}},
			{"id": "result", "expr": {"kind": "seq", "first": "loop", "then": {"kind": "deref", "target": "n"}}}
		],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops, effects := arithmeticAndEffectOps()
	_, got := evalResult(t, doc, ops, effects)
	if got != value.Int(5) {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestEffectLogRecordsInvocation(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [{"id": "result", "expr": {
			"kind": "effect", "op": "log", "args": [{"kind": "lit", "type": "string", "value": "hi"}]
		}}],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops, effects := arithmeticAndEffectOps()
	e, got := evalResult(t, doc, ops, effects)
	if got != (value.Void{}) {
		t.Fatalf("expected void, got %v", got)
	}
	if len(e.EffectLog) != 1 || e.EffectLog[0].Name != "log" {
		t.Fatalf("expected one logged effect named log, got %+v", e.EffectLog)
	}
}

func TestRefCellExplicitAlias(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [
			{"id": "x", "expr": {"kind": "let", "name": "x", "value": {"kind": "lit", "type": "int", "value": 3},
				"body": {"kind": "refCell", "target": "x"}}}
		],
		"result": "x"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ops, effects := arithmeticAndEffectOps()
	_, got := evalResult(t, doc, ops, effects)
	cell, ok := got.(*value.RefCell)
	if !ok {
		t.Fatalf("expected a ref-cell, got %v", got)
	}
	if cell.Val != value.Int(3) {
		t.Fatalf("expected ref-cell holding 3, got %v", cell.Val)
	}
}
