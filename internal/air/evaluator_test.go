package air

import (
	"testing"

	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

func arithmeticOps() *registry.Operators {
	ops := registry.NewOperators()
	ops.Register(registry.Operator{NS: "core", Name: "add", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		return value.Int(int64(a[0].(value.Int)) + int64(a[1].(value.Int))), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "sub", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		return value.Int(int64(a[0].(value.Int)) - int64(a[1].(value.Int))), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "mul", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		return value.Int(int64(a[0].(value.Int)) * int64(a[1].(value.Int))), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "eq", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		return value.Bool(a[0].(value.Int) == a[1].(value.Int)), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "div", Arity: 2, Pure: true, Fn: func(a []value.Value) (value.Value, error) {
		denom := int64(a[1].(value.Int))
		if denom == 0 {
			return nil, ierr.New(ierr.DivideByZero, "division by zero")
		}
		return value.Int(int64(a[0].(value.Int)) / denom), nil
	}})
	return ops
}

func evalResult(t *testing.T, doc *document.Document, ops registry.OperatorRegistry) value.Value {
	t.Helper()
	e := New(doc, env.NewDefinitions(doc.AirDefs), ops, nil)
	v, err := e.ResolveRef(doc.Result, env.New())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return v
}

func TestArithmeticChain(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "1.0.0",
		"nodes": [
			{"id": "a", "expr": {"kind": "lit", "type": "int", "value": 10}},
			{"id": "b", "expr": {"kind": "lit", "type": "int", "value": 32}},
			{"id": "sum", "expr": {"kind": "call", "ns": "core", "name": "add", "args": ["a", "b"]}}
		],
		"result": "sum"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := evalResult(t, doc, arithmeticOps())
	if got != value.Int(42) {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestLetBoundVariableViaClosure(t *testing.T) {
	// let x = 5 in (lambda y. x + y) 3  =>  8
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [
			{"id": "result", "expr": {
				"kind": "let", "name": "x",
				"value": {"kind": "lit", "type": "int", "value": 5},
				"body": {
					"kind": "callExpr",
					"fn": {"kind": "lambda", "params": [{"name": "y"}], "body": {
						"kind": "call", "ns": "core", "name": "add",
						"args": [{"kind": "var", "name": "x"}, {"kind": "var", "name": "y"}]
					}},
					"args": [{"kind": "lit", "type": "int", "value": 3}]
				}
			}}
		],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := evalResult(t, doc, arithmeticOps())
	if got != value.Int(8) {
		t.Fatalf("expected 8, got %v", got)
	}
}

func TestFixFactorial(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "2.0.0",
		"nodes": [
			{"id": "result", "expr": {
				"kind": "callExpr",
				"fn": {
					"kind": "fix",
					"fn": {"kind": "lambda", "params": [{"name": "rec"}], "body": {
						"kind": "lambda", "params": [{"name": "n"}], "body": {
							"kind": "if",
							"cond": {"kind": "call", "ns": "core", "name": "eq", "args": [
								{"kind": "var", "name": "n"}, {"kind": "lit", "type": "int", "value": 0}
							]},
							"then": {"kind": "lit", "type": "int", "value": 1},
							"else": {"kind": "call", "ns": "core", "name": "mul", "args": [
								{"kind": "var", "name": "n"},
								{"kind": "callExpr", "fn": {"kind": "var", "name": "rec"}, "args": [
									{"kind": "call", "ns": "core", "name": "sub", "args": [
										{"kind": "var", "name": "n"}, {"kind": "lit", "type": "int", "value": 1}
									]}
								]}
							]}
						}
					}}
				},
				"args": [{"kind": "lit", "type": "int", "value": 5}]
			}}
		],
		"result": "result"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := evalResult(t, doc, arithmeticOps())
	if got != value.Int(120) {
		t.Fatalf("expected 120, got %v", got)
	}
}

func TestUnboundIdentifier(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "1.0.0",
		"nodes": [{"id": "r", "expr": {"kind": "var", "name": "nope"}}],
		"result": "r"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := evalResult(t, doc, arithmeticOps())
	ev, ok := value.IsError(got)
	if !ok {
		t.Fatalf("expected an error value, got %v", got)
	}
	if ev.Err.Code != ierr.UnboundIdentifier {
		t.Fatalf("unexpected code: %v", ev.Err.Code)
	}
}

func TestDivideByZeroKeepsDivideByZeroCode(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "1.0.0",
		"nodes": [{"id": "r", "expr": {"kind": "call", "ns": "core", "name": "div", "args": [
			{"kind": "lit", "type": "int", "value": 1}, {"kind": "lit", "type": "int", "value": 0}
		]}}],
		"result": "r"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := evalResult(t, doc, arithmeticOps())
	ev, ok := value.IsError(got)
	if !ok {
		t.Fatalf("expected an error value, got %v", got)
	}
	if ev.Err.Code != ierr.DivideByZero {
		t.Fatalf("unexpected code: %v", ev.Err.Code)
	}
}

func TestIfRequiresBool(t *testing.T) {
	doc, err := document.Parse([]byte(`{
		"version": "1.0.0",
		"nodes": [{"id": "r", "expr": {
			"kind": "if",
			"cond": {"kind": "lit", "type": "int", "value": 1},
			"then": {"kind": "lit", "type": "int", "value": 1},
			"else": {"kind": "lit", "type": "int", "value": 2}
		}}],
		"result": "r"
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := evalResult(t, doc, arithmeticOps())
	if _, ok := value.IsError(got); !ok {
		t.Fatalf("expected a TypeError value, got %v", got)
	}
}
