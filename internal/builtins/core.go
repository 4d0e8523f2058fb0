// Package builtins supplies the "core" namespace operators and the
// standard effect set cmd/airvm registers before running a document.
// The core evaluators deliberately ship with none of this (§1's
// Non-goal: "domain-specific operator and effect implementations") —
// registry.Operators/Effects only provide the lookup mechanism for
// whoever embeds them. cmd/airvm is that embedder, so this package is
// its minimal standard library, grounded on the teacher's
// bytecode/vm_builtins*.go: one register function per category, each
// entry arity-checked the same way (vm.runtimeError-style messages,
// here via ierr.Newf) before doing the actual work.
package builtins

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
)

func typeErr(op string, args []value.Value) error {
	kinds := make([]string, len(args))
	for i, a := range args {
		kinds[i] = string(a.Kind())
	}
	return ierr.Newf(ierr.TypeError, "%s: unsupported operand kinds %v", op, kinds)
}

func numOf(v value.Value) (float64, bool, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true, true
	case value.Float:
		return float64(n), false, true
	default:
		return 0, false, false
	}
}

// arith applies a numeric binary op, preserving Int+Int -> Int and
// promoting to Float whenever either operand is a Float (§3's numeric
// tower is otherwise left to the embedding host — this is cmd/airvm's
// own choice of promotion rule, not a core-spec requirement).
func arith(name string, intOp func(a, b int64) (value.Value, error), floatOp func(a, b float64) value.Value) registry.Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, ierr.Newf(ierr.ArityError, "core.%s: expected 2 arguments, got %d", name, len(args))
		}
		a, aInt, aOK := numOf(args[0])
		b, bInt, bOK := numOf(args[1])
		if !aOK || !bOK {
			return nil, typeErr("core."+name, args)
		}
		if aInt && bInt {
			return intOp(int64(args[0].(value.Int)), int64(args[1].(value.Int)))
		}
		return floatOp(a, b), nil
	}
}

func cmp(name string, intOp func(a, b int64) bool, floatOp func(a, b float64) bool) registry.Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, ierr.Newf(ierr.ArityError, "core.%s: expected 2 arguments, got %d", name, len(args))
		}
		a, aInt, aOK := numOf(args[0])
		b, bInt, bOK := numOf(args[1])
		if !aOK || !bOK {
			return nil, typeErr("core."+name, args)
		}
		if aInt && bInt {
			return value.Bool(intOp(int64(args[0].(value.Int)), int64(args[1].(value.Int)))), nil
		}
		return value.Bool(floatOp(a, b)), nil
	}
}

// RegisterCore registers the "core" namespace arithmetic, comparison,
// boolean and string operators ops.
func RegisterCore(ops *registry.Operators) {
	ops.Register(registry.Operator{NS: "core", Name: "add", Arity: 2, Pure: true, Fn: arith("add",
		func(a, b int64) (value.Value, error) { return value.Int(a + b), nil },
		func(a, b float64) value.Value { return value.Float(a + b) })})
	ops.Register(registry.Operator{NS: "core", Name: "sub", Arity: 2, Pure: true, Fn: arith("sub",
		func(a, b int64) (value.Value, error) { return value.Int(a - b), nil },
		func(a, b float64) value.Value { return value.Float(a - b) })})
	ops.Register(registry.Operator{NS: "core", Name: "mul", Arity: 2, Pure: true, Fn: arith("mul",
		func(a, b int64) (value.Value, error) { return value.Int(a * b), nil },
		func(a, b float64) value.Value { return value.Float(a * b) })})
	ops.Register(registry.Operator{NS: "core", Name: "div", Arity: 2, Pure: true, Fn: arith("div",
		func(a, b int64) (value.Value, error) {
			if b == 0 {
				return nil, ierr.New(ierr.DivideByZero, "core.div: division by zero")
			}
			return value.Int(a / b), nil
		},
		func(a, b float64) value.Value { return value.Float(a / b) })})
	ops.Register(registry.Operator{NS: "core", Name: "mod", Arity: 2, Pure: true, Fn: arith("mod",
		func(a, b int64) (value.Value, error) {
			if b == 0 {
				return nil, ierr.New(ierr.DivideByZero, "core.mod: division by zero")
			}
			return value.Int(a % b), nil
		},
		func(a, b float64) value.Value { return value.Float(math.Mod(a, b)) })})

	ops.Register(registry.Operator{NS: "core", Name: "lt", Arity: 2, Pure: true, Fn: cmp("lt",
		func(a, b int64) bool { return a < b }, func(a, b float64) bool { return a < b })})
	ops.Register(registry.Operator{NS: "core", Name: "lte", Arity: 2, Pure: true, Fn: cmp("lte",
		func(a, b int64) bool { return a <= b }, func(a, b float64) bool { return a <= b })})
	ops.Register(registry.Operator{NS: "core", Name: "gt", Arity: 2, Pure: true, Fn: cmp("gt",
		func(a, b int64) bool { return a > b }, func(a, b float64) bool { return a > b })})
	ops.Register(registry.Operator{NS: "core", Name: "gte", Arity: 2, Pure: true, Fn: cmp("gte",
		func(a, b int64) bool { return a >= b }, func(a, b float64) bool { return a >= b })})

	ops.Register(registry.Operator{NS: "core", Name: "eq", Arity: 2, Pure: true, Fn: func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, ierr.Newf(ierr.ArityError, "core.eq: expected 2 arguments, got %d", len(args))
		}
		ok, err := args[0].Equals(args[1])
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	}})

	ops.Register(registry.Operator{NS: "core", Name: "and", Arity: 2, Pure: true, Fn: func(args []value.Value) (value.Value, error) {
		a, aok := args[0].(value.Bool)
		b, bok := args[1].(value.Bool)
		if len(args) != 2 || !aok || !bok {
			return nil, typeErr("core.and", args)
		}
		return value.Bool(a && b), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "or", Arity: 2, Pure: true, Fn: func(args []value.Value) (value.Value, error) {
		a, aok := args[0].(value.Bool)
		b, bok := args[1].(value.Bool)
		if len(args) != 2 || !aok || !bok {
			return nil, typeErr("core.or", args)
		}
		return value.Bool(a || b), nil
	}})
	ops.Register(registry.Operator{NS: "core", Name: "not", Arity: 1, Pure: true, Fn: func(args []value.Value) (value.Value, error) {
		b, ok := args[0].(value.Bool)
		if len(args) != 1 || !ok {
			return nil, typeErr("core.not", args)
		}
		return value.Bool(!b), nil
	}})

	ops.Register(registry.Operator{NS: "core", Name: "concat", Arity: 2, Pure: true, Fn: func(args []value.Value) (value.Value, error) {
		a, aok := args[0].(value.Str)
		b, bok := args[1].(value.Str)
		if len(args) != 2 || !aok || !bok {
			return nil, typeErr("core.concat", args)
		}
		return a + b, nil
	}})
}

// RegisterEffects registers the "print"/"readLine" effects against
// effs, writing to out and reading from in — the embedding host's own
// I/O, not anything the core spec prescribes.
func RegisterEffects(effs *registry.Effects, out io.Writer, in io.Reader) {
	effs.Register(registry.Effect{Name: "print", Arity: -1, Fn: func(args []value.Value) (value.Value, error) {
		parts := make([]interface{}, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(out, parts...)
		return value.Void{}, nil
	}})

	reader := bufio.NewReader(in)
	effs.Register(registry.Effect{Name: "readLine", Arity: 0, Fn: func(args []value.Value) (value.Value, error) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, ierr.Wrap(ierr.DomainError, err)
		}
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		return value.Str(line), nil
	}})
}
