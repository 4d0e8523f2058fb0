package lir

import (
	"github.com/go-air/airvm/internal/eir"
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// execInstruction dispatches one linear CFG instruction (§4.2).
// prevBlock is threaded through for phi's predecessor check.
func (e *Evaluator) execInstruction(instr document.Instruction, sc *env.Environment, prevBlock string) (value.Value, error) {
	switch instr.Op {
	case "assign":
		return e.execAssign(instr, sc)
	case "op":
		return e.execOp(instr, sc)
	case "phi":
		return e.execPhi(instr, sc, prevBlock)
	case "effect":
		return e.execEffect(instr, sc)
	case "assignRef":
		return e.execAssignRef(instr, sc)
	case "call":
		// Reserved; not fully implemented in the reference (§4.2).
		return errVal(ierr.DomainError, "lir: call instruction is not implemented"), nil
	default:
		return errVal(ierr.DomainError, "lir: unknown instruction %q", instr.Op), nil
	}
}

// execAssign handles assign(target, expr): evaluate expr in the current
// env, store into both the ref-cell store and the node-value cache
// under target. Shares the same cache-invalidation discipline as EIR's
// expression-level assign.
func (e *Evaluator) execAssign(instr document.Instruction, sc *env.Environment) (value.Value, error) {
	target := instr.Str("target")
	delete(e.Cache, target)

	v, err := e.EvalArg(instr.Arg("expr"), sc)
	if err != nil {
		return nil, err
	}
	if isError(v) {
		return v, nil
	}
	e.storeTarget(target, v, sc)
	return value.Void{}, nil
}

// execOp handles op(target, ns, name, args): look up the operator, read
// each arg (itself a node-id-or-inline operand, resolved through the
// same vars→cache resolution order as everywhere else), apply it, store
// the result the same way assign does.
func (e *Evaluator) execOp(instr document.Instruction, sc *env.Environment) (value.Value, error) {
	target := instr.Str("target")
	ns := instr.Str("ns")
	name := instr.Str("name")
	args := instr.Args("args")

	argv := make([]value.Value, len(args))
	for i, a := range args {
		v, err := e.EvalArg(a, sc)
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return v, nil
		}
		argv[i] = v
	}

	qualified := name
	if ns != "" {
		qualified = ns + "." + name
	}
	op, ok := e.Ops.LookupOperator(ns, name)
	if !ok {
		return errVal(ierr.UnknownOperator, "unknown operator %s", qualified), nil
	}
	if err := registry.CheckArity(qualified, op.Arity, len(argv)); err != nil {
		return errVal(ierr.ArityError, "%s", err.Error()), nil
	}

	result, err := e.callOp(op, argv, qualified)
	if err != nil {
		return nil, err
	}
	if isError(result) {
		return result, nil
	}
	e.storeTarget(target, result, sc)
	return value.Void{}, nil
}

func (e *Evaluator) callOp(op registry.Operator, argv []value.Value, qualified string) (v value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = errVal(ierr.DomainError, "operator %s panicked: %v", qualified, r)
			err = nil
		}
	}()
	result, callErr := op.Fn(argv)
	if callErr != nil {
		if ee, ok := callErr.(*ierr.EvalError); ok {
			return value.NewError(ee), nil
		}
		return errVal(ierr.DomainError, "%s", callErr.Error()), nil
	}
	return result, nil
}

// execPhi handles phi(target, sources[{block, id}]): pick the source
// whose block equals the actual predecessor; if none matches, fall back
// to the first source whose id currently resolves to a non-error value.
func (e *Evaluator) execPhi(instr document.Instruction, sc *env.Environment, prevBlock string) (value.Value, error) {
	target := instr.Str("target")
	sources := instr.Sources()

	for _, src := range sources {
		if src.Block == prevBlock {
			v, err := e.ResolveRef(src.ID, sc)
			if err != nil {
				return nil, err
			}
			e.storeTarget(target, v, sc)
			return value.Void{}, nil
		}
	}
	for _, src := range sources {
		v, err := e.ResolveRef(src.ID, sc)
		if err != nil {
			continue
		}
		if isError(v) {
			continue
		}
		e.storeTarget(target, v, sc)
		return value.Void{}, nil
	}
	return errVal(ierr.DomainError, "phi: no source matched predecessor %q or held a non-error value", prevBlock), nil
}

// execEffect handles effect(name, args): apply the effect, record it in
// the effect log, result is void.
func (e *Evaluator) execEffect(instr document.Instruction, sc *env.Environment) (value.Value, error) {
	name := instr.Str("name")
	args := instr.Args("args")

	argv := make([]value.Value, len(args))
	for i, a := range args {
		v, err := e.EvalArg(a, sc)
		if err != nil {
			return nil, err
		}
		if isError(v) {
			return v, nil
		}
		argv[i] = v
	}

	if e.Effects == nil {
		return errVal(ierr.UnknownOperator, "unknown effect %q", name), nil
	}
	eff, ok := e.Effects.LookupEffect(name)
	if !ok {
		return errVal(ierr.UnknownOperator, "unknown effect %q", name), nil
	}
	if err := registry.CheckArity("effect "+name, eff.Arity, len(argv)); err != nil {
		return errVal(ierr.ArityError, "%s", err.Error()), nil
	}

	result, err := eff.Fn(argv)
	if err != nil {
		if ee, ok := err.(*ierr.EvalError); ok {
			return value.NewError(ee), nil
		}
		return errVal(ierr.DomainError, "%s", err.Error()), nil
	}
	if result == nil {
		result = value.Void{}
	}
	e.EffectLog = append(e.EffectLog, eir.LoggedEffect{Name: name, Args: argv, Result: result})
	e.Metrics.RecordEffect(name)
	return value.Void{}, nil
}

// execAssignRef handles assignRef(target, source-id): copy a value into
// a ref-cell slot named target_ref.
func (e *Evaluator) execAssignRef(instr document.Instruction, sc *env.Environment) (value.Value, error) {
	target := instr.Str("target")
	sourceID := instr.Str("source")

	v, err := e.ResolveRef(sourceID, sc)
	if err != nil {
		return nil, err
	}
	if isError(v) {
		return v, nil
	}
	if e.Cells != nil {
		e.Cells.Bind(target+"_ref", value.NewRefCell(v))
	}
	return value.Void{}, nil
}

// storeTarget mirrors EIR's assign semantics for instruction results:
// write into both the ref-cell store and the node-value cache, and make
// it visible to subsequent vars-lookups in the current scope.
func (e *Evaluator) storeTarget(target string, v value.Value, sc *env.Environment) {
	if e.Cells != nil {
		e.Cells.Set(target, v)
	}
	e.Cache[target] = v
	if !sc.AssignExisting(target, v) {
		sc.DefineHere(target, v)
	}
}
