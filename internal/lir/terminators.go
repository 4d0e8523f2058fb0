package lir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// execTerminator runs one block-ending terminator (§4.2). It returns
// either a final value (done=true) or the id of the next block to run
// (done=false).
func (e *Evaluator) execTerminator(term document.Terminator, sc *env.Environment, curBlock string) (v value.Value, next string, done bool, err error) {
	switch term.Kind {
	case "jump":
		return nil, term.Str("to"), false, nil

	case "branch":
		cv, cerr := e.EvalArg(term.Arg("cond"), sc)
		if cerr != nil {
			return nil, "", true, cerr
		}
		if isError(cv) {
			return cv, "", true, nil
		}
		b, ok := cv.(value.Bool)
		if !ok {
			return errVal(ierr.TypeError, "branch: condition must be bool, got %s", cv.Kind()), "", true, nil
		}
		if bool(b) {
			return nil, term.Str("then"), false, nil
		}
		return nil, term.Str("else"), false, nil

	case "return":
		if !term.Has("value") {
			return value.Void{}, "", true, nil
		}
		rv, rerr := e.EvalArg(term.Arg("value"), sc)
		if rerr != nil {
			return nil, "", true, rerr
		}
		return rv, "", true, nil

	case "exit":
		if !term.Has("code") {
			return value.Void{}, "", true, nil
		}
		return value.Int(term.Int("code")), "", true, nil

	case "fork":
		return e.execFork(term, sc)

	case "join":
		return e.execJoin(term, sc)

	case "suspend":
		return e.execSuspend(term, sc)

	default:
		return nil, "", true, nil
	}
}

// execFork handles fork(branches=[{block, taskId}], continuation): spawn
// one task per branch block and await all of them before falling
// through to the continuation block (§4.4). Requires a TaskRunner
// (wired by internal/pir); without one, async terminators are reserved
// the same way the call instruction is (§4.2).
func (e *Evaluator) execFork(term document.Terminator, sc *env.Environment) (value.Value, string, bool, error) {
	if e.Tasks == nil {
		return errVal(ierr.DomainError, "lir: fork requires an async task runner, none configured"), "", true, nil
	}
	branches := term.Branches()
	ids, err := e.Tasks.Fork(branches, sc)
	if err != nil {
		return nil, "", true, err
	}
	if _, err := e.Tasks.AwaitAll(ids); err != nil {
		return nil, "", true, err
	}
	return nil, term.Str("continuation"), false, nil
}

// execJoin handles join(tasks[], results[]?, to): await the named tasks,
// optionally binding their results, then continue at the given block.
func (e *Evaluator) execJoin(term document.Terminator, sc *env.Environment) (value.Value, string, bool, error) {
	if e.Tasks == nil {
		return errVal(ierr.DomainError, "lir: join requires an async task runner, none configured"), "", true, nil
	}
	taskIDs := term.Strs("tasks")
	results, err := e.Tasks.AwaitAll(taskIDs)
	if err != nil {
		return nil, "", true, err
	}
	names := term.Strs("results")
	for i, name := range names {
		if i < len(results) {
			if !sc.AssignExisting(name, results[i]) {
				sc.DefineHere(name, results[i])
			}
		}
	}
	return nil, term.Str("to"), false, nil
}

// execSuspend handles suspend(future, resumeBlock): yield control until
// future resolves, then continue at resumeBlock.
func (e *Evaluator) execSuspend(term document.Terminator, sc *env.Environment) (value.Value, string, bool, error) {
	if e.Tasks == nil {
		return errVal(ierr.DomainError, "lir: suspend requires an async task runner, none configured"), "", true, nil
	}
	if err := e.Tasks.Suspend(term.Str("future"), term.Str("resumeBlock")); err != nil {
		return nil, "", true, err
	}
	return nil, term.Str("resumeBlock"), false, nil
}
