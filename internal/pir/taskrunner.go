package pir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// Fork implements lir.TaskRunner (§4.4's fork terminator): spawn one
// task per branch, each resuming the forking node's own block set from
// the branch's named block (RunFromBlockOnNode — a fork branch names a block
// id local to its node, not a separate task node, unlike spawn). It
// returns the task ids it registered so execFork can await all of them
// before falling through to the continuation block; this implementation
// never lets a branch task see or reach continuation itself, so the
// "exactly one branch runs continuation inline" race §4.4 describes
// degenerates to always falling through sequentially after the join —
// a legal instance of that same fallback path, not a violation of it.
func (e *Evaluator) Fork(branches []document.ForkBranch, sc *env.Environment) ([]string, error) {
	node := e.CurrentNode()
	ids := make([]string, len(branches))
	for i, b := range branches {
		b := b
		id := b.TaskID
		if id == "" {
			// §4.4 treats a branch's taskId as required, but the document
			// parser does not enforce that; fall back to a fresh id rather
			// than risk colliding empty-string task ids.
			id = e.Scheduler.NewTaskID()
		}
		ids[i] = id
		e.Scheduler.Spawn(id, func() (interface{}, error) {
			return e.RunFromBlockOnNode(node, b.Block, sc)
		})
	}
	return ids, nil
}

// AwaitAll implements lir.TaskRunner (used by both fork's join and the
// standalone join terminator): await every task id in order, collecting
// their values. A Go-level error (a bug in this package, not a language
// error) aborts immediately; a task that completed with a language-level
// error value is still collected like any other result — the caller
// (execJoin's binding, or execFork discarding the values outright) is
// where that value's error-ness, if any, gets noticed.
func (e *Evaluator) AwaitAll(taskIDs []string) ([]value.Value, error) {
	results := make([]value.Value, len(taskIDs))
	for i, id := range taskIDs {
		v, err := toValue(e.Scheduler.Await(id))
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// Suspend implements lir.TaskRunner (§4.4's suspend terminator): block
// until futureID resolves. execSuspend sets the next block to
// resumeBlock itself once this returns successfully, so Suspend's own
// job is only to wait.
func (e *Evaluator) Suspend(futureID, resumeBlock string) error {
	_, err := e.Scheduler.Await(futureID)
	return err
}
