// Package lir implements the CFG executor for block-form nodes (§4.2):
// basic blocks of linear instructions ending in exactly one terminator,
// phi-node resolution keyed by the actual predecessor block, and a
// global step budget that converts runaway control flow into a
// NonTermination value instead of looping forever.
//
// It embeds an *eir.Evaluator so assign/effect/ref-cell machinery and
// the expression sub-evaluator (for instruction operands that are full
// expressions, not just ids) are shared rather than reimplemented.
package lir

import (
	"fmt"

	"github.com/go-air/airvm/internal/eir"
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// DefaultStepBudget is the global step budget for a single block-node
// execution — distinct from eir's per-loop DefaultIterBudget, since a
// CFG walk can legitimately revisit the same block many times across
// many distinct loop constructs lowered into it.
const DefaultStepBudget = 100000

// TaskRunner is the minimal surface lir needs from an async runtime to
// execute fork/join/suspend terminators. internal/pir implements this;
// lir itself never schedules tasks. Fork returns the ids it registered
// so the caller (execFork) can await them per §4.4's "await all of
// them" before falling through to the continuation block.
type TaskRunner interface {
	Fork(branches []document.ForkBranch, sc *env.Environment) ([]string, error)
	AwaitAll(taskIDs []string) ([]value.Value, error)
	Suspend(futureID, resumeBlock string) error
}

// Evaluator runs one block-form node to completion.
type Evaluator struct {
	*eir.Evaluator
	StepBudget int // 0 means DefaultStepBudget

	// Tasks is consulted for fork/join/suspend terminators. nil means
	// this Evaluator is running pure LIR with no async extension —
	// those terminators then yield a DomainError, the same "reserved,
	// not implemented" treatment §4.2 specifies for the call
	// instruction.
	Tasks TaskRunner

	// curNode is the block-form node the current RunBlockNode call is
	// walking; RunFromBlock uses it so an async fork branch (which only
	// names a block id, not a separate node) can resume within the same
	// node's block set. Safe to read/write without its own lock: pir's
	// cooperative GIL already ensures only one goroutine runs evaluator
	// code at a time.
	curNode *document.Node
}

// New creates a CFG executor over doc.
func New(doc *document.Document, defs *env.Definitions, ops registry.OperatorRegistry, effects registry.EffectRegistry, cells *env.RefCellStore) *Evaluator {
	return &Evaluator{Evaluator: eir.New(doc, defs, ops, effects, cells), StepBudget: DefaultStepBudget}
}

func (e *Evaluator) budget() int {
	if e.StepBudget <= 0 {
		return DefaultStepBudget
	}
	return e.StepBudget
}

func isError(v value.Value) bool {
	_, ok := value.IsError(v)
	return ok
}

func errVal(code ierr.Code, format string, args ...interface{}) *value.Error {
	return value.NewError(ierr.Newf(code, format, args...))
}

// RunBlockNode executes node starting at its entry block (§4.2
// "Execution"): run every instruction in the current block
// (short-circuiting on the first error value), run the terminator,
// and either finish with a value or move to the next block, tracking
// the previous block id for phi resolution. A global step counter
// guards against runaway control flow.
func (e *Evaluator) RunBlockNode(node *document.Node, sc *env.Environment) (value.Value, error) {
	if !node.IsBlock {
		return nil, fmt.Errorf("lir: node %q is not block-form", node.ID)
	}
	e.curNode = node
	return e.runBlocks(node, node.Entry, sc)
}

// RunFromBlock resumes execution at blockID within the node the most
// recent RunBlockNode call was walking — the shape an async fork branch
// needs, since a fork branch names a block id local to the forking
// node, not a separate top-level node (§4.4 "fork(branches=[{block,
// taskId}], continuation)").
func (e *Evaluator) RunFromBlock(blockID string, sc *env.Environment) (value.Value, error) {
	if e.curNode == nil {
		return nil, fmt.Errorf("lir: RunFromBlock called with no current node in context")
	}
	return e.runBlocks(e.curNode, blockID, sc)
}

// CurrentNode returns the node the most recent RunBlockNode call was
// walking. A TaskRunner's Fork uses this to capture the forking node
// before handing a branch off to a goroutine that will run concurrently
// with whatever this Evaluator does next — it must not read curNode
// itself from that goroutine, since curNode can change before the
// branch actually runs.
func (e *Evaluator) CurrentNode() *document.Node { return e.curNode }

// RunFromBlockOnNode resumes execution at blockID within node
// explicitly, the concurrency-safe counterpart to RunFromBlock for a
// caller (a spawned fork-branch task) that captured node up front via
// CurrentNode rather than relying on curNode still pointing at it by
// the time the branch actually runs.
func (e *Evaluator) RunFromBlockOnNode(node *document.Node, blockID string, sc *env.Environment) (value.Value, error) {
	return e.runBlocks(node, blockID, sc)
}

func (e *Evaluator) runBlocks(node *document.Node, startBlock string, sc *env.Environment) (value.Value, error) {
	blockID := startBlock
	prevBlock := ""
	budget := e.budget()

	for step := 0; ; step++ {
		if step >= budget {
			return errVal(ierr.NonTermination, "lir: node %q exceeded global step budget of %d", node.ID, budget), nil
		}
		blk, ok := node.Blocks[blockID]
		if !ok {
			return nil, fmt.Errorf("lir: node %q references unknown block %q", node.ID, blockID)
		}

		for _, instr := range blk.Instructions {
			v, err := e.execInstruction(instr, sc, prevBlock)
			if err != nil {
				return nil, err
			}
			if isError(v) {
				return v, nil
			}
		}

		result, next, done, err := e.execTerminator(blk.Terminator, sc, blockID)
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
		prevBlock = blockID
		blockID = next
	}
}
