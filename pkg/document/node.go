package document

import "github.com/tidwall/gjson"

// Node is either an expression node ({id, expr}) or a block node
// ({id, blocks, entry}) — a miniature CFG (§3.3, §4.2).
type Node struct {
	ID      string
	IsBlock bool

	// Expression-form.
	Expr Expr

	// Block-form.
	Blocks     map[string]*Block
	BlockOrder []string
	Entry      string
}

// Block is one basic block: an ordered instruction list and exactly one
// terminator (§4.2).
type Block struct {
	ID           string
	Instructions []Instruction
	Terminator   Terminator
}

// Instruction is one linear CFG instruction (assign/op/phi/effect/
// assignRef/call).
type Instruction struct {
	Fields
	Op string
}

// PhiSource is one {block, id} entry of a phi instruction.
type PhiSource struct {
	Block string
	ID    string
}

// Sources parses a phi instruction's source list.
func (i Instruction) Sources() []PhiSource {
	arr := i.Field("sources").Array()
	out := make([]PhiSource, len(arr))
	for idx, r := range arr {
		out[idx] = PhiSource{Block: r.Get("block").String(), ID: r.Get("id").String()}
	}
	return out
}

// Terminator is one block-ending instruction (jump/branch/return/exit,
// or the async fork/join/suspend, §4.2, §4.4).
type Terminator struct {
	Fields
	Kind string
}

// ForkBranch is one {block, taskId} entry of a fork terminator.
type ForkBranch struct {
	Block  string
	TaskID string
}

// Branches parses a fork terminator's branch list.
func (t Terminator) Branches() []ForkBranch {
	arr := t.Field("branches").Array()
	out := make([]ForkBranch, len(arr))
	for idx, r := range arr {
		out[idx] = ForkBranch{Block: r.Get("block").String(), TaskID: r.Get("taskId").String()}
	}
	return out
}

func parseNode(r gjson.Result) (*Node, error) {
	id := r.Get("id").String()
	if id == "" {
		return nil, errMissingID
	}
	node := &Node{ID: id}
	if blocks := r.Get("blocks"); blocks.Exists() {
		node.IsBlock = true
		node.Entry = r.Get("entry").String()
		node.Blocks = make(map[string]*Block)
		for _, b := range blocks.Array() {
			blk := parseBlock(b)
			node.Blocks[blk.ID] = blk
			node.BlockOrder = append(node.BlockOrder, blk.ID)
		}
		return node, nil
	}
	node.Expr = parseExpr(r.Get("expr"))
	return node, nil
}

func parseBlock(r gjson.Result) *Block {
	blk := &Block{ID: r.Get("id").String()}
	for _, i := range r.Get("instructions").Array() {
		blk.Instructions = append(blk.Instructions, Instruction{
			Fields: Fields{Raw: i},
			Op:     i.Get("op").String(),
		})
	}
	term := r.Get("terminator")
	blk.Terminator = Terminator{Fields: Fields{Raw: term}, Kind: term.Get("kind").String()}
	return blk
}
