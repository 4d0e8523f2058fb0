package document

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"
)

var errMissingID = errors.New("document: node missing id")

var (
	identPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	versionPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+(-[A-Za-z0-9.]+)?$`)
	pirMajorPattern = regexp.MustCompile(`^2\.\d+\.\d+(-[A-Za-z0-9.]+)?$`)
)

// ValidIdentifier reports whether name matches the identifier grammar
// used throughout the document format (§3.2).
func ValidIdentifier(name string) bool { return identPattern.MatchString(name) }

// ProcDef is one named-procedure definition from airDefs (§3.2, §6).
type ProcDef struct {
	Namespace string
	Name      string
	Params    []Param
	Body      Expr
}

// Document is a parsed (but not semantically validated) IR document.
type Document struct {
	Version      string
	Capabilities []string
	AirDefs      []ProcDef
	Nodes        map[string]*Node
	NodeOrder    []string
	Result       string
}

// Node looks up a node by id.
func (d *Document) Node(id string) (*Node, bool) {
	n, ok := d.Nodes[id]
	return n, ok
}

// IsPIR reports whether the document declares a PIR (2.x.y) version,
// i.e. it is expected to use async constructs (§6).
func (d *Document) IsPIR() bool { return pirMajorPattern.MatchString(d.Version) }

// Parse decodes a JSON IR document. It performs the structural checks
// cheap enough to do during parsing (§3.5 invariants 1, 4, 5, 7); deeper
// checks (acyclicity modulo lambdas, phi source validity against actual
// predecessors) are the evaluators' job since they require walking the
// graph with evaluation semantics in mind.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("document: invalid JSON")
	}
	root := gjson.ParseBytes(data)

	doc := &Document{
		Version: root.Get("version").String(),
		Result:  root.Get("result").String(),
		Nodes:   make(map[string]*Node),
	}
	if doc.Version != "" && !versionPattern.MatchString(doc.Version) {
		return nil, fmt.Errorf("document: malformed version %q", doc.Version)
	}

	doc.Capabilities = capsToStrings(root.Get("capabilities").Array())

	for _, d := range root.Get("airDefs").Array() {
		doc.AirDefs = append(doc.AirDefs, ProcDef{
			Namespace: d.Get("namespace").String(),
			Name:      d.Get("name").String(),
			Params:    parseParams(d.Get("params")),
			Body:      parseExpr(d.Get("body")),
		})
	}

	for _, n := range root.Get("nodes").Array() {
		node, err := parseNode(n)
		if err != nil {
			return nil, err
		}
		if _, dup := doc.Nodes[node.ID]; dup {
			return nil, fmt.Errorf("document: duplicate node id %q", node.ID)
		}
		doc.Nodes[node.ID] = node
		doc.NodeOrder = append(doc.NodeOrder, node.ID)
	}

	if doc.Result == "" {
		return nil, fmt.Errorf("document: missing result node id")
	}
	if _, ok := doc.Nodes[doc.Result]; !ok {
		return nil, fmt.Errorf("document: result node %q not found among nodes", doc.Result)
	}

	if err := validateBlocks(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func capsToStrings(arr []gjson.Result) []string {
	out := make([]string, len(arr))
	for i, r := range arr {
		out[i] = r.String()
	}
	return out
}

// validateBlocks checks invariants 4 and 5: a block node's entry names
// an existing block, and jump/branch targets exist within the same
// block node.
func validateBlocks(doc *Document) error {
	for _, node := range doc.Nodes {
		if !node.IsBlock {
			continue
		}
		if _, ok := node.Blocks[node.Entry]; !ok {
			return fmt.Errorf("document: node %q entry %q is not a block in that node", node.ID, node.Entry)
		}
		for _, blk := range node.Blocks {
			for _, target := range terminatorTargets(blk.Terminator) {
				if _, ok := node.Blocks[target]; !ok {
					return fmt.Errorf("document: node %q block %q terminator targets unknown block %q", node.ID, blk.ID, target)
				}
			}
		}
	}
	return nil
}

func terminatorTargets(t Terminator) []string {
	var raw []string
	switch t.Kind {
	case "jump":
		raw = []string{t.Str("to")}
	case "branch":
		raw = []string{t.Str("then"), t.Str("else")}
	case "fork":
		raw = append(raw, t.Str("continuation"))
		for _, b := range t.Branches() {
			raw = append(raw, b.Block)
		}
	case "join":
		raw = []string{t.Str("to")}
	case "suspend":
		raw = []string{t.Str("resumeBlock")}
	}
	out := raw[:0]
	for _, r := range raw {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
