package document

import "github.com/tidwall/gjson"

// Expr is one AIR/CIR/EIR/PIR expression node (§3.4). Kind selects which
// of the evaluators' per-construct contracts applies; the remaining
// fields are read on demand through the embedded Fields accessors, so
// adding a field to a new expression kind never requires touching this
// type.
type Expr struct {
	Fields
	Kind string
}

func parseExpr(r gjson.Result) Expr {
	return Expr{Fields: Fields{Raw: r}, Kind: r.Get("kind").String()}
}

// Arg is either a node id (string) or an inline expression (object),
// the "refers by id or embeds inline" duality every operand field in
// the grammar allows (§3.4).
type Arg struct {
	IsNodeID bool
	NodeID   string
	Inline   *Expr
}

func parseArg(r gjson.Result) Arg {
	if r.Type == gjson.String {
		return Arg{IsNodeID: true, NodeID: r.String()}
	}
	e := parseExpr(r)
	return Arg{Inline: &e}
}

// Param describes one formal parameter of a lambda, closure-application
// target, or named procedure (§3.1).
type Param struct {
	Name     string
	Optional bool
	Default  *Expr
}

func parseParam(r gjson.Result) Param {
	p := Param{Name: r.Get("name").String(), Optional: r.Get("optional").Bool()}
	if d := r.Get("default"); d.Exists() {
		e := parseExpr(d)
		p.Default = &e
	}
	return p
}

func parseParams(r gjson.Result) []Param {
	arr := r.Array()
	out := make([]Param, len(arr))
	for i, p := range arr {
		out[i] = parseParam(p)
	}
	return out
}
