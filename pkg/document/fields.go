// Package document decodes the JSON IR document format (§6): documents,
// nodes (expression-form and block-form), expressions, instructions and
// terminators. It performs no semantic validation — that is an external
// collaborator's job (§1) — only enough structural parsing to let the
// evaluators walk the tree.
//
// Decoding is done with tidwall/gjson rather than encoding/json structs:
// the expression grammar is a large, evolving set of heterogeneously
// shaped JSON objects discriminated by a "kind" field, and gjson's path
// accessors let each evaluator construct pull only the fields it cares
// about without a 30-branch struct definition maintained in lockstep
// with every IR tier.
package document

import "github.com/tidwall/gjson"

// Fields is embedded by Expr, Instruction and Terminator to give them a
// uniform set of typed field accessors over the underlying JSON object.
type Fields struct {
	Raw gjson.Result
}

// Str returns the string field at key, or "" if absent.
func (f Fields) Str(key string) string { return f.Raw.Get(key).String() }

// Int returns the integer field at key, or 0 if absent.
func (f Fields) Int(key string) int64 { return f.Raw.Get(key).Int() }

// Float returns the float field at key, or 0 if absent.
func (f Fields) Float(key string) float64 { return f.Raw.Get(key).Float() }

// Bool returns the boolean field at key, or false if absent.
func (f Fields) Bool(key string) bool { return f.Raw.Get(key).Bool() }

// Has reports whether key is present in the object.
func (f Fields) Has(key string) bool { return f.Raw.Get(key).Exists() }

// Field returns the raw gjson.Result at key, for callers needing
// lower-level access (e.g. lit's typed value payload).
func (f Fields) Field(key string) gjson.Result { return f.Raw.Get(key) }

// Strs returns a string array field.
func (f Fields) Strs(key string) []string {
	arr := f.Raw.Get(key).Array()
	out := make([]string, len(arr))
	for i, r := range arr {
		out[i] = r.String()
	}
	return out
}

// Arg returns the field at key parsed as an Arg: either a node-id string
// or an inline expression object (§3.4).
func (f Fields) Arg(key string) Arg { return parseArg(f.Raw.Get(key)) }

// Args returns the array field at key, each element parsed as an Arg.
func (f Fields) Args(key string) []Arg {
	arr := f.Raw.Get(key).Array()
	out := make([]Arg, len(arr))
	for i, r := range arr {
		out[i] = parseArg(r)
	}
	return out
}

// Params returns the array field at key parsed as formal parameters
// (name, optional flag, default expression).
func (f Fields) Params(key string) []Param { return parseParams(f.Raw.Get(key)) }

// OptArg returns the field at key as an Arg, or nil if the field is
// absent — used for optional operands like if's else branch or try's
// fallback.
func (f Fields) OptArg(key string) *Arg {
	r := f.Raw.Get(key)
	if !r.Exists() {
		return nil
	}
	a := parseArg(r)
	return &a
}
