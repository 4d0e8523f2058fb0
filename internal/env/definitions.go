package env

import "github.com/go-air/airvm/pkg/document"

// Definitions maps a qualified name (namespace + name) to a named
// procedure with a fixed-arity parameter list and an expression body
// (§3.2). It backs the airRef construct.
type Definitions struct {
	procs map[string]document.ProcDef
}

// NewDefinitions builds a definitions table from a document's airDefs.
func NewDefinitions(defs []document.ProcDef) *Definitions {
	d := &Definitions{procs: make(map[string]document.ProcDef, len(defs))}
	for _, p := range defs {
		d.procs[qualify(p.Namespace, p.Name)] = p
	}
	return d
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// Lookup finds a named procedure by namespace and name.
func (d *Definitions) Lookup(ns, name string) (document.ProcDef, bool) {
	p, ok := d.procs[qualify(ns, name)]
	return p, ok
}
