package eir

import (
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/ierr"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

// refName is the ref-cell store key refCell/deref operate under: the
// target name with a "_ref" suffix, keeping an explicit ref-cell alias
// distinct from the plain assigned-variable cell assign writes to.
func refName(target string) string { return target + "_ref" }

// evalRefCellExpr handles refCell(target) (§4.3): wrap the value
// currently bound to target into a ref-cell identified by target_ref.
// An unbound target is UnboundIdentifier.
func (e *Evaluator) evalRefCellExpr(expr document.Expr, sc *env.Environment) (value.Value, error) {
	target := expr.Str("target")
	v, ok := sc.Lookup(target)
	if !ok {
		return errVal(ierr.UnboundIdentifier, "refCell: undefined identifier %q", target), nil
	}
	cell := value.NewRefCell(v)
	if e.Cells != nil {
		e.Cells.Bind(refName(target), cell)
	}
	return cell, nil
}

// evalDeref handles deref(target) (§4.3): read target_ref. Falls back
// to target's plain assigned-variable cell when no explicit refCell
// alias exists, so the common assign(c, v); deref(c) pairing (§8
// property "for every ref-cell c ... deref equals v") works without
// requiring a prior refCell(c) call. Neither present is DomainError.
func (e *Evaluator) evalDeref(expr document.Expr, sc *env.Environment) (value.Value, error) {
	target := expr.Str("target")
	if e.Cells != nil {
		if cell, ok := e.Cells.Get(refName(target)); ok {
			return cell.Val, nil
		}
		if cell, ok := e.Cells.Get(target); ok {
			return cell.Val, nil
		}
	}
	return errVal(ierr.DomainError, "deref: no ref-cell bound for %q", target), nil
}
