// Package opredic implements opaque-predicate insertion (spec.md
// §4.7), grounded on original_source/solo/plugins/opredic.py: every
// function or modifier body is wrapped in a provably-false guard whose
// dead branch holds junk `require` statements.
package opredic

import (
	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
	"github.com/goudunz1/solobfus/internal/passes/oconst"
)

// falsePredicate builds one false-for-all-x,y Boolean formula, given
// the fresh variable names. Each entry mirrors one lambda in the
// Python original's OPAQUE_FALSE tuple; spec.md §4.7 names the last
// two explicitly and recommends bitwise forms over arithmetic ones
// that could revert on overflow, but keeps the Python's `(x-y)^2 !=
// x^2-2xy+y^2` identity too. The chosen predicate is evaluated on
// every call (only the junk branch is never taken); with x and y
// drawn below 2^127, every intermediate of that identity, 2*x*y
// included, stays inside the int256 range, so it does not revert.
var falsePredicates = []func(xName, yName string) *ast.Node{
	// (x-y)*(x-y) != x*x - 2*x*y + y*y
	func(xName, yName string) *ast.Node {
		x, y := ast.Sym(xName), ast.Sym(yName)
		diff := ast.Sub(ast.Sym(xName), ast.Sym(yName))
		lhs := ast.Mul(diff, ast.Sub(ast.Sym(xName), ast.Sym(yName)))
		rhs := ast.Add(
			ast.Sub(ast.Mul(x, x), ast.Mul(ast.Mul(ast.Num(2), x), y)),
			ast.Mul(y, y),
		)
		return ast.Ne(lhs, rhs)
	},
	// (x % 2 == 0) && (x % 2 == 1)
	func(xName, _ string) *ast.Node {
		x := ast.Sym(xName)
		return ast.Land(
			ast.Eq(ast.Mod(x, ast.Num(2)), ast.Num(0)),
			ast.Eq(ast.Mod(ast.Sym(xName), ast.Num(2)), ast.Num(1)),
		)
	},
	// (x >= y) && (x < y)
	func(xName, yName string) *ast.Node {
		return ast.Land(
			ast.Ge(ast.Sym(xName), ast.Sym(yName)),
			ast.Lt(ast.Sym(xName), ast.Sym(yName)),
		)
	},
}

// garbageCode builds `length` freshly-sampled `require(k == k);`
// statements (spec.md §4.7's junk branch).
func garbageCode(ctx *passctx.Context, length int) []*ast.Node {
	out := make([]*ast.Node, 0, length)
	for i := 0; i < length; i++ {
		value := oconst.RandomNumber(ctx)
		garbageExpr := ast.FunCall("require", []*ast.Node{ast.Eq(ast.NumBig(value), ast.NumBig(value))})
		out = append(out, ast.ExprStmt(garbageExpr))
	}
	return out
}

// Run wraps every function/modifier body reachable from root in a
// false predicate (spec.md §4.7). JunkStatements on ctx controls the
// garbage-branch length (default 4).
func Run(root *ast.Node, ctx *passctx.Context) (*ast.Node, error) {
	for _, fn := range ast.Functions(root) {
		body := fn.GetNode("body")
		if body == nil {
			continue
		}
		wrapBody(body, ctx)
	}
	return root, nil
}

// wrapBody replaces body's statement list with:
//
//	int x = <x>;
//	int y = <y>;
//	if (<falsePredicate>(x, y)) { <junk> } else { <original statements> }
func wrapBody(body *ast.Node, ctx *passctx.Context) {
	originalStatements := body.Main().Nodes()

	// Detach the original statements from body before re-wrapping them
	// in a fresh Block: otherwise ast.Blk below would re-parent nodes
	// that still belong to body, triggering Node's clone-on-reparent
	// (spec.md §9's "deep-copy on re-parent") instead of a cheap move.
	body.SetMain(nil)

	xVal, yVal := oconst.RandomNumber(ctx), oconst.RandomNumber(ctx)
	xName, yName := oconst.RandomName(ctx, 16), oconst.RandomName(ctx, 16)

	xDecl := ast.VarStmt(xName, ast.NumBig(xVal), "int")
	yDecl := ast.VarStmt(yName, ast.NumBig(yVal), "int")

	predicate := falsePredicates[ctx.Rand.IntN(len(falsePredicates))]
	cond := predicate(xName, yName)

	junkLength := ctx.JunkStatements
	if junkLength <= 0 {
		junkLength = 4
	}

	guard := ast.If(cond, ast.Blk(garbageCode(ctx, junkLength)), ast.Blk(originalStatements))

	body.SetMain([]any{xDecl, yDecl, guard})
}
