// Package dfo implements data-flow obfuscation (spec.md §4.8), grounded
// on original_source/solo/plugins/dataFlowObfuscation.py: per-contract
// typed literal pools that lift state-variable initializers into
// backing arrays fronted by `internal view` accessor functions.
package dfo

import (
	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
	"github.com/goudunz1/solobfus/internal/passes/oconst"
)

// poolTypes is the closed set of elementary types DFO pools by
// (spec.md §4.8), in the fixed emission order the Python original's
// dict-of-four uses.
var poolTypes = []string{"uint256", "string", "address", "bool"}

// pool accumulates the literals lifted for one elementary type within
// one contract.
type pool struct {
	etype    string
	funcName string
	literals []*ast.Node
}

// arrayName is the backing array's state-variable name: "_" prefixed
// onto the accessor's name, matching ARRDEC(name="_"+func_name, ...)
// in the Python original.
func (p *pool) arrayName() string { return "_" + p.funcName }

// Run lifts every immediate state-variable literal initializer in
// each contract reachable from root into its type's pool, replacing
// the initializer with a call to that pool's accessor (spec.md §4.8).
func Run(root *ast.Node, ctx *passctx.Context) (*ast.Node, error) {
	for _, contract := range ast.Contracts(root) {
		pools := make(map[string]*pool, len(poolTypes))
		for _, t := range poolTypes {
			pools[t] = &pool{etype: t, funcName: oconst.RandomName(ctx, 16)}
		}

		nodes := contract.GetList("nodes")
		if nodes == nil {
			continue
		}
		for _, decl := range nodes.Nodes() {
			extractLiteral(decl, pools)
		}

		for _, t := range poolTypes {
			p := pools[t]
			if len(p.literals) == 0 {
				continue
			}
			contract.Main().Append(accessorFunction(p, ctx))
			contract.Main().Append(backingArray(p))
		}
	}
	return root, nil
}

// extractLiteral replaces decl's literal initializer with an accessor
// call and appends the literal to its type's pool, when decl is a
// VariableDeclaration whose value is a Literal of a pooled type.
func extractLiteral(decl *ast.Node, pools map[string]*pool) {
	if decl.Kind != ast.KindVariableDeclaration {
		return
	}
	value := decl.GetNode("value")
	if value == nil || value.Kind != ast.KindLiteral {
		return
	}
	typeStr, ok := elementaryTypeString(decl.GetNode("typeName"))
	if !ok {
		return
	}
	p, ok := pools[typeStr]
	if !ok {
		// Not a pooled type (spec.md §4.8 only pools uint256, string,
		// address, bool) — left untouched.
		return
	}

	index := len(p.literals)
	p.literals = append(p.literals, value)
	decl.Set("value", ast.FunCall(p.funcName, []*ast.Node{ast.Num(uint64(index))}))
}

// elementaryTypeString extracts the compiler's canonical type string
// for typeName (e.g. "uint256"), as recorded in its typeDescriptions
// side-car during ingestion (spec.md §4.3 carries unknown sub-dicts
// through verbatim).
func elementaryTypeString(typeName *ast.Node) (string, bool) {
	if typeName == nil {
		return "", false
	}
	desc, ok := typeName.Get("typeDescriptions").(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := desc["typeString"].(string)
	return s, ok
}

// accessorFunction builds the `internal view` accessor of spec.md
// §4.8: `function <name>(uint256 <idx>) internal view returns (<etype>
// [storage]) { return _<name>[<idx>]; }`.
func accessorFunction(p *pool, ctx *passctx.Context) *ast.Node {
	idxName := oconst.RandomName(ctx, 4)
	idxParam := ast.VarDecl(idxName, nil, false, "uint256")

	retParam := ast.VarDecl("", nil, false, p.etype)
	if p.etype == "string" {
		retParam.Set("storageLocation", "storage")
	}

	params := ast.NewNode(ast.KindParameterList)
	params.Span = ast.Span{ContractID: -1}
	params.Set("parameters", []any{idxParam})

	returnParams := ast.NewNode(ast.KindParameterList)
	returnParams.Span = ast.Span{ContractID: -1}
	returnParams.Set("parameters", []any{retParam})

	body := ast.Blk([]*ast.Node{
		ast.ReturnStmt(ast.IndexAccessExpr(ast.Sym(p.arrayName()), ast.Sym(idxName))),
	})

	fn := ast.NewNode(ast.KindFunctionDefinition)
	fn.Span = ast.Span{ContractID: -1}
	fn.Set("kind", "function")
	fn.Set("name", p.funcName)
	fn.Set("parameters", params)
	fn.Set("visibility", "internal")
	fn.Set("stateMutability", "view")
	fn.Set("modifiers", []any{})
	fn.Set("virtual", false)
	fn.Set("returnParameters", returnParams)
	fn.Set("body", body)
	return fn
}

// backingArray builds the `<etype>[] <name> = [<literals...>];` state
// variable holding p's collected literals.
func backingArray(p *pool) *ast.Node {
	arrType := ast.NewNode(ast.KindArrayTypeName)
	arrType.Span = ast.Span{ContractID: -1}
	arrType.Set("baseType", ast.Etype(p.etype))

	raw := make([]any, len(p.literals))
	for i, lit := range p.literals {
		raw[i] = lit
	}
	initializer := ast.NewNode(ast.KindTupleExpression)
	initializer.Span = ast.Span{ContractID: -1}
	initializer.Set("isInlineArray", true)
	initializer.Set("components", raw)

	decl := ast.NewNode(ast.KindVariableDeclaration)
	decl.Span = ast.Span{ContractID: -1}
	decl.Set("typeName", arrType)
	decl.Set("constant", false)
	decl.Set("mutability", "mutable")
	decl.Set("visibility", "private")
	decl.Set("storageLocation", "default")
	decl.Set("name", p.arrayName())
	decl.Set("value", initializer)
	return decl
}
