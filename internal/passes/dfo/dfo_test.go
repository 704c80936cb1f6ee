package dfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

// buildSample constructs `contract A { string public s = "hello"; }`.
func buildSample() *ast.Node {
	literal := ast.NewNode(ast.KindLiteral)
	literal.Set("kind", "string")
	literal.Set("value", "hello")

	typeName := ast.Etype("string")
	typeName.Set("typeDescriptions", map[string]any{
		"typeIdentifier": "t_string_memory_ptr",
		"typeString":     "string",
	})

	decl := ast.NewNode(ast.KindVariableDeclaration)
	decl.Set("name", "s")
	decl.Set("stateVariable", true)
	decl.Set("visibility", "public")
	decl.Set("typeName", typeName)
	decl.Set("value", literal)

	contract := ast.NewNode(ast.KindContractDefinition)
	contract.Set("name", "A")
	contract.Set("contractKind", "contract")
	contract.Set("nodes", []any{decl})

	root := ast.NewNode(ast.KindSourceUnit)
	root.Set("nodes", []any{contract})
	return root
}

func TestRunLiftsStringLiteralIntoPool(t *testing.T) {
	root := buildSample()
	seed := int64(5)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	contract := ast.Contracts(root)[0]
	nodes := contract.GetList("nodes").Nodes()
	require.Len(t, nodes, 3, "original decl + accessor function + backing array")

	decl := nodes[0]
	assert.Equal(t, ast.KindVariableDeclaration, decl.Kind)
	call := decl.GetNode("value")
	require.NotNil(t, call)
	assert.Equal(t, ast.KindFunctionCall, call.Kind)

	fn := nodes[1]
	assert.Equal(t, ast.KindFunctionDefinition, fn.Kind)
	assert.Equal(t, "internal", fn.GetString("visibility"))
	assert.Equal(t, "view", fn.GetString("stateMutability"))

	returnParams := fn.GetNode("returnParameters").GetList("parameters").Nodes()
	require.Len(t, returnParams, 1)
	assert.Equal(t, "storage", returnParams[0].GetString("storageLocation"))

	arrDecl := nodes[2]
	assert.Equal(t, ast.KindVariableDeclaration, arrDecl.Kind)
	assert.Equal(t, ast.KindArrayTypeName, arrDecl.GetNode("typeName").Kind)
	components := arrDecl.GetNode("value").GetList("components").Nodes()
	require.Len(t, components, 1)
	assert.Equal(t, "hello", components[0].GetString("value"))
}

func TestRunSkipsEmptyPools(t *testing.T) {
	root := buildSample()
	// Remove the string pool's only candidate so every pool stays empty.
	contract := ast.Contracts(root)[0]
	contract.GetList("nodes").RemoveAt(0)

	seed := int64(1)
	ctx := passctx.New(&seed, 4)
	_, err := Run(root, ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, contract.GetList("nodes").Len())
}
