package rename

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

// buildSample constructs `contract X { uint y; function g() public { y = 1; } }`.
func buildSample() *ast.Node {
	yDecl := ast.NewNode(ast.KindVariableDeclaration)
	yDecl.Set("name", "y")
	yDecl.Set("stateVariable", true)
	yDecl.Set("typeName", ast.Etype("uint"))

	assign := ast.Assign(ast.Sym("y"), ast.Num(1))
	body := ast.Blk([]*ast.Node{ast.ExprStmt(assign)})

	fn := ast.NewNode(ast.KindFunctionDefinition)
	fn.Set("name", "g")
	fn.Set("kind", "function")
	fn.Set("visibility", "public")
	fn.Set("body", body)

	contract := ast.NewNode(ast.KindContractDefinition)
	contract.Set("name", "X")
	contract.Set("contractKind", "contract")
	contract.Set("nodes", []any{yDecl, fn})

	root := ast.NewNode(ast.KindSourceUnit)
	root.Set("nodes", []any{contract})
	return root
}

func TestRunRenamesUserIdentifiersConsistently(t *testing.T) {
	root := buildSample()
	seed := int64(42)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	contract := root.GetList("nodes").GetNode(0)
	renamedContract := contract.GetString("name")
	assert.NotEqual(t, "X", renamedContract)
	assert.Len(t, strings.TrimPrefix(renamedContract, "_"), 40)

	members := contract.GetList("nodes")
	yDecl := members.GetNode(0)
	fn := members.GetNode(1)

	renamedY := yDecl.GetString("name")
	assert.NotEqual(t, "y", renamedY)
	assert.Len(t, strings.TrimPrefix(renamedY, "_"), 40)

	renamedG := fn.GetString("name")
	assert.NotEqual(t, "g", renamedG)

	assignStmt := fn.GetNode("body").GetList("statements").GetNode(0)
	lhs := assignStmt.GetNode("expression").GetNode("leftHandSide")
	assert.Equal(t, renamedY, lhs.GetString("name"))
}

func TestRunLeavesReservedWordsAlone(t *testing.T) {
	memberAccess := ast.NewNode(ast.KindMemberAccess)
	memberAccess.Set("memberName", "sender")
	memberAccess.Set("expression", ast.Sym("msg"))

	root := ast.NewNode(ast.KindSourceUnit)
	root.Set("nodes", []any{memberAccess})

	seed := int64(1)
	ctx := passctx.New(&seed, 4)
	_, err := Run(root, ctx)
	require.NoError(t, err)

	assert.Equal(t, "sender", memberAccess.GetString("memberName"))
	assert.Equal(t, "msg", memberAccess.GetNode("expression").GetString("name"))
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	seed := int64(7)

	root1 := buildSample()
	ctx1 := passctx.New(&seed, 4)
	_, err := Run(root1, ctx1)
	require.NoError(t, err)

	root2 := buildSample()
	ctx2 := passctx.New(&seed, 4)
	_, err = Run(root2, ctx2)
	require.NoError(t, err)

	name1 := root1.GetList("nodes").GetNode(0).GetString("name")
	name2 := root2.GetList("nodes").GetNode(0).GetString("name")
	assert.Equal(t, name1, name2)
}
