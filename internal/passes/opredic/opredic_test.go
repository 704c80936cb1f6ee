package opredic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

// buildSample constructs `contract A { function f() internal { return; } }`.
func buildSample() *ast.Node {
	body := ast.Blk([]*ast.Node{ast.ReturnStmt(nil)})

	fn := ast.NewNode(ast.KindFunctionDefinition)
	fn.Set("name", "f")
	fn.Set("kind", "function")
	fn.Set("visibility", "internal")
	fn.Set("parameters", ast.NewNode(ast.KindParameterList))
	fn.Set("body", body)

	contract := ast.NewNode(ast.KindContractDefinition)
	contract.Set("name", "A")
	contract.Set("contractKind", "contract")
	contract.Set("nodes", []any{fn})

	root := ast.NewNode(ast.KindSourceUnit)
	root.Set("nodes", []any{contract})
	return root
}

func TestRunWrapsBodyInFalsePredicate(t *testing.T) {
	root := buildSample()
	seed := int64(3)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	fn := ast.Functions(root)[0]
	stmts := fn.GetNode("body").Main().Nodes()
	require.Len(t, stmts, 3)
	assert.Equal(t, ast.KindVariableDeclarationStatement, stmts[0].Kind)
	assert.Equal(t, ast.KindVariableDeclarationStatement, stmts[1].Kind)
	require.Equal(t, ast.KindIfStatement, stmts[2].Kind)

	guard := stmts[2]
	trueBranch := guard.GetNode("trueBody").Main().Nodes()
	assert.Len(t, trueBranch, 4, "default junk length is 4")
	for _, s := range trueBranch {
		assert.Equal(t, ast.KindExpressionStatement, s.Kind)
	}

	falseBranch := guard.GetNode("falseBody").Main().Nodes()
	require.Len(t, falseBranch, 1)
	assert.Equal(t, ast.KindReturn, falseBranch[0].Kind)
}

func TestRunRespectsJunkStatementsCount(t *testing.T) {
	root := buildSample()
	seed := int64(9)
	ctx := passctx.New(&seed, 2)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	fn := ast.Functions(root)[0]
	guard := fn.GetNode("body").Main().Nodes()[2]
	assert.Len(t, guard.GetNode("trueBody").Main().Nodes(), 2)
}
