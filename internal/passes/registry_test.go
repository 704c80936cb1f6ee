package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

func buildSample() *ast.Node {
	decl := ast.NewNode(ast.KindVariableDeclaration)
	decl.Set("name", "x")
	decl.Set("stateVariable", true)
	decl.Set("typeName", ast.Etype("uint256"))
	decl.Set("value", ast.Num(42))

	contract := ast.NewNode(ast.KindContractDefinition)
	contract.Set("name", "A")
	contract.Set("contractKind", "contract")
	contract.Set("nodes", []any{decl})

	root := ast.NewNode(ast.KindSourceUnit)
	root.Set("nodes", []any{contract})
	return root
}

func TestLookupResolvesAllKnownPasses(t *testing.T) {
	for _, name := range []string{"cff", "oconst", "opredic", "dfo", "rename"} {
		pass, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.NotNil(t, pass, name)
	}
}

func TestLookupRejectsUnknownPass(t *testing.T) {
	_, ok := Lookup("not-a-pass")
	assert.False(t, ok)
}

func TestRunThreadsRootThroughNamedPasses(t *testing.T) {
	root := buildSample()
	seed := int64(11)
	ctx := passctx.New(&seed, 4)

	out, err := Run(root, []string{"oconst", "rename"}, ctx)
	require.NoError(t, err)
	assert.Same(t, root, out)
}

func TestRunFailsFastOnUnknownPass(t *testing.T) {
	root := buildSample()
	seed := int64(1)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, []string{"oconst", "bogus"}, ctx)
	require.Error(t, err)
}
