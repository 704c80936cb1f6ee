package oconst

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

// buildSample constructs `pragma solidity ^0.8.0; contract A { uint public x = 42; }`.
func buildSample() *ast.Node {
	literal := ast.NewNode(ast.KindLiteral)
	literal.Set("kind", "number")
	literal.Set("value", "42")
	literal.Set("typeDescriptions", map[string]any{
		"typeIdentifier": "t_rational_42_by_1",
		"typeString":     "int_const 42",
	})

	decl := ast.NewNode(ast.KindVariableDeclaration)
	decl.Set("name", "x")
	decl.Set("stateVariable", true)
	decl.Set("visibility", "public")
	decl.Set("typeName", ast.Etype("uint"))
	decl.Set("value", literal)

	contract := ast.NewNode(ast.KindContractDefinition)
	contract.Set("name", "A")
	contract.Set("contractKind", "contract")
	contract.Set("nodes", []any{decl})

	pragma := ast.NewNode(ast.KindPragmaDirective)
	pragma.Set("literals", []string{"solidity", "^0.8.0"})

	root := ast.NewNode(ast.KindSourceUnit)
	root.Set("nodes", []any{pragma, contract})
	return root
}

func TestRunInsertsTwoConstantsAfterPragma(t *testing.T) {
	root := buildSample()
	seed := int64(1)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	nodes := root.GetList("nodes")
	require.Equal(t, 4, nodes.Len())
	assert.Equal(t, ast.KindPragmaDirective, nodes.GetNode(0).Kind)
	assert.Equal(t, ast.KindVariableDeclaration, nodes.GetNode(1).Kind)
	assert.True(t, nodes.GetNode(1).GetBool("constant"))
	assert.Equal(t, ast.KindVariableDeclaration, nodes.GetNode(2).Kind)
	assert.True(t, nodes.GetNode(2).GetBool("constant"))
	assert.Equal(t, ast.KindContractDefinition, nodes.GetNode(3).Kind)
}

func TestRunReplacesRationalLiteralWithTypeConversion(t *testing.T) {
	root := buildSample()
	seed := int64(2)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	contract := root.GetList("nodes").GetNode(3)
	decl := contract.GetList("nodes").GetNode(0)
	value := decl.GetNode("value")

	require.Equal(t, ast.KindFunctionCall, value.Kind)
	callee := value.GetNode("expression")
	require.Equal(t, ast.KindElementaryTypeNameExpression, callee.Kind)
	assert.Equal(t, "uint", callee.GetNode("typeName").GetString("name"))
}

func TestParseRationalPositive(t *testing.T) {
	num, den, ok := parseRational("t_rational_42_by_1")
	require.True(t, ok)
	assert.Equal(t, big.NewInt(42), num)
	assert.Equal(t, int64(1), den)
}

func TestParseRationalNegative(t *testing.T) {
	num, den, ok := parseRational("t_rational_minus_2_by_1")
	require.True(t, ok)
	assert.Equal(t, big.NewInt(-2), num)
	assert.Equal(t, int64(1), den)
}

func TestCoprimePairIsCoprime(t *testing.T) {
	seed := int64(99)
	ctx := passctx.New(&seed, 4)
	x, y := coprimePair(ctx)

	g := new(big.Int).GCD(nil, nil, x, y)
	assert.Equal(t, big.NewInt(1), g)
	assert.Equal(t, 127, x.BitLen())
	assert.Equal(t, 127, y.BitLen())
}

func TestOpaqueIntEvaluatesToValue(t *testing.T) {
	seed := int64(3)
	ctx := passctx.New(&seed, 4)
	x, y := coprimePair(ctx)

	m := big.NewInt(12345)
	node := opaqueInt(m, x, "x", y, "y", ctx)

	// node is `aa*x - bb*y` or `bb*y - aa*x`; evaluate it directly using
	// the literal coefficients emitted, substituting x and y.
	left := node.GetNode("leftExpression")
	right := node.GetNode("rightExpression")
	evalTerm := func(term *ast.Node, xv, yv *big.Int) *big.Int {
		coeffHex := term.GetNode("leftExpression").GetString("value")
		coeff, ok := new(big.Int).SetString(coeffHex[2:], 16)
		require.True(t, ok)
		name := term.GetNode("rightExpression").GetString("name")
		var v *big.Int
		if name == "x" {
			v = xv
		} else {
			v = yv
		}
		return new(big.Int).Mul(coeff, v)
	}
	result := new(big.Int).Sub(evalTerm(left, x, y), evalTerm(right, x, y))
	result.Mod(result, new(big.Int).Lsh(big.NewInt(1), 128))
	assert.Equal(t, new(big.Int).Mod(m, new(big.Int).Lsh(big.NewInt(1), 128)), result)
}
