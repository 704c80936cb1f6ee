package cff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

// buildSample constructs:
//
//	contract A {
//	    function f() public {
//	        if (msg.sender == address(0)) {
//	            revert();
//	        }
//	    }
//	}
func buildSample() *ast.Node {
	memberAccess := ast.NewNode(ast.KindMemberAccess)
	memberAccess.Set("expression", ast.Sym("msg"))
	memberAccess.Set("memberName", "sender")

	cond := ast.Eq(memberAccess, ast.FunCall("address", []*ast.Node{ast.Num(0)}))

	revertCall := ast.ExprStmt(ast.FunCall("revert", nil))
	trueBody := ast.Blk([]*ast.Node{revertCall})

	ifStmt := ast.If(cond, trueBody, nil)
	body := ast.Blk([]*ast.Node{ifStmt})

	fn := ast.NewNode(ast.KindFunctionDefinition)
	fn.Set("name", "f")
	fn.Set("kind", "function")
	fn.Set("visibility", "public")
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

func TestRunFlattensFunctionBody(t *testing.T) {
	root := buildSample()
	seed := int64(7)
	ctx := passctx.New(&seed, 4)

	_, err := Run(root, ctx)
	require.NoError(t, err)

	fn := ast.Functions(root)[0]
	body := fn.GetNode("body")
	stmts := body.Main().Nodes()

	require.Len(t, stmts, 2, "flattened body should be [state decl, while loop]")
	assert.Equal(t, ast.KindVariableDeclarationStatement, stmts[0].Kind)
	assert.Equal(t, ast.KindWhileStatement, stmts[1].Kind)

	whileBody := stmts[1].GetNode("body").Main().Nodes()
	assert.NotEmpty(t, whileBody)
	for _, s := range whileBody {
		assert.Equal(t, ast.KindIfStatement, s.Kind)
	}
}

func TestGenCFGRejectsContinueOutsideLoop(t *testing.T) {
	seed := int64(1)
	ctx := passctx.New(&seed, 4)
	body := []*ast.Node{ast.ContinueStmt()}

	_, err := genCFG(body, ctx)
	require.Error(t, err)
}

func TestGenCFGSuccessorsAreClosed(t *testing.T) {
	seed := int64(42)
	ctx := passctx.New(&seed, 4)

	cond := ast.Gt(ast.Sym("x"), ast.Num(0))
	inner := ast.ExprStmt(ast.Assign(ast.Sym("x"), ast.Num(1)))
	ifStmt := ast.If(cond, ast.Blk([]*ast.Node{inner}), nil)

	cfg, err := genCFG([]*ast.Node{ifStmt}, ctx)
	require.NoError(t, err)

	for state, bb := range cfg.Blocks {
		assert.True(t, state == bb.State)
		validSuccessor := func(s State) bool {
			if s == cfg.EndState {
				return true
			}
			_, ok := cfg.Blocks[s]
			return ok
		}
		assert.True(t, validSuccessor(bb.NextState))
		if bb.Cond != nil {
			assert.True(t, validSuccessor(bb.JumpState))
		}
	}
}
