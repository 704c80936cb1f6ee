// Package cff implements control-flow flattening (spec.md §4.5),
// grounded on original_source/solo/plugins/controlFlowFlatten.py: a
// breadth-first construction of a control-flow graph from a function
// body, lowered into a single `while` loop dispatching on an opaque
// 128-bit state variable.
package cff

import (
	"fmt"
	"math/big"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
	"github.com/goudunz1/solobfus/internal/passes/oconst"
)

// State is the CFG's 128-bit dispatch token (spec.md §3's "State
// (CFF)"), represented as a high/low uint64 pair so it is a plain
// comparable Go value usable as a map key without the allocation of a
// *big.Int per comparison.
type State struct {
	Hi, Lo uint64
}

// Big converts s to an arbitrary-precision integer for literal
// emission via ast.NumBig.
func (s State) Big() *big.Int {
	v := new(big.Int).SetUint64(s.Hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(s.Lo))
	return v
}

// Num builds the synthetic integer literal node for s.
func (s State) Num() *ast.Node { return ast.NumBig(s.Big()) }

// BasicBlock is a maximal straight-line run of statements ending in a
// successor choice (spec.md §3). Cond is nil for an unconditional
// block, whose sole successor is NextState; when Cond is present the
// successor is JumpState on a truthy evaluation, NextState otherwise.
type BasicBlock struct {
	State     State
	NextState State
	Body      []*ast.Node
	Cond      *ast.Node
	JumpState State
}

// CFG is the transient per-function control-flow graph (spec.md §3).
type CFG struct {
	InitState State
	EndState  State
	Blocks    map[State]*BasicBlock
	// Order preserves block-insertion order, so lowering emits the
	// dispatch cascade deterministically for a given seed (matching
	// the Python original's reliance on dict insertion order).
	Order  []State
	states map[State]bool
}

func newCFG() *CFG {
	return &CFG{
		Blocks: make(map[State]*BasicBlock),
		states: make(map[State]bool),
	}
}

// genState samples a uniform 128-bit value in [2^127, 2^128-1],
// resampling on collision within this CFG (spec.md §3, §4.5).
func (cfg *CFG) genState(ctx *passctx.Context) State {
	for {
		hi := ctx.Rand.Uint64() | (uint64(1) << 63)
		lo := ctx.Rand.Uint64()
		s := State{Hi: hi, Lo: lo}
		if !cfg.states[s] {
			cfg.states[s] = true
			return s
		}
	}
}

// addBB registers a basic block, rejecting a duplicate or
// never-generated state (spec.md §4.5's "State allocation rejects
// duplicates").
func (cfg *CFG) addBB(state, nextState State, body []*ast.Node, cond *ast.Node, jumpState State) error {
	if _, exists := cfg.Blocks[state]; exists {
		return fmt.Errorf("cff: conflicting state in CFG, check it again")
	}
	if !cfg.states[state] {
		return fmt.Errorf("cff: unknown state in CFG, check it again")
	}
	cfg.Blocks[state] = &BasicBlock{
		State: state, NextState: nextState, Body: body,
		Cond: cond, JumpState: jumpState,
	}
	cfg.Order = append(cfg.Order, state)
	return nil
}

// segment is the BFS work-queue item (StateSegment in the Python
// original): a run of statements not yet lowered to a block, carrying
// the enclosing loop's continue/break targets (nil outside a loop).
type segment struct {
	state      State
	nextState  State
	body       []*ast.Node
	continueAt *State
	breakTo    *State
}

// blockStatements returns n's statement list when n is a Block, or a
// single-element list otherwise — Solidity permits a brace-less
// statement in trueBody/falseBody/loop bodies, which this flattens the
// same way as an equivalent one-statement Block.
func blockStatements(n *ast.Node) []*ast.Node {
	if n == nil {
		return nil
	}
	if n.Kind == ast.KindBlock {
		return n.Main().Nodes()
	}
	return []*ast.Node{n}
}

// appendNonNil appends extra to list only when extra is non-nil, since
// a ForStatement's initializationExpression/loopExpression may be
// absent (`for (;cond;)`).
func appendNonNil(list []*ast.Node, extra *ast.Node) []*ast.Node {
	if extra == nil {
		return list
	}
	return append(list, extra)
}

// genCFG performs the breadth-first walk of spec.md §4.5, building the
// CFG for one function body.
func genCFG(body []*ast.Node, ctx *passctx.Context) (*CFG, error) {
	cfg := newCFG()
	cfg.InitState = cfg.genState(ctx)
	cfg.EndState = cfg.genState(ctx)

	queue := []segment{{state: cfg.InitState, nextState: cfg.EndState, body: body}}

	for len(queue) > 0 {
		ss := queue[0]
		queue = queue[1:]

		continueAt := ss.continueAt
		breakTo := ss.breakTo
		matched := false

	stmtLoop:
		for i, x := range ss.body {
			switch x.Kind {
			case ast.KindContinue:
				if continueAt == nil {
					return nil, ast.NewMalformedAST(x.Kind, "cff: continue statement outside a loop, the AST may be broken")
				}
				if err := cfg.addBB(ss.state, *continueAt, ss.body[:i], nil, State{}); err != nil {
					return nil, err
				}
				matched = true
				break stmtLoop
			case ast.KindBreak:
				if breakTo == nil {
					return nil, ast.NewMalformedAST(x.Kind, "cff: break statement outside a loop, the AST may be broken")
				}
				if err := cfg.addBB(ss.state, *breakTo, ss.body[:i], nil, State{}); err != nil {
					return nil, err
				}
				matched = true
				break stmtLoop
			}

			if !ast.IsBranchStatement(x.Kind) {
				continue
			}

			var finalState State
			if i == len(ss.body)-1 {
				finalState = ss.nextState
			} else {
				finalState = cfg.genState(ctx)
				queue = append(queue, segment{
					state: finalState, nextState: ss.nextState,
					body: ss.body[i+1:], continueAt: continueAt, breakTo: breakTo,
				})
			}

			switch x.Kind {
			case ast.KindIfStatement:
				trueBody := blockStatements(x.GetNode("trueBody"))
				var trueState State
				if len(trueBody) == 0 {
					trueState = finalState
				} else {
					trueState = cfg.genState(ctx)
					queue = append(queue, segment{
						state: trueState, nextState: finalState,
						body: trueBody, continueAt: continueAt, breakTo: breakTo,
					})
				}

				falseState := finalState
				if x.Has("falseBody") {
					falseBody := blockStatements(x.GetNode("falseBody"))
					if len(falseBody) > 0 {
						falseState = cfg.genState(ctx)
						queue = append(queue, segment{
							state: falseState, nextState: finalState,
							body: falseBody, continueAt: continueAt, breakTo: breakTo,
						})
					}
				}

				if err := cfg.addBB(ss.state, falseState, ss.body[:i], x.GetNode("condition"), trueState); err != nil {
					return nil, err
				}

			case ast.KindForStatement:
				condState := cfg.genState(ctx)
				loopState := cfg.genState(ctx)
				trueState := cfg.genState(ctx)

				loopBody := appendNonNil(blockStatements(x.GetNode("body")), x.GetNode("loopExpression"))
				queue = append(queue, segment{
					state: trueState, nextState: loopState, body: loopBody,
					continueAt: &loopState, breakTo: &finalState,
				})

				entryBody := appendNonNil(append([]*ast.Node{}, ss.body[:i]...), x.GetNode("initializationExpression"))
				if err := cfg.addBB(ss.state, condState, entryBody, nil, State{}); err != nil {
					return nil, err
				}
				if err := cfg.addBB(condState, finalState, nil, x.GetNode("condition"), trueState); err != nil {
					return nil, err
				}
				if err := cfg.addBB(loopState, condState, appendNonNil(nil, x.GetNode("loopExpression")), nil, State{}); err != nil {
					return nil, err
				}

			case ast.KindWhileStatement, ast.KindDoWhileStatement:
				condState := cfg.genState(ctx)
				whileBody := blockStatements(x.GetNode("body"))

				var trueState State
				if len(whileBody) == 0 {
					trueState = condState
				} else {
					trueState = cfg.genState(ctx)
					queue = append(queue, segment{
						state: trueState, nextState: condState, body: whileBody,
						continueAt: &condState, breakTo: &finalState,
					})
				}

				if x.Kind == ast.KindWhileStatement {
					if err := cfg.addBB(ss.state, condState, ss.body[:i], nil, State{}); err != nil {
						return nil, err
					}
				} else {
					if err := cfg.addBB(ss.state, trueState, ss.body[:i], nil, State{}); err != nil {
						return nil, err
					}
				}
				if err := cfg.addBB(condState, finalState, nil, x.GetNode("condition"), trueState); err != nil {
					return nil, err
				}
			}

			matched = true
			break stmtLoop
		}

		if !matched {
			if err := cfg.addBB(ss.state, ss.nextState, ss.body, nil, State{}); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// Run flattens every function body reachable from root (spec.md §4.5).
// Modifiers are left alone: spec.md §4.5 scopes CFF to
// "function-definition"s; opaque predicates (internal/passes/opredic)
// are the pass that also touches modifier bodies.
func Run(root *ast.Node, ctx *passctx.Context) (*ast.Node, error) {
	for _, fn := range ast.Functions(root) {
		if fn.Kind != ast.KindFunctionDefinition {
			continue
		}
		body := fn.GetNode("body")
		if body == nil {
			continue
		}
		if err := flattenBody(body, ctx); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// flattenBody builds the CFG for body's statements and replaces them
// with the state-dispatch loop of spec.md §4.5's "Lowering".
func flattenBody(body *ast.Node, ctx *passctx.Context) error {
	statements := body.Main().Nodes()
	cfg, err := genCFG(statements, ctx)
	if err != nil {
		return err
	}

	stateName := oconst.RandomName(ctx, 16)
	stateDecl := ast.VarStmt(stateName, cfg.InitState.Num(), "uint")
	exitCond := ast.Ne(ast.Sym(stateName), cfg.EndState.Num())

	var switchBody []*ast.Node
	for _, state := range cfg.Order {
		if state == cfg.EndState {
			continue
		}
		bb := cfg.Blocks[state]

		caseBody := append([]*ast.Node{}, bb.Body...)

		var stateUpdate *ast.Node
		if bb.Cond != nil {
			trueAssign := ast.ExprStmt(ast.Assign(ast.Sym(stateName), bb.JumpState.Num()))
			falseAssign := ast.ExprStmt(ast.Assign(ast.Sym(stateName), bb.NextState.Num()))
			stateUpdate = ast.If(bb.Cond, trueAssign, falseAssign)
		} else {
			stateUpdate = ast.ExprStmt(ast.Assign(ast.Sym(stateName), bb.NextState.Num()))
		}
		caseBody = append(caseBody, stateUpdate, ast.ContinueStmt())

		caseCond := ast.Eq(ast.Sym(stateName), state.Num())
		switchBody = append(switchBody, ast.If(caseCond, ast.Blk(caseBody), nil))
	}

	whileStmt := ast.While(exitCond, ast.Blk(switchBody))
	body.SetMain([]any{stateDecl, whileStmt})
	return nil
}
