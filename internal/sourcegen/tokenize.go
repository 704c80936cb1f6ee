package sourcegen

import (
	"strconv"

	"github.com/goudunz1/solobfus/internal/ast"
)

// items safely fetches a list field's raw elements, returning nil for
// an absent field (mirrors the Python original's implicit empty-list
// defaults on e.g. modifiers/baseContracts).
func items(n *ast.Node, field string) []any {
	l := n.GetList(field)
	if l == nil {
		return nil
	}
	return l.Items()
}

func isForInitializer(n *ast.Node) bool {
	p := n.Parent()
	return p != nil && p.Kind == ast.KindForStatement && p.GetNode("initializationExpression") == n
}

func isForLoopExpression(n *ast.Node) bool {
	p := n.Parent()
	return p != nil && p.Kind == ast.KindForStatement && p.GetNode("loopExpression") == n
}

// emit returns the left-to-right sequence of string tokens and child
// Nodes that Build should push back onto its traversal stack for n.
// This is the Go rendition of every tokenize() override in
// solidity/nodes.py (spec.md §4.2); one case per node kind.
func (b *Builder) emit(n *ast.Node) []any {
	switch n.Kind {

	case ast.KindSourceUnit:
		var seq []any
		if n.Has("license") {
			seq = append(seq, "//SPDX-License-Identifier:", n.GetString("license"), "\n")
		}
		seq = append(seq, items(n, "nodes")...)
		return seq

	case ast.KindPragmaDirective:
		seq := []any{"pragma"}
		seq = append(seq, items(n, "literals")...)
		seq = append(seq, b.semi)
		return seq

	case ast.KindContractDefinition:
		var seq []any
		if n.GetBool("abstract") {
			seq = append(seq, "abstract")
		}
		seq = append(seq, n.GetString("contractKind"), n.GetString("name"))
		if base := items(n, "baseContracts"); len(base) > 0 {
			seq = append(seq, "is")
			seq = append(seq, tuple(base, "")...)
		}
		seq = append(seq, b.blk(items(n, "nodes"))...)
		return seq

	case ast.KindBlock:
		return b.blk(items(n, "statements"))

	case ast.KindInheritanceSpecifier:
		return []any{n.GetNode("baseName")}

	case ast.KindUserDefinedValueTypeDefinition:
		return []any{"type", n.GetString("name"), "is", n.GetNode("underlyingType"), b.semi}

	case ast.KindFunctionDefinition:
		return b.emitFunctionDefinition(n)

	case ast.KindModifierInvocation:
		seq := []any{n.GetNode("modifierName")}
		return append(seq, tuple(items(n, "arguments"), "()")...)

	case ast.KindOverrideSpecifier:
		seq := []any{"override"}
		return append(seq, tuple(items(n, "overrides"), "()")...)

	case ast.KindModifierDefinition:
		seq := []any{"modifier", n.GetString("name"), n.GetNode("parameters")}
		if n.GetBool("virtual") {
			seq = append(seq, "virtual")
		}
		if n.Has("overrides") {
			seq = append(seq, n.GetNode("overrides"))
		}
		if n.Has("body") {
			seq = append(seq, n.GetNode("body"))
		} else {
			seq = append(seq, b.semi)
		}
		return seq

	case ast.KindParameterList:
		return tuple(items(n, "parameters"), "()")

	case ast.KindEventDefinition:
		seq := []any{"event", n.GetString("name"), n.GetNode("parameters")}
		if n.GetBool("anonymous") {
			seq = append(seq, "anonymous")
		}
		return append(seq, b.semi)

	case ast.KindErrorDefinition:
		return []any{"error", n.GetString("name"), n.GetNode("parameters"), b.semi}

	case ast.KindEnumDefinition:
		seq := []any{"enum", n.GetString("name")}
		return append(seq, b.dict(items(n, "members"), nil)...)

	case ast.KindEnumValue:
		return []any{n.GetString("name")}

	case ast.KindStructDefinition:
		seq := []any{"struct", n.GetString("name")}
		return append(seq, b.blk(items(n, "members"))...)

	case ast.KindVariableDeclaration:
		return b.emitVariableDeclaration(n)

	case ast.KindElementaryTypeNameExpression:
		return []any{n.GetNode("typeName")}

	case ast.KindElementaryTypeName:
		if n.Has("stateMutability") && n.GetString("stateMutability") == "payable" {
			if p := n.Parent(); p != nil && p.Kind == ast.KindElementaryTypeNameExpression {
				return []any{"payable"}
			}
			return []any{n.GetString("name"), "payable"}
		}
		return []any{n.GetString("name")}

	case ast.KindUserDefinedTypeName:
		return []any{n.GetNode("pathNode")}

	case ast.KindArrayTypeName:
		if n.Has("length") {
			return []any{n.GetNode("baseType"), "[", n.GetNode("length"), "]"}
		}
		return []any{n.GetNode("baseType"), "[]"}

	case ast.KindIdentifierPath:
		return []any{n.GetString("name")}

	case ast.KindMapping:
		return []any{"mapping", "(", n.GetNode("keyType"), "=>", n.GetNode("valueType"), ")"}

	case ast.KindPlaceholderStatement:
		return []any{"_", b.semi}

	case ast.KindVariableDeclarationStatement:
		decls := items(n, "declarations")
		var seq []any
		if len(decls) > 1 {
			seq = append(seq, tuple(decls, "()")...)
		} else if len(decls) == 1 {
			seq = append(seq, decls[0])
		}
		seq = append(seq, "=", n.GetNode("initialValue"))
		if !isForInitializer(n) {
			seq = append(seq, b.semi)
		}
		return seq

	case ast.KindExpressionStatement:
		seq := []any{n.GetNode("expression")}
		if !isForLoopExpression(n) {
			seq = append(seq, b.semi)
		}
		return seq

	case ast.KindEmitStatement:
		return []any{"emit", n.GetNode("eventCall"), b.semi}

	case ast.KindRevertStatement:
		return []any{"revert", n.GetNode("errorCall"), b.semi}

	case ast.KindIfStatement:
		seq := []any{"if", "(", n.GetNode("condition"), ")", n.GetNode("trueBody")}
		if n.Has("falseBody") {
			seq = append(seq, "else", n.GetNode("falseBody"))
		}
		return seq

	case ast.KindForStatement:
		seq := []any{"for", "("}
		if n.Has("initializationExpression") {
			seq = append(seq, n.GetNode("initializationExpression"))
		}
		seq = append(seq, ";")
		if n.Has("condition") {
			seq = append(seq, n.GetNode("condition"))
		}
		seq = append(seq, ";")
		if n.Has("loopExpression") {
			seq = append(seq, n.GetNode("loopExpression"))
		}
		seq = append(seq, ")", n.GetNode("body"))
		return seq

	case ast.KindWhileStatement:
		return []any{"while", "(", n.GetNode("condition"), ")", n.GetNode("body")}

	case ast.KindDoWhileStatement:
		return []any{"do", n.GetNode("body"), "while", "(", n.GetNode("condition"), ")", b.semi}

	case ast.KindReturn:
		seq := []any{"return"}
		if n.Has("expression") {
			seq = append(seq, n.GetNode("expression"))
		}
		return append(seq, b.semi)

	case ast.KindBreak:
		return []any{"break", b.semi}

	case ast.KindContinue:
		return []any{"continue", b.semi}

	case ast.KindTupleExpression:
		comps := items(n, "components")
		if n.GetBool("isInlineArray") {
			return tuple(comps, "[]")
		}
		return tuple(comps, "()")

	case ast.KindFunctionCall:
		seq := []any{n.GetNode("expression")}
		namesList := n.GetList("names")
		if namesList != nil && namesList.Len() > 0 {
			keys := make([]string, namesList.Len())
			for i, v := range namesList.Items() {
				keys[i], _ = v.(string)
			}
			seq = append(seq, "(")
			seq = append(seq, b.dict(items(n, "arguments"), keys)...)
			seq = append(seq, ")")
		} else {
			seq = append(seq, tuple(items(n, "arguments"), "()")...)
		}
		return seq

	case ast.KindMemberAccess:
		return []any{n.GetNode("expression"), ".", n.GetString("memberName")}

	case ast.KindIndexAccess:
		return []any{n.GetNode("baseExpression"), "[", n.GetNode("indexExpression"), "]"}

	case ast.KindIndexRangeAccess:
		seq := []any{n.GetNode("baseExpression"), "["}
		if n.Has("startExpression") {
			seq = append(seq, n.GetNode("startExpression"))
		}
		seq = append(seq, ":")
		if n.Has("endExpression") {
			seq = append(seq, n.GetNode("endExpression"))
		}
		return append(seq, "]")

	case ast.KindUnaryOperation:
		return []any{n.GetString("operator"), n.GetNode("subExpression")}

	case ast.KindBinaryOperation:
		return []any{n.GetNode("leftExpression"), n.GetString("operator"), n.GetNode("rightExpression")}

	case ast.KindAssignment:
		return []any{n.GetNode("leftHandSide"), n.GetString("operator"), n.GetNode("rightHandSide")}

	case ast.KindLiteral:
		return emitLiteral(n)

	case ast.KindIdentifier:
		return []any{n.GetString("name")}

	default:
		// Unsupported construct: emit nothing and continue
		// (spec.md §7's UnsupportedConstruct is warning-level).
		return nil
	}
}

func (b *Builder) emitFunctionDefinition(n *ast.Node) []any {
	kind := n.GetString("kind")
	switch kind {
	case "constructor":
		seq := []any{"constructor", n.GetNode("parameters")}
		seq = append(seq, items(n, "modifiers")...)
		if n.GetString("stateMutability") == "payable" {
			seq = append(seq, "payable")
		}
		return append(seq, n.GetNode("body"))

	case "function", "freeFunction":
		seq := []any{"function", n.GetString("name"), n.GetNode("parameters")}
		if kind != "freeFunction" {
			seq = append(seq, n.GetString("visibility"))
		}
		if n.Has("stateMutability") {
			if sm := n.GetString("stateMutability"); sm != "nonpayable" {
				seq = append(seq, sm)
			}
		}
		seq = append(seq, items(n, "modifiers")...)
		if n.GetBool("virtual") {
			seq = append(seq, "virtual")
		}
		if n.Has("overrides") {
			seq = append(seq, n.GetNode("overrides"))
		}
		if rp := items(n, "returnParameters"); len(rp) > 0 {
			seq = append(seq, "returns", n.GetNode("returnParameters"))
		}
		if n.Has("body") {
			seq = append(seq, n.GetNode("body"))
		} else {
			seq = append(seq, b.semi)
		}
		return seq

	default:
		return nil
	}
}

func (b *Builder) emitVariableDeclaration(n *ast.Node) []any {
	var parentKind ast.Kind
	if p := n.Parent(); p != nil {
		parentKind = p.Kind
	}

	switch parentKind {
	case ast.KindContractDefinition, ast.KindSourceUnit:
		seq := []any{n.GetNode("typeName")}
		if n.GetBool("constant") {
			seq = append(seq, "constant")
		} else {
			if n.Has("visibility") {
				if vis := n.GetString("visibility"); vis != "internal" {
					seq = append(seq, vis)
				}
			}
			if n.GetString("mutability") == "immutable" {
				seq = append(seq, "immutable")
			} else if n.Has("storageLocation") {
				if sl := n.GetString("storageLocation"); sl != "default" {
					seq = append(seq, sl)
				}
			}
			if n.Has("overrides") {
				seq = append(seq, n.GetNode("overrides"))
			}
		}
		seq = append(seq, n.GetString("name"))
		if n.Has("value") {
			seq = append(seq, "=", n.GetNode("value"))
		}
		return append(seq, b.semi)

	case ast.KindStructDefinition:
		return []any{n.GetNode("typeName"), n.GetString("name"), b.semi}

	case ast.KindParameterList:
		seq := []any{n.GetNode("typeName")}
		if n.Has("indexed") && n.GetBool("indexed") {
			seq = append(seq, "indexed")
		}
		if sl := n.GetString("storageLocation"); sl != "default" {
			seq = append(seq, sl)
		}
		if name := n.GetString("name"); len(name) > 0 {
			seq = append(seq, name)
		}
		return seq

	default:
		seq := []any{n.GetNode("typeName")}
		if sl := n.GetString("storageLocation"); sl != "default" {
			seq = append(seq, sl)
		}
		return append(seq, n.GetString("name"))
	}
}

func emitLiteral(n *ast.Node) []any {
	switch n.GetString("kind") {
	case "string":
		return []any{strconv.QuoteToASCII(n.GetString("value"))}
	case "unicodeString":
		return []any{"unicode", strconv.Quote(n.GetString("value"))}
	case "hexString":
		return []any{`hex"` + n.GetString("hexValue") + `"`}
	case "number":
		seq := []any{n.GetString("value")}
		if n.Has("subdenomination") {
			seq = append(seq, n.GetString("subdenomination"))
		}
		return seq
	default:
		return []any{n.GetString("value")}
	}
}
