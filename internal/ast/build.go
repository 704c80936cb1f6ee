package ast

import (
	"math/big"
	"strconv"
)

// Synthetic builders produce nodes with zeroed source spans (offset
// (0, 0) and contract id -1), per spec.md §4.1. They are grounded in
// solidity/utils.py's SYM/NUM/BOP/UOP/... helpers, generalized to the
// full precedence-aware parenthesization table spec.md §4.1 specifies
// (the Python original blanket-parenthesizes any non-leaf operand
// instead).

// precedence is the operator-precedence table of spec.md §4.1. Lower
// numbers bind tighter. Operators absent from the table (e.g.
// assignment operators) are treated as binding tighter than anything
// in the table, since no spec.md rule requires wrapping them here.
var precedence = map[string]int{
	"**":  3,
	"*":   4,
	"/":   4,
	"%":   4,
	"+":   5,
	"-":   5,
	"<<":  6,
	">>":  6,
	"&":   7,
	"^":   8,
	"|":   9,
	"<":   10,
	">":   10,
	"<=":  10,
	">=":  10,
	"==":  11,
	"!=":  11,
	"&&":  12,
	"||":  13,
}

func precOf(n *Node) (int, bool) {
	if n.Kind != KindBinaryOperation {
		return 0, false
	}
	p, ok := precedence[n.GetString("operator")]
	return p, ok
}

// wrapOperand parenthesizes expr (via a synthetic TupleExpression) when
// required by the precedence table, given the context operator's
// precedence number and whether expr sits in the right operand slot
// (right operands wrap on ties, to stay safe under left-associativity,
// per spec.md §4.1).
func wrapOperand(expr *Node, ctxPrec int, isRight bool) *Node {
	p, ok := precOf(expr)
	if !ok {
		if expr.Kind == KindUnaryOperation {
			// A unary operation binds tighter than every binary
			// operator in the table; it never needs wrapping as an
			// operand of a BinaryOperation.
			return expr
		}
		return expr
	}
	if isRight {
		if p >= ctxPrec {
			return Paren(expr)
		}
	} else {
		if p > ctxPrec {
			return Paren(expr)
		}
	}
	return expr
}

// Sym builds a synthetic Identifier.
func Sym(name string) *Node {
	n := NewNode(KindIdentifier)
	n.Span = Span{ContractID: -1}
	n.Set("name", name)
	return n
}

// Num builds a synthetic integer Literal. Lexical-level numbers are
// always emitted non-negative (NUM in utils.py); negative values are
// produced via Neg(Num(...)).
func Num(value uint64) *Node {
	n := NewNode(KindLiteral)
	n.Span = Span{ContractID: -1}
	n.Set("kind", "number")
	if value > 255 {
		n.Set("value", "0x"+strconv.FormatUint(value, 16))
	} else {
		n.Set("value", strconv.FormatUint(value, 10))
	}
	n.Set("hexValue", "0x"+strconv.FormatUint(value, 16))
	return n
}

// NumBig builds a synthetic integer Literal from an arbitrary-precision
// non-negative value, used by the opaque-constant pass whose constants
// exceed 64 bits. Always emitted in hex, like Num for values above 255.
func NumBig(value *big.Int) *Node {
	n := NewNode(KindLiteral)
	n.Span = Span{ContractID: -1}
	n.Set("kind", "number")
	hexText := "0x" + value.Text(16)
	n.Set("value", hexText)
	n.Set("hexValue", hexText)
	return n
}

// BoolLit builds a synthetic boolean Literal.
func BoolLit(value bool) *Node {
	n := NewNode(KindLiteral)
	n.Span = Span{ContractID: -1}
	n.Set("kind", "bool")
	if value {
		n.Set("value", "true")
	} else {
		n.Set("value", "false")
	}
	return n
}

// Paren wraps expr in a synthetic single-element TupleExpression,
// which the source builder emits as "(expr)".
func Paren(expr *Node) *Node {
	n := NewNode(KindTupleExpression)
	n.Span = Span{ContractID: -1}
	n.Set("isInlineArray", false)
	n.Set("components", []any{expr})
	return n
}

// Bop builds a BinaryOperation, wrapping either operand per the
// precedence table when it is itself a BinaryOperation that binds
// looser than op.
func Bop(op string, left, right *Node) *Node {
	ctxPrec, known := precedence[op]
	if known {
		left = wrapOperand(left, ctxPrec, false)
		right = wrapOperand(right, ctxPrec, true)
	}
	n := NewNode(KindBinaryOperation)
	n.Span = Span{ContractID: -1}
	n.Set("operator", op)
	n.Set("leftExpression", left)
	n.Set("rightExpression", right)
	return n
}

// Uop builds a UnaryOperation. Any BinaryOperation operand is always
// wrapped (spec.md §4.1: "Unary negation, logical-not, and bitwise-not
// wrap any binary-operation operand").
func Uop(op string, sub *Node) *Node {
	if sub.Kind == KindBinaryOperation {
		sub = Paren(sub)
	}
	n := NewNode(KindUnaryOperation)
	n.Span = Span{ContractID: -1}
	n.Set("operator", op)
	n.Set("prefix", true)
	n.Set("subExpression", sub)
	return n
}

func Add(l, r *Node) *Node  { return Bop("+", l, r) }
func Sub(l, r *Node) *Node  { return Bop("-", l, r) }
func Mul(l, r *Node) *Node  { return Bop("*", l, r) }
func And(l, r *Node) *Node  { return Bop("&", l, r) }
func Or(l, r *Node) *Node   { return Bop("|", l, r) }
func Xor(l, r *Node) *Node  { return Bop("^", l, r) }
func Mod(l, r *Node) *Node  { return Bop("%", l, r) }
func Lsh(l, r *Node) *Node  { return Bop("<<", l, r) }
func Rsh(l, r *Node) *Node  { return Bop(">>", l, r) }
func Eq(l, r *Node) *Node   { return Bop("==", l, r) }
func Ne(l, r *Node) *Node   { return Bop("!=", l, r) }
func Le(l, r *Node) *Node   { return Bop("<=", l, r) }
func Ge(l, r *Node) *Node   { return Bop(">=", l, r) }
func Lt(l, r *Node) *Node   { return Bop("<", l, r) }
func Gt(l, r *Node) *Node   { return Bop(">", l, r) }
func Land(l, r *Node) *Node { return Bop("&&", l, r) }
func Lor(l, r *Node) *Node  { return Bop("||", l, r) }
func Not(x *Node) *Node     { return Uop("~", x) }
func Neg(x *Node) *Node     { return Uop("-", x) }
func LNot(x *Node) *Node    { return Uop("!", x) }

// Etype builds a synthetic ElementaryTypeName.
func Etype(name string) *Node {
	n := NewNode(KindElementaryTypeName)
	n.Span = Span{ContractID: -1}
	n.Set("name", name)
	return n
}

// EtypeExpr builds a synthetic ElementaryTypeNameExpression, used as
// the callee of an elementary-type conversion call (e.g. uint(...)).
func EtypeExpr(name string) *Node {
	n := NewNode(KindElementaryTypeNameExpression)
	n.Span = Span{ContractID: -1}
	n.Set("typeName", Etype(name))
	return n
}

// TypeConv builds a call converting expr to the elementary type
// typeName, e.g. TypeConv("uint", x) emits "uint(x)".
func TypeConv(typeName string, expr *Node) *Node {
	n := NewNode(KindFunctionCall)
	n.Span = Span{ContractID: -1}
	n.Set("expression", EtypeExpr(typeName))
	n.Set("arguments", []any{expr})
	n.Set("names", []string{})
	return n
}

// FunCall builds a call to a named function with positional arguments.
func FunCall(name string, args []*Node) *Node {
	raw := make([]any, len(args))
	for i, a := range args {
		raw[i] = a
	}
	n := NewNode(KindFunctionCall)
	n.Span = Span{ContractID: -1}
	n.Set("expression", Sym(name))
	n.Set("arguments", raw)
	n.Set("names", []string{})
	return n
}

// ExprStmt wraps expr as an ExpressionStatement.
func ExprStmt(expr *Node) *Node {
	n := NewNode(KindExpressionStatement)
	n.Span = Span{ContractID: -1}
	n.Set("expression", expr)
	return n
}

// Assign builds an Assignment lhs = rhs.
func Assign(lhs, rhs *Node) *Node {
	n := NewNode(KindAssignment)
	n.Span = Span{ContractID: -1}
	n.Set("operator", "=")
	n.Set("leftHandSide", lhs)
	n.Set("rightHandSide", rhs)
	return n
}

// VarDecl builds a synthetic VariableDeclaration. value may be nil
// (declaration without initializer, as used for parameters).
func VarDecl(name string, value *Node, constant bool, etype string) *Node {
	n := NewNode(KindVariableDeclaration)
	n.Span = Span{ContractID: -1}
	n.Set("typeName", Etype(etype))
	n.Set("constant", constant)
	n.Set("storageLocation", "default")
	n.Set("visibility", "internal")
	n.Set("mutability", map[bool]string{true: "constant", false: "mutable"}[constant])
	n.Set("name", name)
	if value != nil {
		n.Set("value", value)
	}
	return n
}

// VarStmt builds `<etype> name = value;` as a
// VariableDeclarationStatement.
func VarStmt(name string, value *Node, etype string) *Node {
	n := NewNode(KindVariableDeclarationStatement)
	n.Span = Span{ContractID: -1}
	decl := VarDecl(name, nil, false, etype)
	n.Set("declarations", []any{decl})
	n.Set("initialValue", value)
	return n
}

// Blk wraps statements in a synthetic Block.
func Blk(statements []*Node) *Node {
	raw := make([]any, len(statements))
	for i, s := range statements {
		raw[i] = s
	}
	n := NewNode(KindBlock)
	n.Span = Span{ContractID: -1}
	n.Set("statements", raw)
	return n
}

// If builds an IfStatement. falseBody may be nil.
func If(cond, trueBody, falseBody *Node) *Node {
	n := NewNode(KindIfStatement)
	n.Span = Span{ContractID: -1}
	n.Set("condition", cond)
	n.Set("trueBody", trueBody)
	if falseBody != nil {
		n.Set("falseBody", falseBody)
	}
	return n
}

// While builds a WhileStatement.
func While(cond, body *Node) *Node {
	n := NewNode(KindWhileStatement)
	n.Span = Span{ContractID: -1}
	n.Set("condition", cond)
	n.Set("body", body)
	return n
}

// DoWhile builds a DoWhileStatement.
func DoWhile(cond, body *Node) *Node {
	n := NewNode(KindDoWhileStatement)
	n.Span = Span{ContractID: -1}
	n.Set("condition", cond)
	n.Set("body", body)
	return n
}

// For builds a ForStatement.
func For(initExpr, cond, loopExpr, body *Node) *Node {
	n := NewNode(KindForStatement)
	n.Span = Span{ContractID: -1}
	n.Set("initializationExpression", initExpr)
	n.Set("condition", cond)
	n.Set("loopExpression", loopExpr)
	n.Set("body", body)
	return n
}

// ContinueStmt and BreakStmt build the parameterless jump statements.
func ContinueStmt() *Node {
	n := NewNode(KindContinue)
	n.Span = Span{ContractID: -1}
	return n
}

func BreakStmt() *Node {
	n := NewNode(KindBreak)
	n.Span = Span{ContractID: -1}
	return n
}

// ReturnStmt wraps expr (nil for a bare `return;`) as a Return.
func ReturnStmt(expr *Node) *Node {
	n := NewNode(KindReturn)
	n.Span = Span{ContractID: -1}
	if expr != nil {
		n.Set("expression", expr)
	}
	return n
}

// IndexAccessExpr builds base[index].
func IndexAccessExpr(base, index *Node) *Node {
	n := NewNode(KindIndexAccess)
	n.Span = Span{ContractID: -1}
	n.Set("baseExpression", base)
	n.Set("indexExpression", index)
	return n
}
