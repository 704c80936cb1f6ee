// Package oconst implements opaque-constant obfuscation (spec.md §4.6),
// grounded on original_source/solo/plugins/oconst.py: every integer
// literal is replaced by a Bezout-identity linear combination of two
// fresh coprime 127-bit constants declared at the top of the source
// file.
package oconst

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

const identBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const identBytesTail = identBytes + "0123456789$_"

var mask128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// opaqueZeroBuilders mirrors the Python OPAQUE0 tuple: two tautological
// identities that evaluate to zero for any x, y.
var opaqueZeroBuilders = []func(xName, yName string) *ast.Node{
	// x^y == x&~y | ~x&y
	func(xName, yName string) *ast.Node {
		x, y := ast.Sym(xName), ast.Sym(yName)
		return ast.Sub(
			ast.Xor(x, y),
			ast.Or(ast.And(x, ast.Not(y)), ast.And(ast.Not(x), y)),
		)
	},
	// ~x|y == ~(x&~y)
	func(xName, yName string) *ast.Node {
		x, y := ast.Sym(xName), ast.Sym(yName)
		return ast.Sub(
			ast.Or(ast.Not(x), y),
			ast.Not(ast.And(x, ast.Not(y))),
		)
	},
}

// Run walks every SourceUnit reachable via root, inserting two fresh
// coprime constants at the top and replacing every t_rational_* typed
// expression with an opaque arithmetic equivalent.
func Run(root *ast.Node, ctx *passctx.Context) (*ast.Node, error) {
	if root.Kind != ast.KindSourceUnit {
		return root, nil
	}

	xName, yName := randomName(ctx, 16), randomName(ctx, 16)
	x, y := coprimePair(ctx)

	xDecl := ast.VarDecl(xName, ast.NumBig(x), true, "int")
	yDecl := ast.VarDecl(yName, ast.NumBig(y), true, "int")

	nodes := root.GetList("nodes")
	idx := leadingDirectiveCount(nodes)
	nodes.Insert(idx, yDecl)
	nodes.Insert(idx, xDecl)

	replaceRationals(root, x, xName, y, yName, ctx)

	return root, nil
}

// leadingDirectiveCount counts the prefix of nodes list that are
// directives (pragma/import/using), the insertion point the original
// places its fresh constants after.
func leadingDirectiveCount(nodes *ast.NodeList) int {
	count := 0
	for i := 0; i < nodes.Len(); i++ {
		n := nodes.GetNode(i)
		if n == nil {
			break
		}
		switch string(n.Kind) {
		case "PragmaDirective", "ImportDirective", "UsingForDirective":
			count++
		default:
			return count
		}
	}
	return count
}

func replaceRationals(root *ast.Node, x *big.Int, xName string, y *big.Int, yName string, ctx *passctx.Context) {
	var visit func(n *ast.Node)
	visit = func(n *ast.Node) {
		if typeDesc, ok := n.Get("typeDescriptions").(map[string]any); ok {
			if typeIdentifier, ok := typeDesc["typeIdentifier"].(string); ok && strings.HasPrefix(typeIdentifier, "t_rational") {
				numerator, denominator, ok := parseRational(typeIdentifier)
				if ok && denominator == 1 {
					expr := buildOpaqueValue(numerator, x, xName, y, yName, ctx)
					_ = ast.ReplaceWith(n, expr)
				}
				return
			}
		}
		for _, child := range n.ChildNodes() {
			visit(child)
		}
	}
	visit(root)
}

// parseRational parses a t_rational_[minus_]<num>_by_<den> type
// identifier, as solc emits for compile-time-evaluable literals.
func parseRational(typeIdentifier string) (numerator *big.Int, denominator int64, ok bool) {
	parts := strings.Split(typeIdentifier, "_")
	// ["t", "rational", ["minus",] <num>, "by", <den>]
	if len(parts) < 5 {
		return nil, 0, false
	}
	negative := parts[2] == "minus"
	numIdx := 2
	if negative {
		numIdx = 3
	}
	if numIdx >= len(parts) {
		return nil, 0, false
	}
	num, success := new(big.Int).SetString(parts[numIdx], 10)
	if !success {
		return nil, 0, false
	}
	if negative {
		num.Neg(num)
	}
	den, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return nil, 0, false
	}
	return num, den, true
}

// buildOpaqueValue builds the uint(...)-converted opaque-arithmetic
// expression for value, splitting into low/high 128-bit halves if
// value does not fit in 128 bits.
func buildOpaqueValue(value *big.Int, x *big.Int, xName string, y *big.Int, yName string, ctx *passctx.Context) *ast.Node {
	shifted := new(big.Int).Rsh(value, 128)
	var expr *ast.Node

	switch {
	case shifted.Sign() == 0:
		// fits in 128 unsigned bits
		inner := opaqueInt(value, x, xName, y, yName, ctx)
		expr = ast.And(inner, ast.NumBig(new(big.Int).Set(mask128)))
	case shifted.Cmp(big.NewInt(-1)) == 0:
		// fits in 128 bits as a negative two's-complement value
		inner := opaqueInt(value, x, xName, y, yName, ctx)
		expr = ast.Or(inner, ast.Lsh(ast.Neg(ast.Num(1)), ast.Num(128)))
	default:
		low := new(big.Int).And(value, mask128)
		high := new(big.Int).Rsh(value, 128)
		lowExpr := ast.And(opaqueInt(low, x, xName, y, yName, ctx), ast.NumBig(new(big.Int).Set(mask128)))
		highExpr := opaqueInt(high, x, xName, y, yName, ctx)
		expr = ast.Or(lowExpr, ast.Lsh(highExpr, ast.Num(128)))
	}

	return ast.TypeConv("uint", expr)
}

// opaqueInt generates a linear combination of x and y, by Bezout's
// identity, that evaluates to m — or, when m is zero, a fresh
// tautological-zero identity drawn from opaqueZeroBuilders.
func opaqueInt(m *big.Int, x *big.Int, xName string, y *big.Int, yName string, ctx *passctx.Context) *ast.Node {
	if m.Sign() == 0 {
		builder := opaqueZeroBuilders[ctx.Rand.IntN(len(opaqueZeroBuilders))]
		return builder(xName, yName)
	}

	mAbs := new(big.Int).Abs(m)
	sign := true
	if m.Sign() < 0 {
		sign = false
	}

	gcd, a, b := new(big.Int), new(big.Int), new(big.Int)
	gcd.GCD(a, b, x, y)

	if a.Sign() < 0 && b.Sign() > 0 {
		a.Neg(a)
		sign = !sign
	} else if a.Sign() > 0 && b.Sign() < 0 {
		b.Neg(b)
	}

	k := randomBigUint(ctx, 128)

	aa := new(big.Int).Mul(mAbs, a)
	aa.Add(aa, new(big.Int).Mul(k, y))
	aa.And(aa, mask128)

	bb := new(big.Int).Mul(mAbs, b)
	bb.Add(bb, new(big.Int).Mul(k, x))
	bb.And(bb, mask128)

	aaTerm := ast.Mul(ast.NumBig(aa), ast.Sym(xName))
	bbTerm := ast.Mul(ast.NumBig(bb), ast.Sym(yName))

	if sign {
		return ast.Sub(aaTerm, bbTerm)
	}
	return ast.Sub(bbTerm, aaTerm)
}

// coprimePair samples two fresh 127-bit positive integers with gcd 1.
// randomBigUint(ctx, 128) matches the Python original's
// random_number(bits=128), whose range [2^126, 2^127-1] always
// produces 127-bit values despite the "128" parameter name.
func coprimePair(ctx *passctx.Context) (x, y *big.Int) {
	x = randomBigUint(ctx, 128)
	for {
		y = randomBigUint(ctx, 128)
		g := new(big.Int).GCD(nil, nil, x, y)
		if g.Cmp(big.NewInt(1)) == 0 {
			return x, y
		}
	}
}

// randomBigUint samples a uniform value in [2^(bits-2), 2^(bits-1)-1],
// matching the Python original's random_number(bits).
func randomBigUint(ctx *passctx.Context, bits int) *big.Int {
	lowBound := new(big.Int).Lsh(big.NewInt(1), uint(bits-2))
	highBound := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
	span := new(big.Int).Sub(highBound, lowBound)

	words := (bits + 63) / 64
	raw := make([]byte, words*8)
	for i := 0; i < words; i++ {
		v := ctx.Rand.Uint64()
		for b := 0; b < 8; b++ {
			raw[i*8+b] = byte(v >> (8 * b))
		}
	}
	rnd := new(big.Int).SetBytes(raw)
	rnd.Mod(rnd, new(big.Int).Add(span, big.NewInt(1)))
	return rnd.Add(rnd, lowBound)
}

// RandomName and RandomNumber are exported so the CFF and DFO passes
// can share the same synthetic-name/number generators this pass uses,
// mirroring the Python original's cross-module `from .oconst import
// random_name` (controlFlowFlatten.py, dataFlowObfuscation.py) and
// `from .oconst import random_number` (opredic.py).
func RandomName(ctx *passctx.Context, length int) string { return randomName(ctx, length) }

func RandomNumber(ctx *passctx.Context) *big.Int { return randomBigUint(ctx, 128) }

// randomName builds a Solidity-legal identifier of the given length,
// starting with a letter and followed by alphanumeric/$/_ characters,
// matching the Python original's random_name.
func randomName(ctx *passctx.Context, length int) string {
	var b strings.Builder
	b.WriteByte(identBytes[ctx.Rand.IntN(len(identBytes))])
	for i := 1; i < length; i++ {
		b.WriteByte(identBytesTail[ctx.Rand.IntN(len(identBytesTail))])
	}
	return b.String()
}
