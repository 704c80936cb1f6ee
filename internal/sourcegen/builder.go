// Package sourcegen reconstructs Solidity source text from an
// *ast.Node tree: a stack-based pre-order token emitter with
// lexical-separator insertion and optional indentation, grounded in
// solidity/nodes.py's SourceBuilder (spec.md §4.2).
package sourcegen

import (
	"strings"

	"github.com/goudunz1/solobfus/internal/ast"
)

const identChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789$_"

func isIdentByte(b byte) bool {
	return strings.IndexByte(identChars, b) >= 0
}

// Builder accumulates emitted tokens for one Build call.
type Builder struct {
	verbose bool
	indent  int

	tokens  strings.Builder
	last    byte
	hasLast bool

	semi, comma, lbrace, rbrace string
}

// New creates a Builder. verbose selects indented, newline-delimited
// output; indent is the number of spaces per nesting level (ignored
// when verbose is false).
func New(verbose bool, indent int) *Builder {
	b := &Builder{verbose: verbose, indent: indent}
	if verbose {
		b.semi, b.comma = ";\n", ",\n"
		b.lbrace, b.rbrace = "{\n", "}\n"
	} else {
		b.semi, b.comma = ";", ","
		b.lbrace, b.rbrace = "{", "}"
	}
	return b
}

// Build serializes root to Solidity source text.
func Build(root *ast.Node, verbose bool, indent int) string {
	return New(verbose, indent).Build(root)
}

func (b *Builder) make(tok string) {
	if tok == "" {
		return
	}
	if b.hasLast && isIdentByte(b.last) && isIdentByte(tok[0]) {
		b.tokens.WriteByte(' ')
	}
	b.tokens.WriteString(tok)
	b.last = tok[len(tok)-1]
	b.hasLast = true
}

// Build runs the stack-based pre-order traversal described in
// spec.md §4.2.
func (b *Builder) Build(root *ast.Node) string {
	stack := []any{root}
	shift := 0
	newLine := false

	push := func(items []any) {
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, items[i])
		}
	}

	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := x.(type) {
		case string:
			if b.verbose {
				if v == b.lbrace {
					shift += b.indent
				} else if v == b.rbrace {
					shift -= b.indent
				}
				if newLine && shift > 0 {
					b.make(strings.Repeat(" ", shift))
				}
				newLine = false
				if strings.HasSuffix(v, "\n") {
					newLine = true
				}
			}
			b.make(v)
		case *ast.Node:
			push(b.emit(v))
		default:
			// Undefined behavior: skip silently, mirroring the
			// Python build()'s logged-and-ignored fallback.
		}
	}

	out := b.tokens.String()
	b.tokens.Reset()
	b.last = 0
	b.hasLast = false
	return out
}

// --- cache-equivalent helpers used by emit() in tokenize.go ---

func tuple(elements []any, format string) []any {
	var out []any
	if len(format) == 2 {
		out = append(out, string(format[0]))
	}
	for i, e := range elements {
		if i > 0 {
			out = append(out, ",")
		}
		out = append(out, e)
	}
	if len(format) == 2 {
		out = append(out, string(format[1]))
	}
	return out
}

func (b *Builder) blk(body []any) []any {
	out := make([]any, 0, len(body)+2)
	out = append(out, b.lbrace)
	out = append(out, body...)
	out = append(out, b.rbrace)
	return out
}

func (b *Builder) dict(values []any, keys []string) []any {
	var out []any
	out = append(out, b.lbrace)
	if len(values) > 0 {
		if keys != nil {
			for i, v := range values {
				if i > 0 {
					out = append(out, b.comma)
				}
				out = append(out, keys[i], ":", v)
			}
		} else {
			for i, v := range values {
				if i > 0 {
					out = append(out, b.comma)
				}
				out = append(out, v)
			}
		}
	}
	if b.verbose {
		out = append(out, "\n")
	}
	out = append(out, b.rbrace)
	return out
}
