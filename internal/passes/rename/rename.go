// Package rename implements identifier renaming (spec.md §4.9),
// grounded on original_source/src/identifierRenaming.py: a stack-based
// traversal that replaces every user identifier with a SHA-1 digest,
// memoized so repeated occurrences of the same name resolve to the
// same replacement.
package rename

import (
	"container/list"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
)

// reserved holds the identifiers the Python original calls
// GLOBAL_VARIABLES: built-in names that must never be renamed, since
// doing so would collide with user-defined names of the same spelling.
var reserved = map[string]bool{
	"block": true, "msg": true, "sender": true, "tx": true,
	"abi": true, "require": true, "length": true, "push": true,
	"this": true, "timestamp": true, "value": true, "transfer": true,
}

// renameKinds is the closed set of node kinds the original walks for
// name/memberName/names fields. The Python source actually spells one
// entry 'ModifierDeclaration' (a typo — no such Solidity node type
// exists); this uses the correct ModifierDefinition, per spec.md.
var renameKinds = map[ast.Kind]bool{
	ast.KindContractDefinition: true,
	ast.KindStructDefinition:   true,
	ast.KindFunctionDefinition: true,
	ast.KindEventDefinition:    true,
	ast.KindVariableDeclaration: true,
	ast.KindModifierDefinition: true,
	ast.KindIdentifierPath:     true,
	ast.KindMemberAccess:       true,
	ast.KindFunctionCall:       true,
	ast.KindIdentifier:         true,
}

// Run renames every user-defined identifier reachable from root,
// replacing repeated occurrences of the same name with the same
// SHA-1-derived replacement (ctx.RenameMemo). The RNG in ctx supplies
// the per-run salt, giving deterministic output for a fixed seed
// (spec.md §8's idempotence property).
func Run(root *ast.Node, ctx *passctx.Context) (*ast.Node, error) {
	salt := fmt.Sprintf("%x", ctx.Rand.Uint64())

	replacementFor := func(name string) string {
		if r, ok := ctx.RenameMemo[name]; ok {
			return r
		}
		r := makeValidName(name, salt)
		ctx.RenameMemo[name] = r
		return r
	}

	visited := make(map[*ast.Node]bool)
	stack := list.New()
	stack.PushBack(root)

	for stack.Len() > 0 {
		n := stack.Remove(stack.Back()).(*ast.Node)
		if visited[n] {
			continue
		}
		visited[n] = true

		if renameKinds[n.Kind] {
			renameNode(n, replacementFor)
		}

		for _, child := range n.ChildNodes() {
			stack.PushBack(child)
		}
	}

	return root, nil
}

func renameNode(n *ast.Node, replacementFor func(string) string) {
	switch {
	case n.Has("name"):
		original := n.GetString("name")
		if original != "" && !reserved[original] {
			n.Set("name", replacementFor(original))
		}
	case n.Has("memberName"):
		original := n.GetString("memberName")
		if original != "" && !reserved[original] {
			n.Set("memberName", replacementFor(original))
		}
	case n.Has("names"):
		list := n.GetList("names")
		if list == nil {
			return
		}
		for i := 0; i < list.Len(); i++ {
			original, ok := list.Get(i).(string)
			if !ok || original == "" || reserved[original] {
				continue
			}
			list.Set(i, replacementFor(original))
		}
	}
}

// makeValidName hashes value with salt via SHA-1, prefixing with an
// underscore if the resulting hex digest starts with a digit (Go
// identifiers, like Solidity's, may not start with a digit).
func makeValidName(value, salt string) string {
	sum := sha1.Sum([]byte(value + "_" + salt))
	hashed := hex.EncodeToString(sum[:])
	if hashed[0] >= '0' && hashed[0] <= '9' {
		return "_" + hashed
	}
	return hashed
}
