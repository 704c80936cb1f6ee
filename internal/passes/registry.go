// Package passes wires the five obfuscation transforms
// (internal/passes/cff, oconst, opredic, dfo, rename) into the ordered
// pipeline spec.md §4.4 describes: a static registry keyed by pass
// name, resolved in the order the caller requests, threading a single
// *ast.Node root through each in turn with no copying between stages.
//
// spec.md §9 explicitly prefers this over the Python original's
// importlib-based PLUGIN_MODULE_MAP (solo/obfuscator.py), which
// resolves pass names to dynamically imported modules at runtime.
package passes

import (
	"fmt"

	"github.com/goudunz1/solobfus/internal/ast"
	"github.com/goudunz1/solobfus/internal/passctx"
	"github.com/goudunz1/solobfus/internal/passes/cff"
	"github.com/goudunz1/solobfus/internal/passes/dfo"
	"github.com/goudunz1/solobfus/internal/passes/oconst"
	"github.com/goudunz1/solobfus/internal/passes/opredic"
	"github.com/goudunz1/solobfus/internal/passes/rename"
)

// Pass is the shape every obfuscation transform implements: it takes
// and returns the SourceUnit root, mutating the AST in place
// (spec.md §4.4).
type Pass func(root *ast.Node, ctx *passctx.Context) (*ast.Node, error)

// registry is the closed set of pass names accepted by --jobs
// (spec.md §6). Unlike the Python plugin loader this is a compile-time
// map literal, so an unknown pass name is a Configuration error caught
// at argument-parsing time (see internal/config.ValidateJobs) rather
// than a failed dynamic import at pipeline time.
var registry = map[passctx.Name]Pass{
	passctx.CFF:     cff.Run,
	passctx.OConst:  oconst.Run,
	passctx.OPredic: opredic.Run,
	passctx.DFO:     dfo.Run,
	passctx.Rename:  rename.Run,
}

// Lookup resolves a pass name to its transformer, reporting whether it
// is a member of the closed set.
func Lookup(name string) (Pass, bool) {
	p, ok := registry[passctx.Name(name)]
	return p, ok
}

// Run threads root through each named pass in order, per spec.md §4.4.
// Every pass error is fatal to the pipeline (spec.md §7's propagation
// policy: "no partial output on failure") — Run stops and returns the
// first error, naming the offending pass.
func Run(root *ast.Node, names []string, ctx *passctx.Context) (*ast.Node, error) {
	for _, name := range names {
		pass, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("passes: unknown pass %q", name)
		}
		var err error
		root, err = pass(root, ctx)
		if err != nil {
			return nil, fmt.Errorf("passes: %s: %w", name, err)
		}
	}
	return root, nil
}
