// Package passctx holds the state threaded through every obfuscation
// pass (spec.md §4.4): a seeded random source, the opaque-predicate
// junk-statement count, and the run-scoped identifier-rename memo.
// This replaces the Python original's module-level globals
// (identifierRenaming.py's process-wide replacement dict,
// controlFlowFlatten.py's per-call random.Random(seed)) with an
// explicit value threaded by the caller — the Open Question
// resolution recorded in DESIGN.md.
package passctx

import "math/rand/v2"

// Context is passed to every pass's Run function.
type Context struct {
	Rand           *rand.Rand
	JunkStatements int
	RenameMemo     map[string]string
}

// New builds a Context seeded from seed (nil picks a
// non-deterministic seed). Passing the same seed twice reproduces the
// same sequence of pass decisions, mirroring Python's
// random.Random(seed) convention (spec.md §8's RENAME-idempotence
// property).
func New(seed *int64, junkStatements int) *Context {
	var src rand.Source
	if seed != nil {
		s := uint64(*seed)
		src = rand.NewPCG(s, s^0x9e3779b97f4a7c15)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Context{
		Rand:           rand.New(src),
		JunkStatements: junkStatements,
		RenameMemo:     make(map[string]string),
	}
}

// Name is one of the closed set of pass identifiers accepted by
// --jobs (spec.md §6).
type Name string

const (
	CFF     Name = "cff"
	OConst  Name = "oconst"
	OPredic Name = "opredic"
	DFO     Name = "dfo"
	Rename  Name = "rename"
)

// Uint128 returns a uniformly sampled value restricted to the low
// `bits` bits, as a high/low pair (math/rand/v2 only generates up to
// 64 bits at a time). The CFF state generator and the opaque-constant
// generator do not call it; they draw from Rand directly.
func (c *Context) Uint128(bits int) (hi, lo uint64) {
	lo = c.Rand.Uint64()
	hi = c.Rand.Uint64()
	if bits < 64 {
		lo &= (uint64(1) << bits) - 1
		hi = 0
	} else if bits < 128 {
		hi &= (uint64(1) << (bits - 64)) - 1
	}
	return hi, lo
}
