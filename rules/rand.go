//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// LegacyRandConstruction detects math/rand generator setup and suggests the
// math/rand/v2 equivalents. PCG sources take an explicit second stream word,
// which is what keeps per-trial bootstrap substreams independent of worker
// scheduling.
//
// Old patterns:
//
//	rand.Seed(seed)
//	r := rand.New(rand.NewSource(seed))
//
// New pattern (Go 1.22+):
//
//	r := rand.New(rand.NewPCG(seed, stream))
//
// See: https://pkg.go.dev/math/rand/v2#NewPCG
func LegacyRandConstruction(m dsl.Matcher) {
	m.Match(
		`rand.Seed($s)`,
	).
		Report("math/rand Seed is deprecated; build a local generator with rand.New(rand.NewPCG(seed, stream)) (math/rand/v2)")

	m.Match(
		`rand.New(rand.NewSource($s))`,
	).
		Report("use rand.New(rand.NewPCG($s, stream)) from math/rand/v2 for reproducible streams")
}

// SharedRandDraw detects draws from the package-level generator outside
// tests. Simulation and bootstrap results must be reproducible from the
// configured seed, so every draw goes through a *rand.Rand handle passed by
// the caller.
//
// Old pattern:
//
//	v := rand.Float64()
//
// New pattern:
//
//	func step(rng *rand.Rand) {
//	    v := rng.Float64()
//	}
func SharedRandDraw(m dsl.Matcher) {
	m.Match(
		`rand.Float64()`,
		`rand.NormFloat64()`,
		`rand.Int()`,
		`rand.IntN($n)`,
		`rand.Uint64()`,
		`rand.Perm($n)`,
		`rand.Shuffle($n, $fn)`,
	).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report("draw from an explicitly seeded *rand.Rand passed by the caller, not the shared package-level generator")
}
