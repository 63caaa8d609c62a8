//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// BenchmarkLoop detects the old benchmark iteration pattern and suggests
// b.Loop(), which keeps setup out of the timed region and prevents the
// compiler from optimizing the body away.
//
// Old pattern:
//
//	for i := 0; i < b.N; i++ { work() }
//
// New pattern (Go 1.24+):
//
//	for b.Loop() { work() }
//
// See: https://pkg.go.dev/testing#B.Loop
func BenchmarkLoop(m dsl.Matcher) {
	// Loop variable may be used in the body, so no auto-fix for these two.
	m.Match(
		`for $i := 0; $i < $b.N; $i++ { $*body }`,
		`for $i := range $b.N { $*body }`,
	).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of iterating to $b.N (Go 1.24+); if using $i in the body, declare it separately")

	m.Match(
		`for range $b.N { $*body }`,
	).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of for range $b.N (Go 1.24+)").
		Suggest("for $b.Loop() { $body }")
}

// TestingContext detects context.Background() or context.TODO() in test files
// and suggests t.Context(), which is canceled automatically when the test
// completes.
//
// Old pattern:
//
//	ctx := context.Background()
//
// New pattern (Go 1.24+):
//
//	ctx := t.Context()
//
// See: https://pkg.go.dev/testing#T.Context
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx = context.Background()`,
		`$ctx := context.TODO()`,
		`$ctx = context.TODO()`,
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() for automatic cancellation on test completion (Go 1.24+)")
}
