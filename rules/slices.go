//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SortTyped detects the type-specific sort helpers and suggests the generic
// slices.Sort.
//
// Old pattern:
//
//	sort.Strings(names)
//
// New pattern (Go 1.21+):
//
//	slices.Sort(names)
//
// See: https://pkg.go.dev/slices#Sort
func SortTyped(m dsl.Matcher) {
	m.Match(
		`sort.Ints($s)`,
		`sort.Strings($s)`,
		`sort.Float64s($s)`,
	).
		Report("use slices.Sort($s) instead of the type-specific sort helpers (Go 1.21+)").
		Suggest("slices.Sort($s)")
}

// MapKeysCollection detects manual map key collection loops and suggests the
// maps.Keys iterator, which composes directly with slices.Sorted for
// deterministic output.
//
// Old pattern:
//
//	keys := make([]string, 0, len(m))
//	for k := range m {
//	    keys = append(keys, k)
//	}
//	sort.Strings(keys)
//
// New pattern (Go 1.23+):
//
//	keys := slices.Sorted(maps.Keys(m))
//
// See: https://pkg.go.dev/maps#Keys
func MapKeysCollection(m dsl.Matcher) {
	m.Match(
		`for $k := range $m { $keys = append($keys, $k) }`,
		`for $k, _ := range $m { $keys = append($keys, $k) }`,
	).
		Report("use slices.Collect(maps.Keys($m)), or slices.Sorted for ordered keys (Go 1.23+)")
}
