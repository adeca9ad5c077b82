// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nest flattens, compares and rebuilds nested Go structures.
//
// A structure is any mix of slices, arrays, string-keyed maps and leaf
// values. Map entries are always visited in sorted key order, so flattening
// the same structure twice yields the same leaf order. The graph package
// uses these helpers to accept arbitrarily nested function inputs and
// outputs.
//
// Example:
//
//	flat := nest.Flatten(map[string]any{"a": 1, "b": []any{2, 3}})
//	// [1, 2, 3]
//
//	packed, _ := nest.Pack([]any{0, []any{0, 0}}, []any{10, 20, 30})
//	// [10, [20, 30]]
package nest

import (
	"github.com/weft-ml/weft/internal/nest"
)

// Flatten returns the leaves of v in deterministic traversal order: slice
// elements in index order, map values in sorted key order.
func Flatten(v any) []any {
	return nest.Flatten(v)
}

// AssertSameStructure checks that a and b have the same container shape:
// matching nesting of sequences and maps, matching lengths, matching map
// keys. Leaf values are not compared.
func AssertSameStructure(a, b any) error {
	return nest.AssertSameStructure(a, b)
}

// Pack rebuilds the template's container shape around flat leaves,
// consuming them in the order Flatten produces.
func Pack(template any, flat []any) (any, error) {
	return nest.Pack(template, flat)
}

// Map rebuilds v's container shape with every leaf replaced by fn(leaf).
func Map(fn func(any) any, v any) any {
	return nest.Map(fn, v)
}

// Describe renders the container shape of v with leaves shown as "*",
// e.g. "[*, {a: *, b: [*, *]}]".
func Describe(v any) string {
	return nest.Describe(v)
}
