// Package nest flattens, compares and rebuilds nested Go structures.
//
// A structure is any mix of slices, arrays, string-keyed maps and leaf
// values. Map entries are always visited in sorted key order, so flattening
// the same structure twice yields the same leaf order.
package nest

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Flatten returns the leaves of v in deterministic traversal order: slice
// elements in index order, map values in sorted key order. A leaf (anything
// that is not a slice, array or string-keyed map) flattens to itself.
func Flatten(v any) []any {
	var out []any
	walk(v, func(leaf any) { out = append(out, leaf) })
	return out
}

func walk(v any, emit func(any)) {
	rv := reflect.ValueOf(v)
	switch {
	case isSequence(rv):
		for i := 0; i < rv.Len(); i++ {
			walk(rv.Index(i).Interface(), emit)
		}
	case isStringMap(rv):
		for _, k := range sortedMapKeys(rv) {
			walk(rv.MapIndex(reflect.ValueOf(k)).Interface(), emit)
		}
	default:
		emit(v)
	}
}

// AssertSameStructure checks that a and b have the same container shape:
// matching nesting of sequences and maps, matching lengths, matching map
// keys. Leaf values and concrete container types are not compared, so a
// []any lines up with a typed slice of the same length.
func AssertSameStructure(a, b any) error {
	return sameStructure(a, b, "$")
}

func sameStructure(a, b any, path string) error {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case isSequence(ra) || isSequence(rb):
		if !isSequence(ra) || !isSequence(rb) {
			return errors.Errorf("at %s: sequence vs non-sequence", path)
		}
		if ra.Len() != rb.Len() {
			return errors.Errorf("at %s: sequence length %d vs %d", path, ra.Len(), rb.Len())
		}
		for i := 0; i < ra.Len(); i++ {
			err := sameStructure(ra.Index(i).Interface(), rb.Index(i).Interface(),
				fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return err
			}
		}
	case isStringMap(ra) || isStringMap(rb):
		if !isStringMap(ra) || !isStringMap(rb) {
			return errors.Errorf("at %s: mapping vs non-mapping", path)
		}
		ka, kb := sortedMapKeys(ra), sortedMapKeys(rb)
		if len(ka) != len(kb) {
			return errors.Errorf("at %s: mapping size %d vs %d", path, len(ka), len(kb))
		}
		for i, k := range ka {
			if kb[i] != k {
				return errors.Errorf("at %s: mapping keys differ (%q vs %q)", path, k, kb[i])
			}
		}
		for _, k := range ka {
			err := sameStructure(
				ra.MapIndex(reflect.ValueOf(k)).Interface(),
				rb.MapIndex(reflect.ValueOf(k)).Interface(),
				fmt.Sprintf("%s[%q]", path, k))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Pack rebuilds the template's container shape around flat leaves, consuming
// them in the order Flatten produces. Containers are rebuilt as []any and
// map[string]any regardless of the template's concrete types. Errors when
// the leaf count does not match the template.
func Pack(template any, flat []any) (any, error) {
	out, rest, err := pack(template, flat)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.Errorf("too many leaves for template: %d left over", len(rest))
	}
	return out, nil
}

func pack(template any, flat []any) (any, []any, error) {
	rt := reflect.ValueOf(template)
	switch {
	case isSequence(rt):
		out := make([]any, rt.Len())
		var err error
		for i := 0; i < rt.Len(); i++ {
			out[i], flat, err = pack(rt.Index(i).Interface(), flat)
			if err != nil {
				return nil, nil, err
			}
		}
		return out, flat, nil
	case isStringMap(rt):
		out := make(map[string]any, rt.Len())
		var err error
		for _, k := range sortedMapKeys(rt) {
			out[k], flat, err = pack(rt.MapIndex(reflect.ValueOf(k)).Interface(), flat)
			if err != nil {
				return nil, nil, err
			}
		}
		return out, flat, nil
	default:
		if len(flat) == 0 {
			return nil, nil, errors.New("not enough leaves for template")
		}
		return flat[0], flat[1:], nil
	}
}

// Map rebuilds v's container shape with every leaf replaced by fn(leaf).
func Map(fn func(any) any, v any) any {
	rv := reflect.ValueOf(v)
	switch {
	case isSequence(rv):
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Map(fn, rv.Index(i).Interface())
		}
		return out
	case isStringMap(rv):
		out := make(map[string]any, rv.Len())
		for _, k := range sortedMapKeys(rv) {
			out[k] = Map(fn, rv.MapIndex(reflect.ValueOf(k)).Interface())
		}
		return out
	default:
		return fn(v)
	}
}

// Describe renders the container shape of v with leaves shown as "*",
// e.g. "[*, {a: *, b: [*, *]}]". Used in error messages.
func Describe(v any) string {
	var b strings.Builder
	describe(v, &b)
	return b.String()
}

func describe(v any, b *strings.Builder) {
	rv := reflect.ValueOf(v)
	switch {
	case isSequence(rv):
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			describe(rv.Index(i).Interface(), b)
		}
		b.WriteByte(']')
	case isStringMap(rv):
		b.WriteByte('{')
		for i, k := range sortedMapKeys(rv) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			describe(rv.MapIndex(reflect.ValueOf(k)).Interface(), b)
		}
		b.WriteByte('}')
	default:
		b.WriteByte('*')
	}
}

func isSequence(rv reflect.Value) bool {
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
}

func isStringMap(rv reflect.Value) bool {
	return rv.IsValid() && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func sortedMapKeys(rv reflect.Value) []string {
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}
