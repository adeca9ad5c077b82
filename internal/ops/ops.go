// Package ops provides the built-in operations applied through
// graph.Builder: elementwise arithmetic, dense projection, shape
// manipulation, and the segment, top-k and log-sum-exp kernels. Every
// operation implements graph.Operation: Call runs the backend kernel on
// concrete tensors, and ComputeOutputSpec propagates shape and dtype
// metadata through symbolic ones.
//
// Operations carry only their attributes (a name, axes, weights), never
// application state, so one instance can be applied at several places in a
// graph. Applying the same Dense twice shares its weights between both call
// sites.
package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// concrete extracts positional argument i as a concrete tensor.
func concrete(args []any, i int) (*tensor.RawTensor, error) {
	if i >= len(args) {
		return nil, errors.Errorf("expected at least %d arguments, got %d", i+1, len(args))
	}
	rt, ok := args[i].(*tensor.RawTensor)
	if !ok {
		return nil, errors.Errorf("argument %d: expected a concrete tensor, got %T", i, args[i])
	}
	return rt, nil
}

// symbolic extracts positional argument i as a symbolic tensor.
func symbolic(args []any, i int) (*graph.Symbolic, error) {
	if i >= len(args) {
		return nil, errors.Errorf("expected at least %d arguments, got %d", i+1, len(args))
	}
	t, ok := args[i].(*graph.Symbolic)
	if !ok {
		return nil, errors.Errorf("argument %d: expected a symbolic tensor, got %T", i, args[i])
	}
	return t, nil
}

// wantArity rejects applications with the wrong argument count.
func wantArity(args []any, n int) error {
	if len(args) != n {
		return errors.Errorf("expected %d arguments, got %d", n, len(args))
	}
	return nil
}

// normalizeAxis resolves negative axis indexing against a rank.
func normalizeAxis(axis, rank int) (int, error) {
	norm := axis
	if norm < 0 {
		norm += rank
	}
	if norm < 0 || norm >= rank {
		return 0, errors.Errorf("axis %d out of range for rank %d", axis, rank)
	}
	return norm, nil
}

// broadcastShapes merges two symbolic shapes under NumPy broadcasting rules,
// right-aligned. A known dimension greater than 1 wins over an unknown one;
// unknown against 1 or unknown stays unknown.
func broadcastShapes(a, b graph.Shape) (graph.Shape, error) {
	n := max(len(a), len(b))
	out := make(graph.Shape, n)
	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if idx := len(a) - 1 - i; idx >= 0 {
			ad = a[idx]
		}
		if idx := len(b) - 1 - i; idx >= 0 {
			bd = b[idx]
		}
		pos := n - 1 - i
		switch {
		case ad == graph.DimUnknown || bd == graph.DimUnknown:
			switch {
			case ad != graph.DimUnknown && ad > 1:
				out[pos] = ad
			case bd != graph.DimUnknown && bd > 1:
				out[pos] = bd
			default:
				out[pos] = graph.DimUnknown
			}
		case ad == bd:
			out[pos] = ad
		case ad == 1:
			out[pos] = bd
		case bd == 1:
			out[pos] = ad
		default:
			return nil, errors.Errorf("shapes %s and %s are not broadcastable (dimension %d: %d vs %d)",
				a, b, pos, ad, bd)
		}
	}
	return out, nil
}
