package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// Reshape reinterprets a tensor's elements under a new shape. The target
// may carry at most one unknown dimension, which is inferred from the
// element count at call time and, when the input shape is fully defined,
// already at spec time.
type Reshape struct {
	name    string
	target  graph.Shape
	backend tensor.Backend
}

// NewReshape creates a reshape to the target shape.
func NewReshape(name string, target graph.Shape, backend tensor.Backend) (*Reshape, error) {
	if err := target.Validate(); err != nil {
		return nil, errors.Wrap(err, "reshape: invalid target shape")
	}
	unknown := 0
	for _, dim := range target {
		if dim == graph.DimUnknown {
			unknown++
		}
	}
	if unknown > 1 {
		return nil, errors.Errorf("reshape: target %s has more than one unknown dimension", target)
	}
	return &Reshape{name: name, target: target.Clone(), backend: backend}, nil
}

// Name returns the operation name.
func (o *Reshape) Name() string { return o.name }

// resolveTarget fills the unknown target dimension so the shape holds
// exactly n elements.
func resolveTarget(target graph.Shape, n int) (graph.Shape, error) {
	out := target.Clone()
	unknown := -1
	known := 1
	for i, dim := range out {
		if dim == graph.DimUnknown {
			unknown = i
			continue
		}
		known *= dim
	}
	if unknown < 0 {
		if known != n {
			return nil, errors.Errorf("cannot reshape %d elements into %s", n, target)
		}
		return out, nil
	}
	if n%known != 0 {
		return nil, errors.Errorf("cannot reshape %d elements into %s", n, target)
	}
	out[unknown] = n / known
	return out, nil
}

// Call copies the input into the resolved target shape.
func (o *Reshape) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveTarget(o.target, x.Shape().NumElements())
	if err != nil {
		return nil, err
	}
	shape, err := resolved.Concrete()
	if err != nil {
		return nil, err
	}
	return o.backend.Reshape(x, shape), nil
}

// ComputeOutputSpec returns the target shape, inferring its unknown
// dimension when the input's element count is already known.
func (o *Reshape) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	if shape := x.Shape(); shape.IsFullyDefined() {
		concrete, err := shape.Concrete()
		if err != nil {
			return nil, err
		}
		resolved, err := resolveTarget(o.target, concrete.NumElements())
		if err != nil {
			return nil, err
		}
		return graph.NewSymbolic(resolved, x.DType()), nil
	}
	return graph.NewSymbolic(o.target.Clone(), x.DType()), nil
}
