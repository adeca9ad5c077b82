package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// Concat joins its inputs along one axis. Inputs may arrive as individual
// positional tensors or as a single tensor list; both forms flatten into
// the same ordered sequence.
type Concat struct {
	name    string
	axis    int
	backend tensor.Backend
}

// NewConcat creates a concatenation along axis. Negative axes count from
// the end.
func NewConcat(name string, axis int, backend tensor.Backend) *Concat {
	return &Concat{name: name, axis: axis, backend: backend}
}

// Name returns the operation name.
func (o *Concat) Name() string { return o.name }

// gatherConcrete flattens positional arguments into concrete tensors,
// unwrapping tensor lists along the way.
func gatherConcrete(args []any) ([]*tensor.RawTensor, error) {
	var out []*tensor.RawTensor
	for i, a := range args {
		switch v := a.(type) {
		case *tensor.RawTensor:
			out = append(out, v)
		case []any:
			for j, e := range v {
				x, ok := e.(*tensor.RawTensor)
				if !ok {
					return nil, errors.Errorf("argument %d[%d]: expected a concrete tensor, got %T", i, j, e)
				}
				out = append(out, x)
			}
		default:
			return nil, errors.Errorf("argument %d: expected a concrete tensor, got %T", i, a)
		}
	}
	return out, nil
}

// gatherSymbolic mirrors gatherConcrete for the spec path.
func gatherSymbolic(args []any) ([]*graph.Symbolic, error) {
	var out []*graph.Symbolic
	for i, a := range args {
		switch v := a.(type) {
		case *graph.Symbolic:
			out = append(out, v)
		case []any:
			for j, e := range v {
				x, ok := e.(*graph.Symbolic)
				if !ok {
					return nil, errors.Errorf("argument %d[%d]: expected a symbolic tensor, got %T", i, j, e)
				}
				out = append(out, x)
			}
		default:
			return nil, errors.Errorf("argument %d: expected a symbolic tensor, got %T", i, a)
		}
	}
	return out, nil
}

// Call concatenates the flattened inputs.
func (o *Concat) Call(args []any, named map[string]any) (any, error) {
	xs, err := gatherConcrete(args)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, errors.New("expected at least one input")
	}
	first := xs[0].Shape()
	axis, err := normalizeAxis(o.axis, len(first))
	if err != nil {
		return nil, err
	}
	for i, x := range xs[1:] {
		shape := x.Shape()
		if len(shape) != len(first) {
			return nil, errors.Errorf("input %d has rank %d, want %d", i+1, len(shape), len(first))
		}
		if x.DType() != xs[0].DType() {
			return nil, errors.Errorf("input %d has dtype %s, want %s", i+1, x.DType(), xs[0].DType())
		}
		for d := range shape {
			if d != axis && shape[d] != first[d] {
				return nil, errors.Errorf("input %d has size %d on dimension %d, want %d",
					i+1, shape[d], d, first[d])
			}
		}
	}
	return o.backend.Concat(xs, axis), nil
}

// ComputeOutputSpec sums the axis dimension across inputs and merges the
// rest. Any unknown contribution to the axis makes it unknown.
func (o *Concat) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	xs, err := gatherSymbolic(args)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, errors.New("expected at least one input")
	}
	out := xs[0].Shape().Clone()
	axis, err := normalizeAxis(o.axis, out.Rank())
	if err != nil {
		return nil, err
	}
	total := out[axis]
	for i, x := range xs[1:] {
		shape := x.Shape()
		if shape.Rank() != out.Rank() {
			return nil, errors.Errorf("input %d has rank %d, want %d", i+1, shape.Rank(), out.Rank())
		}
		if x.DType() != xs[0].DType() {
			return nil, errors.Errorf("input %d has dtype %s, want %s", i+1, x.DType(), xs[0].DType())
		}
		for d := range shape {
			if d == axis {
				continue
			}
			switch {
			case out[d] == graph.DimUnknown:
				out[d] = shape[d]
			case shape[d] == graph.DimUnknown:
			case shape[d] != out[d]:
				return nil, errors.Errorf("input %d has size %d on dimension %d, want %d",
					i+1, shape[d], d, out[d])
			}
		}
		if total == graph.DimUnknown || shape[axis] == graph.DimUnknown {
			total = graph.DimUnknown
		} else {
			total += shape[axis]
		}
	}
	out[axis] = total
	return graph.NewSymbolic(out, xs[0].DType()), nil
}
