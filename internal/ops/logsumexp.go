package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// LogSumExp reduces one axis with log(sum(exp(x))), computed with the
// max-shift so large magnitudes stay finite.
type LogSumExp struct {
	name     string
	axis     int
	keepDims bool
	backend  tensor.Backend
}

// NewLogSumExp creates a log-sum-exp reduction over axis. Negative axes
// count from the end.
func NewLogSumExp(name string, axis int, keepDims bool, backend tensor.Backend) *LogSumExp {
	return &LogSumExp{name: name, axis: axis, keepDims: keepDims, backend: backend}
}

// Name returns the operation name.
func (o *LogSumExp) Name() string { return o.name }

// Call reduces the configured axis of a floating point tensor.
func (o *LogSumExp) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	if !x.DType().IsFloat() {
		return nil, errors.Errorf("requires a floating point input, got %s", x.DType())
	}
	if _, err := normalizeAxis(o.axis, len(x.Shape())); err != nil {
		return nil, err
	}
	return o.backend.LogSumExp(x, o.axis, o.keepDims), nil
}

// ComputeOutputSpec drops the reduced axis, or pins it to 1 with keepDims.
func (o *LogSumExp) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	if !x.DType().IsFloat() {
		return nil, errors.Errorf("requires a floating point input, got %s", x.DType())
	}
	shape := x.Shape()
	axis, err := normalizeAxis(o.axis, shape.Rank())
	if err != nil {
		return nil, err
	}
	out := make(graph.Shape, 0, shape.Rank())
	for i, dim := range shape {
		switch {
		case i != axis:
			out = append(out, dim)
		case o.keepDims:
			out = append(out, 1)
		}
	}
	return graph.NewSymbolic(out, x.DType()), nil
}
