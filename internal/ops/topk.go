package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// TopK selects the k largest entries along the last dimension, producing
// two outputs: the values and their source indices. With sorted set the
// values descend; otherwise they keep their original index order.
type TopK struct {
	name    string
	k       int
	sorted  bool
	backend tensor.Backend
}

// NewTopK creates a top-k selection.
func NewTopK(name string, k int, sorted bool, backend tensor.Backend) (*TopK, error) {
	if k < 1 {
		return nil, errors.Errorf("topk: k must be >= 1, got %d", k)
	}
	return &TopK{name: name, k: k, sorted: sorted, backend: backend}, nil
}

// Name returns the operation name.
func (o *TopK) Name() string { return o.name }

// Call returns the values and indices of the k largest entries per lane.
func (o *TopK) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	shape := x.Shape()
	if len(shape) < 1 {
		return nil, errors.New("expected input with rank >= 1, got a scalar")
	}
	if !x.DType().IsFloat() && !x.DType().IsInt() {
		return nil, errors.Errorf("unsupported dtype %s", x.DType())
	}
	if classes := shape[len(shape)-1]; classes < o.k {
		return nil, errors.Errorf("k=%d exceeds last dimension %d", o.k, classes)
	}
	values, indices := o.backend.TopK(x, o.k, o.sorted)
	return []any{values, indices}, nil
}

// ComputeOutputSpec shrinks the last dimension to k for both outputs.
// Indices are int64.
func (o *TopK) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	shape := x.Shape()
	if shape.Rank() < 1 {
		return nil, errors.New("expected input with rank >= 1, got a scalar")
	}
	if !x.DType().IsFloat() && !x.DType().IsInt() {
		return nil, errors.Errorf("unsupported dtype %s", x.DType())
	}
	last := shape[shape.Rank()-1]
	if last != graph.DimUnknown && last < o.k {
		return nil, errors.Errorf("k=%d exceeds last dimension %d", o.k, last)
	}
	out := shape.Clone()
	out[out.Rank()-1] = o.k
	values := graph.NewSymbolic(out, x.DType())
	indices := graph.NewSymbolic(out.Clone(), tensor.Int64)
	return []any{values, indices}, nil
}

// InTopK reports, per row, whether the target class scores among the k
// best predictions. Ties with the k-th best score count as in.
type InTopK struct {
	name    string
	k       int
	backend tensor.Backend
}

// NewInTopK creates an in-top-k check.
func NewInTopK(name string, k int, backend tensor.Backend) (*InTopK, error) {
	if k < 1 {
		return nil, errors.Errorf("intopk: k must be >= 1, got %d", k)
	}
	return &InTopK{name: name, k: k, backend: backend}, nil
}

// Name returns the operation name.
func (o *InTopK) Name() string { return o.name }

// Call takes the target class vector and the [rows, classes] prediction
// matrix and returns a boolean vector.
func (o *InTopK) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 2); err != nil {
		return nil, err
	}
	targets, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	predictions, err := concrete(args, 1)
	if err != nil {
		return nil, err
	}
	if len(targets.Shape()) != 1 {
		return nil, errors.Errorf("expected 1D targets, got %dD", len(targets.Shape()))
	}
	if targets.DType() != tensor.Int32 && targets.DType() != tensor.Int64 {
		return nil, errors.Errorf("targets must be int32 or int64, got %s", targets.DType())
	}
	if len(predictions.Shape()) != 2 {
		return nil, errors.Errorf("expected 2D predictions, got %dD", len(predictions.Shape()))
	}
	if !predictions.DType().IsFloat() {
		return nil, errors.Errorf("predictions must be floating point, got %s", predictions.DType())
	}
	if targets.Shape()[0] != predictions.Shape()[0] {
		return nil, errors.Errorf("expected %d targets, got %d", predictions.Shape()[0], targets.Shape()[0])
	}
	return o.backend.InTopK(targets, predictions, o.k), nil
}

// ComputeOutputSpec returns a boolean vector with one entry per row.
func (o *InTopK) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 2); err != nil {
		return nil, err
	}
	targets, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	predictions, err := symbolic(args, 1)
	if err != nil {
		return nil, err
	}
	if targets.Shape().Rank() != 1 {
		return nil, errors.Errorf("expected 1D targets, got %s", targets.Shape())
	}
	if targets.DType() != tensor.Int32 && targets.DType() != tensor.Int64 {
		return nil, errors.Errorf("targets must be int32 or int64, got %s", targets.DType())
	}
	if predictions.Shape().Rank() != 2 {
		return nil, errors.Errorf("expected 2D predictions, got %s", predictions.Shape())
	}
	if !predictions.DType().IsFloat() {
		return nil, errors.Errorf("predictions must be floating point, got %s", predictions.DType())
	}
	rows := targets.Shape()[0]
	predRows := predictions.Shape()[0]
	if rows != graph.DimUnknown && predRows != graph.DimUnknown && rows != predRows {
		return nil, errors.Errorf("expected %d targets, got %d", predRows, rows)
	}
	if rows == graph.DimUnknown {
		rows = predRows
	}
	return graph.NewSymbolic(graph.Shape{rows}, tensor.Bool), nil
}
