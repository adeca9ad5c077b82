package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// SegmentSum sums rows of its input into buckets selected by a parallel
// vector of segment ids. Rows with a negative id are dropped; the bucket
// count is fixed at construction so the output shape never depends on the
// data.
type SegmentSum struct {
	name        string
	numSegments int
	backend     tensor.Backend
}

// NewSegmentSum creates a segment sum with numSegments output buckets.
func NewSegmentSum(name string, numSegments int, backend tensor.Backend) (*SegmentSum, error) {
	if numSegments <= 0 {
		return nil, errors.Errorf("segmentsum: numSegments must be positive, got %d", numSegments)
	}
	return &SegmentSum{name: name, numSegments: numSegments, backend: backend}, nil
}

// Name returns the operation name.
func (o *SegmentSum) Name() string { return o.name }

// Call sums data rows into their segments. Arguments are the data tensor
// and the 1D segment id vector.
func (o *SegmentSum) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 2); err != nil {
		return nil, err
	}
	data, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	ids, err := concrete(args, 1)
	if err != nil {
		return nil, err
	}
	if len(data.Shape()) < 1 {
		return nil, errors.New("expected data with rank >= 1, got a scalar")
	}
	if !data.DType().IsFloat() && !data.DType().IsInt() {
		return nil, errors.Errorf("unsupported dtype %s", data.DType())
	}
	if len(ids.Shape()) != 1 {
		return nil, errors.Errorf("expected 1D segment ids, got %dD", len(ids.Shape()))
	}
	if ids.Shape()[0] != data.Shape()[0] {
		return nil, errors.Errorf("expected %d segment ids, got %d", data.Shape()[0], ids.Shape()[0])
	}
	if err := o.checkIDRange(ids); err != nil {
		return nil, err
	}
	return o.backend.SegmentSum(data, ids, o.numSegments), nil
}

// checkIDRange rejects ids at or beyond the bucket count. Negative ids
// pass; the kernel drops those rows.
func (o *SegmentSum) checkIDRange(ids *tensor.RawTensor) error {
	max := int64(-1)
	switch ids.DType() {
	case tensor.Int32:
		for _, id := range ids.AsInt32() {
			if int64(id) > max {
				max = int64(id)
			}
		}
	case tensor.Int64:
		for _, id := range ids.AsInt64() {
			if id > max {
				max = id
			}
		}
	default:
		return errors.Errorf("segment ids must be int32 or int64, got %s", ids.DType())
	}
	if max >= int64(o.numSegments) {
		return errors.Errorf("segment id %d out of range [0, %d)", max, o.numSegments)
	}
	return nil
}

// ComputeOutputSpec replaces the leading dimension with the bucket count.
func (o *SegmentSum) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 2); err != nil {
		return nil, err
	}
	data, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	ids, err := symbolic(args, 1)
	if err != nil {
		return nil, err
	}
	shape := data.Shape()
	if shape.Rank() < 1 {
		return nil, errors.New("expected data with rank >= 1, got a scalar")
	}
	if !data.DType().IsFloat() && !data.DType().IsInt() {
		return nil, errors.Errorf("unsupported dtype %s", data.DType())
	}
	if ids.DType() != tensor.Int32 && ids.DType() != tensor.Int64 {
		return nil, errors.Errorf("segment ids must be int32 or int64, got %s", ids.DType())
	}
	idShape := ids.Shape()
	if idShape.Rank() != 1 {
		return nil, errors.Errorf("expected 1D segment ids, got %s", idShape)
	}
	if idShape[0] != graph.DimUnknown && shape[0] != graph.DimUnknown && idShape[0] != shape[0] {
		return nil, errors.Errorf("expected %d segment ids, got %d", shape[0], idShape[0])
	}
	out := shape.Clone()
	out[0] = o.numSegments
	return graph.NewSymbolic(out, data.DType()), nil
}
