package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// Dense applies the affine projection y = x @ W + b.
//
// The weight matrix has shape [in, out] and the optional bias has shape
// [out]. Input must be 2D [batch, in]; output is [batch, out]. The weights
// live on the operation itself, so applying one Dense at several places in
// a graph shares them between call sites.
type Dense struct {
	name    string
	weight  *tensor.RawTensor // [in, out]
	bias    *tensor.RawTensor // [out], optional
	backend tensor.Backend
}

// NewDense creates a dense operation around existing weights. The bias may
// be nil to skip the addition.
func NewDense(name string, weight, bias *tensor.RawTensor, backend tensor.Backend) (*Dense, error) {
	if weight == nil {
		return nil, errors.New("dense: weight is nil")
	}
	if len(weight.Shape()) != 2 {
		return nil, errors.Errorf("dense: weight must be 2D [in, out], got %v", weight.Shape())
	}
	if !weight.DType().IsFloat() {
		return nil, errors.Errorf("dense: weight must be floating point, got %s", weight.DType())
	}
	if bias != nil {
		if len(bias.Shape()) != 1 || bias.Shape()[0] != weight.Shape()[1] {
			return nil, errors.Errorf("dense: bias shape %v does not match %d output features",
				bias.Shape(), weight.Shape()[1])
		}
		if bias.DType() != weight.DType() {
			return nil, errors.Errorf("dense: bias dtype %s does not match weight dtype %s",
				bias.DType(), weight.DType())
		}
	}
	return &Dense{name: name, weight: weight, bias: bias, backend: backend}, nil
}

// Name returns the operation name.
func (o *Dense) Name() string { return o.name }

// InFeatures returns the expected size of the input's last dimension.
func (o *Dense) InFeatures() int { return o.weight.Shape()[0] }

// OutFeatures returns the size of the output's last dimension.
func (o *Dense) OutFeatures() int { return o.weight.Shape()[1] }

// Call projects a [batch, in] tensor to [batch, out].
func (o *Dense) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	shape := x.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("expected a 2D input [batch, features], got %v", shape)
	}
	if shape[1] != o.InFeatures() {
		return nil, errors.Errorf("expected %d input features, got %d", o.InFeatures(), shape[1])
	}
	if x.DType() != o.weight.DType() {
		return nil, errors.Errorf("input dtype %s does not match weight dtype %s",
			x.DType(), o.weight.DType())
	}
	out := o.backend.MatMul(x, o.weight)
	if o.bias != nil {
		// [batch, out] + [out] broadcasts the bias across rows.
		out = o.backend.Add(out, o.bias)
	}
	return out, nil
}

// ComputeOutputSpec maps [batch, in] to [batch, out]. An unknown batch or
// feature dimension passes through.
func (o *Dense) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	shape := x.Shape()
	if shape.Rank() != 2 {
		return nil, errors.Errorf("expected a 2D input [batch, features], got %s", shape)
	}
	if shape[1] != graph.DimUnknown && shape[1] != o.InFeatures() {
		return nil, errors.Errorf("expected %d input features, got %d", o.InFeatures(), shape[1])
	}
	if x.DType() != o.weight.DType() {
		return nil, errors.Errorf("input dtype %s does not match weight dtype %s",
			x.DType(), o.weight.DType())
	}
	return graph.NewSymbolic(graph.Shape{shape[0], o.OutFeatures()}, x.DType()), nil
}
