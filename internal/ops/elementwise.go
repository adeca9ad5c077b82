package ops

import (
	"github.com/pkg/errors"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// binaryKind selects the backend kernel a Binary operation invokes.
type binaryKind int

const (
	addKind binaryKind = iota
	subKind
	mulKind
	divKind
)

// Binary is an elementwise two-input arithmetic operation with NumPy-style
// broadcasting. Both inputs must share a numeric dtype.
type Binary struct {
	name    string
	kind    binaryKind
	backend tensor.Backend
}

// NewAdd returns an elementwise addition operation.
func NewAdd(name string, backend tensor.Backend) *Binary {
	return &Binary{name: name, kind: addKind, backend: backend}
}

// NewSub returns an elementwise subtraction operation.
func NewSub(name string, backend tensor.Backend) *Binary {
	return &Binary{name: name, kind: subKind, backend: backend}
}

// NewMul returns an elementwise multiplication operation.
func NewMul(name string, backend tensor.Backend) *Binary {
	return &Binary{name: name, kind: mulKind, backend: backend}
}

// NewDiv returns an elementwise division operation.
func NewDiv(name string, backend tensor.Backend) *Binary {
	return &Binary{name: name, kind: divKind, backend: backend}
}

// Name returns the operation name.
func (o *Binary) Name() string { return o.name }

// Call executes the kernel on two concrete tensors.
func (o *Binary) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 2); err != nil {
		return nil, err
	}
	a, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := concrete(args, 1)
	if err != nil {
		return nil, err
	}
	if a.DType() != b.DType() {
		return nil, errors.Errorf("dtype mismatch: %s vs %s", a.DType(), b.DType())
	}
	if !a.DType().IsFloat() && !a.DType().IsInt() {
		return nil, errors.Errorf("unsupported dtype %s", a.DType())
	}
	if _, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape()); err != nil {
		return nil, err
	}
	switch o.kind {
	case addKind:
		return o.backend.Add(a, b), nil
	case subKind:
		return o.backend.Sub(a, b), nil
	case mulKind:
		return o.backend.Mul(a, b), nil
	default:
		return o.backend.Div(a, b), nil
	}
}

// ComputeOutputSpec broadcasts the two symbolic input shapes.
func (o *Binary) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 2); err != nil {
		return nil, err
	}
	x, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	y, err := symbolic(args, 1)
	if err != nil {
		return nil, err
	}
	if x.DType() != y.DType() {
		return nil, errors.Errorf("dtype mismatch: %s vs %s", x.DType(), y.DType())
	}
	shape, err := broadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return nil, err
	}
	return graph.NewSymbolic(shape, x.DType()), nil
}

// unaryKind selects the backend kernel a Unary operation invokes.
type unaryKind int

const (
	reluKind unaryKind = iota
	expKind
	logKind
)

// Unary is an elementwise one-input operation that preserves shape and
// dtype. Exp and Log require a floating point input; ReLU accepts any
// numeric dtype.
type Unary struct {
	name    string
	kind    unaryKind
	backend tensor.Backend
}

// NewReLU returns an elementwise max(x, 0) operation.
func NewReLU(name string, backend tensor.Backend) *Unary {
	return &Unary{name: name, kind: reluKind, backend: backend}
}

// NewExp returns an elementwise exponential operation.
func NewExp(name string, backend tensor.Backend) *Unary {
	return &Unary{name: name, kind: expKind, backend: backend}
}

// NewLog returns an elementwise natural logarithm operation.
func NewLog(name string, backend tensor.Backend) *Unary {
	return &Unary{name: name, kind: logKind, backend: backend}
}

// Name returns the operation name.
func (o *Unary) Name() string { return o.name }

func (o *Unary) checkDType(dt tensor.DataType) error {
	if o.kind == reluKind {
		if !dt.IsFloat() && !dt.IsInt() {
			return errors.Errorf("unsupported dtype %s", dt)
		}
		return nil
	}
	if !dt.IsFloat() {
		return errors.Errorf("requires a floating point input, got %s", dt)
	}
	return nil
}

// Call executes the kernel on one concrete tensor.
func (o *Unary) Call(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := concrete(args, 0)
	if err != nil {
		return nil, err
	}
	if err := o.checkDType(x.DType()); err != nil {
		return nil, err
	}
	switch o.kind {
	case reluKind:
		return o.backend.ReLU(x), nil
	case expKind:
		return o.backend.Exp(x), nil
	default:
		return o.backend.Log(x), nil
	}
}

// ComputeOutputSpec mirrors the symbolic input's shape and dtype.
func (o *Unary) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	if err := wantArity(args, 1); err != nil {
		return nil, err
	}
	x, err := symbolic(args, 0)
	if err != nil {
		return nil, err
	}
	if err := o.checkDType(x.DType()); err != nil {
		return nil, err
	}
	return graph.NewSymbolic(x.Shape().Clone(), x.DType()), nil
}
