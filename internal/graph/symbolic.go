package graph

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// Symbolic is a placeholder tensor: shape and dtype metadata with no data
// attached. Graph edges are defined by pointer identity; two Symbolic values
// describe the same tensor only when they are the same pointer, never by
// comparing shapes or names.
type Symbolic struct {
	name   string
	shape  Shape
	dtype  tensor.DataType
	source *Source
}

// Source is the immutable produced-by tag attached to a tensor when an
// operation application creates it. Root placeholders carry none.
type Source struct {
	Operation Operation // producing operation
	NodeIndex int       // which application of the operation
	Slot      int       // position among the application's outputs
}

// Placeholder declares a root input tensor. The name identifies the input in
// node keys and error messages; dimensions may be DimUnknown. Panics on an
// empty name or an invalid shape, which are definition-phase bugs.
func Placeholder(name string, shape Shape, dtype tensor.DataType) *Symbolic {
	if name == "" {
		panic("graph: placeholder requires a name")
	}
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("graph: placeholder %q: %v", name, err))
	}
	return &Symbolic{name: name, shape: shape.Clone(), dtype: dtype}
}

// NewSymbolic creates an unnamed tensor spec with no producer. Operations
// build their outputs with it inside ComputeOutputSpec; when an application
// is recorded the builder attaches the produced-by tag and a deterministic
// name.
func NewSymbolic(shape Shape, dtype tensor.DataType) *Symbolic {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("graph: symbolic tensor: %v", err))
	}
	return &Symbolic{shape: shape.Clone(), dtype: dtype}
}

// Name returns the tensor's name; empty until the builder assigns one.
func (t *Symbolic) Name() string {
	return t.name
}

// Shape returns the symbolic shape. Callers must not mutate it.
func (t *Symbolic) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Symbolic) DType() tensor.DataType {
	return t.dtype
}

// Source returns the produced-by tag, or nil for root placeholders. The tag
// is set once at application time and never changes.
func (t *Symbolic) Source() *Source {
	return t.source
}

// String renders the tensor like "x: float32[? 4]".
func (t *Symbolic) String() string {
	name := t.name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("%s: %s%s", name, t.dtype, t.shape)
}
