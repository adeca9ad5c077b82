package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-ml/weft/internal/tensor"
)

func TestShapeString(t *testing.T) {
	tests := []struct {
		shape Shape
		want  string
	}{
		{Shape{2, 3}, "[2 3]"},
		{Shape{DimUnknown, 4}, "[? 4]"},
		{Shape{}, "[]"},
		{Shape{DimUnknown}, "[?]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.shape.String())
	}
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.NoError(t, Shape{DimUnknown, 4}.Validate())
	assert.NoError(t, Shape{}.Validate())
	assert.Error(t, Shape{0}.Validate())
	assert.Error(t, Shape{2, -3}.Validate())
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.True(t, Shape{DimUnknown, 3}.Equal(Shape{DimUnknown, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{2, 4}))
	assert.False(t, Shape{2, 3}.Equal(Shape{2}))
	assert.False(t, Shape{DimUnknown}.Equal(Shape{2}))
}

func TestShapeCompatibleWith(t *testing.T) {
	assert.True(t, Shape{DimUnknown, 3}.CompatibleWith(Shape{2, 3}))
	assert.True(t, Shape{DimUnknown}.CompatibleWith(Shape{DimUnknown}))
	assert.True(t, Shape{2, 3}.CompatibleWith(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.CompatibleWith(Shape{2, 4}))
	assert.False(t, Shape{2, 3}.CompatibleWith(Shape{2}))
}

func TestShapeMergeWith(t *testing.T) {
	merged, err := Shape{DimUnknown, 4}.MergeWith(Shape{2, DimUnknown})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 4}, merged)

	_, err = Shape{2, 3}.MergeWith(Shape{2, 4})
	assert.Error(t, err)
}

func TestShapeConcrete(t *testing.T) {
	c, err := Shape{2, 3}.Concrete()
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, c)

	_, err = Shape{DimUnknown, 3}.Concrete()
	assert.Error(t, err)
}

func TestShapeFromConcrete(t *testing.T) {
	s := tensor.Shape{2, 3}
	sym := FromConcrete(s)
	assert.Equal(t, Shape{2, 3}, sym)
	assert.True(t, sym.IsFullyDefined())

	// The conversion copies.
	sym[0] = 9
	assert.Equal(t, tensor.Shape{2, 3}, s)
}

func TestShapeCloneIndependent(t *testing.T) {
	s := Shape{2, DimUnknown}
	c := s.Clone()
	c[0] = 7
	assert.Equal(t, Shape{2, DimUnknown}, s)
	assert.False(t, s.IsFullyDefined())
}

func TestSymbolicString(t *testing.T) {
	x := Placeholder("x", Shape{DimUnknown, 4}, tensor.Float32)
	assert.Equal(t, "x: float32[? 4]", x.String())

	anon := NewSymbolic(Shape{2}, tensor.Float32)
	assert.Contains(t, anon.String(), "<unnamed>")
}

func TestPlaceholderPanics(t *testing.T) {
	assert.Panics(t, func() { Placeholder("", Shape{2}, tensor.Float32) })
	assert.Panics(t, func() { Placeholder("x", Shape{0}, tensor.Float32) })
}
