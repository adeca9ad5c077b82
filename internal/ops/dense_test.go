package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

func TestNewDenseValidation(t *testing.T) {
	be := testBackend()
	weight := f32(t, tensor.Shape{3, 2}, 1, 2, 3, 4, 5, 6)

	_, err := NewDense("d", nil, nil, be)
	assert.ErrorContains(t, err, "weight is nil")

	_, err = NewDense("d", f32(t, tensor.Shape{4}, 1, 2, 3, 4), nil, be)
	assert.ErrorContains(t, err, "must be 2D")

	_, err = NewDense("d", i32(t, tensor.Shape{2, 2}, 1, 2, 3, 4), nil, be)
	assert.ErrorContains(t, err, "must be floating point")

	_, err = NewDense("d", weight, f32(t, tensor.Shape{3}, 1, 2, 3), be)
	assert.ErrorContains(t, err, "does not match 2 output features")

	_, err = NewDense("d", weight, f64(t, tensor.Shape{2}, 1, 2), be)
	assert.ErrorContains(t, err, "bias dtype")

	d, err := NewDense("d", weight, f32(t, tensor.Shape{2}, 1, 2), be)
	require.NoError(t, err)
	assert.Equal(t, "d", d.Name())
	assert.Equal(t, 3, d.InFeatures())
	assert.Equal(t, 2, d.OutFeatures())
}

func TestDenseCall(t *testing.T) {
	be := testBackend()
	weight := f32(t, tensor.Shape{3, 2}, 1, 4, 2, 5, 3, 6)
	bias := f32(t, tensor.Shape{2}, 10, 20)

	t.Run("WithBias", func(t *testing.T) {
		d, err := NewDense("d", weight, bias, be)
		require.NoError(t, err)
		out := callOne(t, d, f32(t, tensor.Shape{2, 3}, 1, 1, 1, 0, 1, 0))
		assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
		assert.Equal(t, []float32{16, 35, 12, 25}, out.AsFloat32())
	})

	t.Run("WithoutBias", func(t *testing.T) {
		d, err := NewDense("d", weight, nil, be)
		require.NoError(t, err)
		out := callOne(t, d, f32(t, tensor.Shape{1, 3}, 1, 1, 1))
		assert.Equal(t, []float32{6, 15}, out.AsFloat32())
	})

	t.Run("Errors", func(t *testing.T) {
		d, err := NewDense("d", weight, nil, be)
		require.NoError(t, err)

		_, err = d.Call([]any{f32(t, tensor.Shape{3}, 1, 2, 3)}, nil)
		assert.ErrorContains(t, err, "expected a 2D input")

		_, err = d.Call([]any{f32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)}, nil)
		assert.ErrorContains(t, err, "expected 3 input features, got 2")

		_, err = d.Call([]any{f64(t, tensor.Shape{1, 3}, 1, 2, 3)}, nil)
		assert.ErrorContains(t, err, "input dtype float64")

		_, err = d.Call([]any{}, nil)
		assert.ErrorContains(t, err, "expected 1 arguments, got 0")
	})
}

func TestDenseComputeOutputSpec(t *testing.T) {
	be := testBackend()
	weight := f32(t, tensor.Shape{3, 2}, 1, 2, 3, 4, 5, 6)
	d, err := NewDense("d", weight, nil, be)
	require.NoError(t, err)

	t.Run("UnknownBatch", func(t *testing.T) {
		spec := specOne(t, d, sym(graph.Shape{graph.DimUnknown, 3}, tensor.Float32))
		assert.Equal(t, graph.Shape{graph.DimUnknown, 2}, spec.Shape())
		assert.Equal(t, tensor.Float32, spec.DType())
	})

	t.Run("KnownBatch", func(t *testing.T) {
		spec := specOne(t, d, sym(graph.Shape{7, 3}, tensor.Float32))
		assert.Equal(t, graph.Shape{7, 2}, spec.Shape())
	})

	t.Run("UnknownFeaturesAccepted", func(t *testing.T) {
		spec := specOne(t, d, sym(graph.Shape{7, graph.DimUnknown}, tensor.Float32))
		assert.Equal(t, graph.Shape{7, 2}, spec.Shape())
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := d.ComputeOutputSpec([]any{sym(graph.Shape{3}, tensor.Float32)}, nil)
		assert.ErrorContains(t, err, "expected a 2D input")

		_, err = d.ComputeOutputSpec([]any{sym(graph.Shape{7, 4}, tensor.Float32)}, nil)
		assert.ErrorContains(t, err, "expected 3 input features, got 4")

		_, err = d.ComputeOutputSpec([]any{sym(graph.Shape{7, 3}, tensor.Float64)}, nil)
		assert.ErrorContains(t, err, "input dtype float64")
	})
}
