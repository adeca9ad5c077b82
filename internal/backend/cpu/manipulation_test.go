package cpu

import (
	"testing"

	"github.com/weft-ml/weft/internal/tensor"
)

// TestCPUBackend_Concat tests concatenation along a dimension.
func TestCPUBackend_Concat(t *testing.T) {
	backend := newTestBackend()

	t.Run("Dim0", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
		b := rawF32(t, tensor.Shape{1, 2}, 5, 6)

		result := backend.Concat([]*tensor.RawTensor{a, b}, 0)

		if !result.Shape().Equal(tensor.Shape{3, 2}) {
			t.Fatalf("shape = %v, want [3 2]", result.Shape())
		}
		expected := []float32{1, 2, 3, 4, 5, 6}
		if !float32Near(result.AsFloat32(), expected, 0) {
			t.Errorf("Concat dim 0 failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Dim1", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
		b := rawF32(t, tensor.Shape{2, 1}, 9, 8)

		result := backend.Concat([]*tensor.RawTensor{a, b}, 1)

		if !result.Shape().Equal(tensor.Shape{2, 3}) {
			t.Fatalf("shape = %v, want [2 3]", result.Shape())
		}
		expected := []float32{1, 2, 9, 3, 4, 8}
		if !float32Near(result.AsFloat32(), expected, 0) {
			t.Errorf("Concat dim 1 failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("NegativeDim", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{1, 2}, 1, 2)
		b := rawF32(t, tensor.Shape{1, 3}, 7, 8, 9)

		result := backend.Concat([]*tensor.RawTensor{a, b}, -1)

		if !result.Shape().Equal(tensor.Shape{1, 5}) {
			t.Fatalf("shape = %v, want [1 5]", result.Shape())
		}
		expected := []float32{1, 2, 7, 8, 9}
		if !float32Near(result.AsFloat32(), expected, 0) {
			t.Errorf("Concat -1 failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("ThreeTensors1D", func(t *testing.T) {
		a := rawI64(t, tensor.Shape{1}, 1)
		b := rawI64(t, tensor.Shape{2}, 2, 3)
		c := rawI64(t, tensor.Shape{1}, 4)

		result := backend.Concat([]*tensor.RawTensor{a, b, c}, 0)

		if !int64Equal(result.AsInt64(), []int64{1, 2, 3, 4}) {
			t.Errorf("Concat 1D failed: got %v", result.AsInt64())
		}
	})

	t.Run("Bool", func(t *testing.T) {
		a, err := tensor.FromSlice([]bool{true, false}, tensor.Shape{2})
		if err != nil {
			t.Fatalf("FromSlice: %v", err)
		}
		b, err := tensor.FromSlice([]bool{true}, tensor.Shape{1})
		if err != nil {
			t.Fatalf("FromSlice: %v", err)
		}

		result := backend.Concat([]*tensor.RawTensor{a, b}, 0)

		got := result.AsBool()
		want := []bool{true, false, true}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Concat bool failed: got %v, want %v", got, want)
			}
		}
	})

	t.Run("SingleTensorCopies", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{2}, 1, 2)

		result := backend.Concat([]*tensor.RawTensor{a, a}, 0)

		expected := []float32{1, 2, 1, 2}
		if !float32Near(result.AsFloat32(), expected, 0) {
			t.Errorf("Concat repeated tensor failed: got %v", result.AsFloat32())
		}
	})

	t.Run("Panics", func(t *testing.T) {
		a := rawF32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)

		mustPanic(t, "empty input", func() { backend.Concat(nil, 0) })
		mustPanic(t, "rank mismatch", func() {
			backend.Concat([]*tensor.RawTensor{a, rawF32(t, tensor.Shape{2}, 1, 2)}, 0)
		})
		mustPanic(t, "dtype mismatch", func() {
			backend.Concat([]*tensor.RawTensor{a, rawF64(t, tensor.Shape{2, 2}, 1, 2, 3, 4)}, 0)
		})
		mustPanic(t, "off-dim mismatch", func() {
			backend.Concat([]*tensor.RawTensor{a, rawF32(t, tensor.Shape{1, 3}, 1, 2, 3)}, 0)
		})
		mustPanic(t, "dim out of range", func() {
			backend.Concat([]*tensor.RawTensor{a}, 2)
		})
	})
}

// TestCPUBackend_Reshape tests reshaping with copy semantics.
func TestCPUBackend_Reshape(t *testing.T) {
	backend := newTestBackend()

	t.Run("Basic", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

		result := backend.Reshape(x, tensor.Shape{3, 2})

		if !result.Shape().Equal(tensor.Shape{3, 2}) {
			t.Fatalf("shape = %v, want [3 2]", result.Shape())
		}
		if !float32Near(result.AsFloat32(), x.AsFloat32(), 0) {
			t.Errorf("Reshape changed data: got %v", result.AsFloat32())
		}
	})

	t.Run("ScalarToVector", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{}, 42)

		result := backend.Reshape(x, tensor.Shape{1})

		if got := result.AsFloat32()[0]; got != 42 {
			t.Errorf("Reshape scalar = %v, want 42", got)
		}
	})

	t.Run("ResultIsIndependent", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{2}, 1, 2)

		result := backend.Reshape(x, tensor.Shape{2, 1})
		result.AsFloat32()[0] = 99

		if x.AsFloat32()[0] != 1 {
			t.Error("Reshape must copy, not alias, the source buffer")
		}
	})

	t.Run("Panics", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

		mustPanic(t, "element count mismatch", func() { backend.Reshape(x, tensor.Shape{4}) })
		mustPanic(t, "invalid shape", func() { backend.Reshape(x, tensor.Shape{-1, 6}) })
	})
}
