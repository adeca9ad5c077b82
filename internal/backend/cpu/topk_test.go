package cpu

import (
	"math"
	"testing"

	"github.com/weft-ml/weft/internal/tensor"
)

// TestCPUBackend_TopK tests top-k selection along the last dimension.
func TestCPUBackend_TopK(t *testing.T) {
	backend := newTestBackend()

	t.Run("SortedDescending", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{5}, 3, 1, 4, 1, 5)

		values, indices := backend.TopK(x, 3, true)

		if !values.Shape().Equal(tensor.Shape{3}) {
			t.Fatalf("values shape = %v, want [3]", values.Shape())
		}
		if indices.DType() != tensor.Int64 {
			t.Fatalf("indices dtype = %s, want int64", indices.DType())
		}
		if !float32Near(values.AsFloat32(), []float32{5, 4, 3}, 0) {
			t.Errorf("TopK values = %v, want [5 4 3]", values.AsFloat32())
		}
		if !int64Equal(indices.AsInt64(), []int64{4, 2, 0}) {
			t.Errorf("TopK indices = %v, want [4 2 0]", indices.AsInt64())
		}
	})

	t.Run("TiesPreferLowerIndex", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{4}, 1, 3, 3, 2)

		values, indices := backend.TopK(x, 2, true)

		if !float32Near(values.AsFloat32(), []float32{3, 3}, 0) {
			t.Errorf("TopK tie values = %v, want [3 3]", values.AsFloat32())
		}
		if !int64Equal(indices.AsInt64(), []int64{1, 2}) {
			t.Errorf("TopK tie indices = %v, want [1 2]", indices.AsInt64())
		}
	})

	t.Run("UnsortedReturnsIndexOrder", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{5}, 3, 1, 4, 1, 5)

		values, indices := backend.TopK(x, 2, false)

		if !int64Equal(indices.AsInt64(), []int64{2, 4}) {
			t.Errorf("TopK unsorted indices = %v, want [2 4]", indices.AsInt64())
		}
		if !float32Near(values.AsFloat32(), []float32{4, 5}, 0) {
			t.Errorf("TopK unsorted values = %v, want [4 5]", values.AsFloat32())
		}
	})

	t.Run("Batched", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{2, 3},
			1, 9, 5,
			7, 2, 8)

		values, indices := backend.TopK(x, 2, true)

		if !values.Shape().Equal(tensor.Shape{2, 2}) {
			t.Fatalf("values shape = %v, want [2 2]", values.Shape())
		}
		if !float32Near(values.AsFloat32(), []float32{9, 5, 8, 7}, 0) {
			t.Errorf("TopK batched values = %v", values.AsFloat32())
		}
		if !int64Equal(indices.AsInt64(), []int64{1, 2, 2, 0}) {
			t.Errorf("TopK batched indices = %v", indices.AsInt64())
		}
	})

	t.Run("KEqualsClasses", func(t *testing.T) {
		x := rawI32(t, tensor.Shape{3}, 2, 9, 4)

		values, indices := backend.TopK(x, 3, true)

		got := values.AsInt32()
		want := []int32{9, 4, 2}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("TopK int32 values = %v, want %v", got, want)
			}
		}
		if !int64Equal(indices.AsInt64(), []int64{1, 2, 0}) {
			t.Errorf("TopK int32 indices = %v", indices.AsInt64())
		}
	})

	t.Run("BadKPanics", func(t *testing.T) {
		x := rawF32(t, tensor.Shape{3}, 1, 2, 3)
		mustPanic(t, "k too small", func() { backend.TopK(x, 0, true) })
		mustPanic(t, "k too large", func() { backend.TopK(x, 4, true) })
	})
}

// TestCPUBackend_InTopK tests top-k membership of target classes.
func TestCPUBackend_InTopK(t *testing.T) {
	backend := newTestBackend()

	t.Run("Basic", func(t *testing.T) {
		predictions := rawF32(t, tensor.Shape{3, 4},
			0.1, 0.9, 0.8, 0.05,
			0.05, 0.95, 0, 1,
			0.5, 0.3, 0.2, 0.7)
		targets := rawI32(t, tensor.Shape{3}, 2, 2, 3)

		result := backend.InTopK(targets, predictions, 2)

		if result.DType() != tensor.Bool {
			t.Fatalf("dtype = %s, want bool", result.DType())
		}
		got := result.AsBool()
		want := []bool{true, false, true}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("InTopK = %v, want %v", got, want)
			}
		}
	})

	t.Run("TiesCountAsIn", func(t *testing.T) {
		predictions := rawF32(t, tensor.Shape{1, 3}, 0.5, 0.5, 0.1)
		targets := rawI64(t, tensor.Shape{1}, 1)

		result := backend.InTopK(targets, predictions, 1)

		if !result.AsBool()[0] {
			t.Error("InTopK: tied score should count as in")
		}
	})

	t.Run("OutOfRangeTargetIsFalse", func(t *testing.T) {
		predictions := rawF32(t, tensor.Shape{2, 2}, 0.6, 0.4, 0.3, 0.7)
		targets := rawI32(t, tensor.Shape{2}, 5, -1)

		result := backend.InTopK(targets, predictions, 2)

		got := result.AsBool()
		if got[0] || got[1] {
			t.Errorf("InTopK out-of-range targets = %v, want all false", got)
		}
	})

	t.Run("NaNScoreIsFalse", func(t *testing.T) {
		nan := float32(math.NaN())
		predictions := rawF32(t, tensor.Shape{1, 2}, nan, 0.1)
		targets := rawI32(t, tensor.Shape{1}, 0)

		result := backend.InTopK(targets, predictions, 2)

		if result.AsBool()[0] {
			t.Error("InTopK: NaN target score should not rank")
		}
	})

	t.Run("LargeKIncludesEverything", func(t *testing.T) {
		predictions := rawF32(t, tensor.Shape{2, 2}, 0.9, 0.1, 0.2, 0.8)
		targets := rawI32(t, tensor.Shape{2}, 1, 0)

		result := backend.InTopK(targets, predictions, 10)

		got := result.AsBool()
		if !got[0] || !got[1] {
			t.Errorf("InTopK with k >= classes = %v, want all true", got)
		}
	})

	t.Run("Panics", func(t *testing.T) {
		predictions := rawF32(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
		targets := rawI32(t, tensor.Shape{2}, 0, 1)

		mustPanic(t, "2D targets", func() {
			backend.InTopK(rawI32(t, tensor.Shape{2, 1}, 0, 1), predictions, 1)
		})
		mustPanic(t, "1D predictions", func() {
			backend.InTopK(targets, rawF32(t, tensor.Shape{2}, 1, 2), 1)
		})
		mustPanic(t, "row mismatch", func() {
			backend.InTopK(rawI32(t, tensor.Shape{3}, 0, 1, 0), predictions, 1)
		})
		mustPanic(t, "k < 1", func() {
			backend.InTopK(targets, predictions, 0)
		})
	})
}
