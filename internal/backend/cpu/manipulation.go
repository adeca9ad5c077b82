package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// Concat concatenates tensors along the specified dimension.
//
// All tensors must share dtype and rank, and every dimension except the
// concatenation dimension must match. Supports negative dim indexing
// (-1 = last dimension).
//
// Example:
//
//	c := backend.Concat([]*tensor.RawTensor{a, b}, 1) // [2,3] + [2,5] -> [2,8]
func (cpu *CPUBackend) Concat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("concat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()
	dim = normalizeDim("concat", dim, ndim)

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("concat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("concat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("concat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim
	result, err := tensor.NewRaw(outShape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("concat: %v", err))
	}

	// Copy at the byte level: each input contributes one contiguous slab per
	// outer block, so a single path covers every dtype.
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := dtype.Size()
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}
	dst := result.Data()
	outBlock := totalDim * inner
	offset := 0
	for _, t := range tensors {
		src := t.Data()
		slab := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			copy(dst[o*outBlock+offset:o*outBlock+offset+slab], src[o*slab:(o+1)*slab])
		}
		offset += slab
	}
	return result
}

// Reshape returns a copy of the tensor with a new shape. The element count
// must be preserved.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	copy(result.Data(), t.Data())
	return result
}
