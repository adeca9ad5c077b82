package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// normalizeDim resolves negative dimension indexing (-1 = last dim) and
// panics when the dimension is out of range for the tensor's rank.
func normalizeDim(op string, dim, ndim int) int {
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for %dD tensor", op, dim, ndim))
	}
	return dim
}

// reducedShape computes the output shape after reducing dim.
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

// laneSizes decomposes a shape around dim into outer blocks, the reduced
// extent, and the inner stride. The flat index of element (o, j, i) is
// o*size*inner + j*inner + i.
func laneSizes(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, size, inner = 1, shape[dim], 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, size, inner
}

// Sum computes the total sum of all elements in the tensor (scalar result).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumSlice(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumSlice(x.AsFloat64())
	case tensor.Int32:
		result.AsInt32()[0] = sumSlice(x.AsInt32())
	case tensor.Int64:
		result.AsInt64()[0] = sumSlice(x.AsInt64())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return result
}

func sumSlice[T numeric](src []T) T {
	var sum T
	for _, v := range src {
		sum += v
	}
	return sum
}

// SumDim sums tensor elements along the specified dimension.
//
// Example:
//
//	y := backend.SumDim(x, -1, true)   // [2, 3, 4] -> [2, 3, 1]
//	z := backend.SumDim(x, -1, false)  // [2, 3, 4] -> [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	dim = normalizeDim("sumdim", dim, len(x.Shape()))
	result, err := tensor.NewRaw(reducedShape(x.Shape(), dim, keepDim), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}
	outer, size, inner := laneSizes(x.Shape(), dim)
	switch x.DType() {
	case tensor.Float32:
		sumDimSlices(result.AsFloat32(), x.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		sumDimSlices(result.AsFloat64(), x.AsFloat64(), outer, size, inner)
	case tensor.Int32:
		sumDimSlices(result.AsInt32(), x.AsInt32(), outer, size, inner)
	case tensor.Int64:
		sumDimSlices(result.AsInt64(), x.AsInt64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}
	return result
}

func sumDimSlices[T numeric](dst, src []T, outer, size, inner int) {
	// dst is zero-initialized; accumulate straight into it.
	for o := 0; o < outer; o++ {
		srcBase := o * size * inner
		dstBase := o * inner
		for j := 0; j < size; j++ {
			lane := srcBase + j*inner
			for i := 0; i < inner; i++ {
				dst[dstBase+i] += src[lane+i]
			}
		}
	}
}

// MaxDim computes the maximum of tensor elements along the specified
// dimension.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	dim = normalizeDim("maxdim", dim, len(x.Shape()))
	result, err := tensor.NewRaw(reducedShape(x.Shape(), dim, keepDim), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("maxdim: %v", err))
	}
	outer, size, inner := laneSizes(x.Shape(), dim)
	switch x.DType() {
	case tensor.Float32:
		maxDimSlices(result.AsFloat32(), x.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		maxDimSlices(result.AsFloat64(), x.AsFloat64(), outer, size, inner)
	case tensor.Int32:
		maxDimSlices(result.AsInt32(), x.AsInt32(), outer, size, inner)
	case tensor.Int64:
		maxDimSlices(result.AsInt64(), x.AsInt64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("maxdim: unsupported dtype %s", x.DType()))
	}
	return result
}

func maxDimSlices[T numeric](dst, src []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		srcBase := o * size * inner
		dstBase := o * inner
		// Seed with the first lane, then fold in the rest.
		for i := 0; i < inner; i++ {
			dst[dstBase+i] = src[srcBase+i]
		}
		for j := 1; j < size; j++ {
			lane := srcBase + j*inner
			for i := 0; i < inner; i++ {
				if v := src[lane+i]; v > dst[dstBase+i] {
					dst[dstBase+i] = v
				}
			}
		}
	}
}
