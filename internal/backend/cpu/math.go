package cpu

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/weft-ml/weft/internal/tensor"
)

// unaryResult allocates the output of an element-wise kernel.
func (cpu *CPUBackend) unaryResult(op string, x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return result
}

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.unaryResult("exp", x)
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = math32.Exp(v)
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = math.Exp(v)
		}
	default:
		panic(fmt.Sprintf("exp: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
	return result
}

// Log computes element-wise natural logarithm: ln(x).
// Non-positive inputs follow IEEE semantics: log(0) is -Inf and log of a
// negative value is NaN.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.unaryResult("log", x)
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = math32.Log(v)
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = math.Log(v)
		}
	default:
		panic(fmt.Sprintf("log: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
	return result
}

// ReLU computes element-wise max(x, 0).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.unaryResult("relu", x)
	switch x.DType() {
	case tensor.Float32:
		reluSlices(result.AsFloat32(), x.AsFloat32())
	case tensor.Float64:
		reluSlices(result.AsFloat64(), x.AsFloat64())
	case tensor.Int32:
		reluSlices(result.AsInt32(), x.AsInt32())
	case tensor.Int64:
		reluSlices(result.AsInt64(), x.AsInt64())
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}
	return result
}

func reluSlices[T numeric](dst, src []T) {
	// dst is zero-initialized, so only positive values need copying.
	for i, v := range src {
		if v > 0 {
			dst[i] = v
		}
	}
}

// LogSumExp computes log(sum(exp(x))) along dim, shifting by the lane
// maximum so large magnitudes do not overflow.
func (cpu *CPUBackend) LogSumExp(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	dim = normalizeDim("logsumexp", dim, len(x.Shape()))
	result, err := tensor.NewRaw(reducedShape(x.Shape(), dim, keepDim), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("logsumexp: %v", err))
	}
	outer, size, inner := laneSizes(x.Shape(), dim)
	switch x.DType() {
	case tensor.Float32:
		logSumExpFloat32(result.AsFloat32(), x.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		logSumExpFloat64(result.AsFloat64(), x.AsFloat64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("logsumexp: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}
	return result
}

func logSumExpFloat32(dst, src []float32, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*size*inner + i
			m := src[base]
			for j := 1; j < size; j++ {
				if v := src[base+j*inner]; v > m {
					m = v
				}
			}
			// An infinite maximum is its own answer; subtracting it from
			// the lane would produce NaN.
			if math32.IsInf(m, 0) {
				dst[o*inner+i] = m
				continue
			}
			var sum float32
			for j := 0; j < size; j++ {
				sum += math32.Exp(src[base+j*inner] - m)
			}
			dst[o*inner+i] = m + math32.Log(sum)
		}
	}
}

func logSumExpFloat64(dst, src []float64, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*size*inner + i
			m := src[base]
			for j := 1; j < size; j++ {
				if v := src[base+j*inner]; v > m {
					m = v
				}
			}
			if math.IsInf(m, 0) {
				dst[o*inner+i] = m
				continue
			}
			var sum float64
			for j := 0; j < size; j++ {
				sum += math.Exp(src[base+j*inner] - m)
			}
			dst[o*inner+i] = m + math.Log(sum)
		}
	}
}
