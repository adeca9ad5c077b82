// Package cpu implements the tensor.Backend contract with portable Go
// kernels. Heavy kernels parallelize across cores through internal/parallel;
// the rest run as straight loops over the typed views.
package cpu

import (
	"fmt"

	"github.com/weft-ml/weft/internal/tensor"
)

// CPUBackend implements tensor operations on the host CPU.
type CPUBackend struct {
	device tensor.Device
}

var _ tensor.Backend = (*CPUBackend)(nil)

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// numeric covers the element types arithmetic kernels accept.
type numeric interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	out, broadcast := cpu.binaryResult("add", a, b)
	if !broadcast {
		switch a.DType() {
		case tensor.Float32:
			addSlices(out.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			addSlices(out.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		case tensor.Int32:
			addSlices(out.AsInt32(), a.AsInt32(), b.AsInt32())
		case tensor.Int64:
			addSlices(out.AsInt64(), a.AsInt64(), b.AsInt64())
		default:
			panic(fmt.Sprintf("add: unsupported dtype %s", a.DType()))
		}
		return out
	}
	ai, bi := newBroadcastIndex(a.Shape(), out.Shape()), newBroadcastIndex(b.Shape(), out.Shape())
	switch a.DType() {
	case tensor.Float32:
		addBroadcast(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), ai, bi)
	case tensor.Float64:
		addBroadcast(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), ai, bi)
	case tensor.Int32:
		addBroadcast(out.AsInt32(), a.AsInt32(), b.AsInt32(), ai, bi)
	case tensor.Int64:
		addBroadcast(out.AsInt64(), a.AsInt64(), b.AsInt64(), ai, bi)
	default:
		panic(fmt.Sprintf("add: unsupported dtype %s", a.DType()))
	}
	return out
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	out, broadcast := cpu.binaryResult("sub", a, b)
	if !broadcast {
		switch a.DType() {
		case tensor.Float32:
			subSlices(out.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			subSlices(out.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		case tensor.Int32:
			subSlices(out.AsInt32(), a.AsInt32(), b.AsInt32())
		case tensor.Int64:
			subSlices(out.AsInt64(), a.AsInt64(), b.AsInt64())
		default:
			panic(fmt.Sprintf("sub: unsupported dtype %s", a.DType()))
		}
		return out
	}
	ai, bi := newBroadcastIndex(a.Shape(), out.Shape()), newBroadcastIndex(b.Shape(), out.Shape())
	switch a.DType() {
	case tensor.Float32:
		subBroadcast(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), ai, bi)
	case tensor.Float64:
		subBroadcast(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), ai, bi)
	case tensor.Int32:
		subBroadcast(out.AsInt32(), a.AsInt32(), b.AsInt32(), ai, bi)
	case tensor.Int64:
		subBroadcast(out.AsInt64(), a.AsInt64(), b.AsInt64(), ai, bi)
	default:
		panic(fmt.Sprintf("sub: unsupported dtype %s", a.DType()))
	}
	return out
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	out, broadcast := cpu.binaryResult("mul", a, b)
	if !broadcast {
		switch a.DType() {
		case tensor.Float32:
			mulSlices(out.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			mulSlices(out.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		case tensor.Int32:
			mulSlices(out.AsInt32(), a.AsInt32(), b.AsInt32())
		case tensor.Int64:
			mulSlices(out.AsInt64(), a.AsInt64(), b.AsInt64())
		default:
			panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
		}
		return out
	}
	ai, bi := newBroadcastIndex(a.Shape(), out.Shape()), newBroadcastIndex(b.Shape(), out.Shape())
	switch a.DType() {
	case tensor.Float32:
		mulBroadcast(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), ai, bi)
	case tensor.Float64:
		mulBroadcast(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), ai, bi)
	case tensor.Int32:
		mulBroadcast(out.AsInt32(), a.AsInt32(), b.AsInt32(), ai, bi)
	case tensor.Int64:
		mulBroadcast(out.AsInt64(), a.AsInt64(), b.AsInt64(), ai, bi)
	default:
		panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
	}
	return out
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	out, broadcast := cpu.binaryResult("div", a, b)
	if !broadcast {
		switch a.DType() {
		case tensor.Float32:
			divSlices(out.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			divSlices(out.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		case tensor.Int32:
			divSlices(out.AsInt32(), a.AsInt32(), b.AsInt32())
		case tensor.Int64:
			divSlices(out.AsInt64(), a.AsInt64(), b.AsInt64())
		default:
			panic(fmt.Sprintf("div: unsupported dtype %s", a.DType()))
		}
		return out
	}
	ai, bi := newBroadcastIndex(a.Shape(), out.Shape()), newBroadcastIndex(b.Shape(), out.Shape())
	switch a.DType() {
	case tensor.Float32:
		divBroadcast(out.AsFloat32(), a.AsFloat32(), b.AsFloat32(), ai, bi)
	case tensor.Float64:
		divBroadcast(out.AsFloat64(), a.AsFloat64(), b.AsFloat64(), ai, bi)
	case tensor.Int32:
		divBroadcast(out.AsInt32(), a.AsInt32(), b.AsInt32(), ai, bi)
	case tensor.Int64:
		divBroadcast(out.AsInt64(), a.AsInt64(), b.AsInt64(), ai, bi)
	default:
		panic(fmt.Sprintf("div: unsupported dtype %s", a.DType()))
	}
	return out
}

// binaryResult allocates the output of a binary kernel and reports whether
// the broadcast path is needed. Panics on dtype mismatch or incompatible
// shapes.
func (cpu *CPUBackend) binaryResult(op string, a, b *tensor.RawTensor) (*tensor.RawTensor, bool) {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType()))
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result, needsBroadcast
}

func addSlices[T numeric](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

func subSlices[T numeric](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

func mulSlices[T numeric](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

func divSlices[T numeric](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] / b[i]
	}
}

func addBroadcast[T numeric](dst, a, b []T, ai, bi broadcastIndex) {
	for i := range dst {
		dst[i] = a[ai.at(i)] + b[bi.at(i)]
	}
}

func subBroadcast[T numeric](dst, a, b []T, ai, bi broadcastIndex) {
	for i := range dst {
		dst[i] = a[ai.at(i)] - b[bi.at(i)]
	}
}

func mulBroadcast[T numeric](dst, a, b []T, ai, bi broadcastIndex) {
	for i := range dst {
		dst[i] = a[ai.at(i)] * b[bi.at(i)]
	}
}

func divBroadcast[T numeric](dst, a, b []T, ai, bi broadcastIndex) {
	for i := range dst {
		dst[i] = a[ai.at(i)] / b[bi.at(i)]
	}
}

// broadcastIndex maps flat output indices to flat indices of an input
// broadcast to the output shape. Input dimensions of size 1 and missing
// leading dimensions get stride 0, so their coordinate contributes nothing.
type broadcastIndex struct {
	outStrides []int
	inStrides  []int
}

func newBroadcastIndex(in, out tensor.Shape) broadcastIndex {
	offset := len(out) - len(in)
	orig := in.ComputeStrides()
	strides := make([]int, len(out))
	for i := range out {
		src := i - offset
		switch {
		case src < 0:
			strides[i] = 0
		case in[src] == 1:
			strides[i] = 0
		default:
			strides[i] = orig[src]
		}
	}
	return broadcastIndex{outStrides: out.ComputeStrides(), inStrides: strides}
}

func (bi broadcastIndex) at(i int) int {
	idx := 0
	for d := range bi.outStrides {
		coord := i / bi.outStrides[d]
		i %= bi.outStrides[d]
		idx += coord * bi.inStrides[d]
	}
	return idx
}
