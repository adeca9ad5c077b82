// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/weft-ml/weft/internal/tensor"

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for graph operations.
//
// Implementations:
//   - backend/cpu: Pure Go reference kernels
//
// Kernels panic on programmer error (shape or dtype misuse); such conditions
// are bugs in the calling operation, not runtime failures.
//
// Example:
//
//	import (
//	    "github.com/weft-ml/weft/backend/cpu"
//	)
//
//	backend := cpu.New()
//	z := backend.Add(x, y)
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor // Element-wise addition.
	Sub(a, b *RawTensor) *RawTensor // Element-wise subtraction.
	Mul(a, b *RawTensor) *RawTensor // Element-wise multiplication.
	Div(a, b *RawTensor) *RawTensor // Element-wise division.

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor // Matrix multiplication.

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor  // Exponential.
	Log(x *RawTensor) *RawTensor  // Natural logarithm.
	ReLU(x *RawTensor) *RawTensor // Rectified linear unit.

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor                              // Total sum (scalar result).
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor    // Sum along dimension.
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor    // Max along dimension.
	LogSumExp(x *RawTensor, dim int, keepDim bool) *RawTensor // Stable log(sum(exp)) along dimension.

	// Segment operations.
	SegmentSum(data, segmentIDs *RawTensor, numSegments int) *RawTensor // Scatter-add rows by segment id.

	// Selection operations.
	TopK(x *RawTensor, k int, sorted bool) (*RawTensor, *RawTensor) // K largest values and indices, last dimension.
	InTopK(targets, predictions *RawTensor, k int) *RawTensor       // Per-row top-k membership (ties count as in).

	// Manipulation operations.
	Concat(tensors []*RawTensor, dim int) *RawTensor // Concatenate along dimension.
	Reshape(t *RawTensor, newShape Shape) *RawTensor // Reshape tensor.

	// Metadata.
	Name() string   // Backend name (e.g., "CPU").
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
