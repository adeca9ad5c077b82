// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the built-in graph operations for the Weft framework.
//
// Every operation implements graph.Operation: Call computes concrete
// results through a tensor.Backend, ComputeOutputSpec propagates shape and
// dtype metadata (unknown dimensions included) without computing anything.
//
// Operations carry only their attributes; application state lives in the
// graph. Applying one operation at several call sites shares it, which for
// Dense means shared weights.
//
// Example:
//
//	backend := cpu.New()
//	b := graph.NewBuilder()
//	x := graph.Placeholder("x", graph.Shape{graph.DimUnknown, 4}, tensor.Float32)
//
//	weight, _ := tensor.FromSlice(make([]float32, 4*2), tensor.Shape{4, 2})
//	dense, _ := ops.NewDense("proj", weight, nil, backend)
//	ys, _ := b.Apply(dense, x)
package ops

import (
	"github.com/weft-ml/weft/graph"
	"github.com/weft-ml/weft/internal/ops"
	"github.com/weft-ml/weft/tensor"
)

// Type aliases for public API

// Binary is an element-wise binary arithmetic operation with NumPy-style
// broadcasting.
type Binary = ops.Binary

// Unary is an element-wise unary operation.
type Unary = ops.Unary

// Dense applies the affine projection x @ W + b with the weights held on
// the operation.
type Dense = ops.Dense

// Concat joins tensors along one axis.
type Concat = ops.Concat

// Reshape reinterprets a tensor's elements under a new shape; one target
// dimension may be left unknown and inferred.
type Reshape = ops.Reshape

// SegmentSum sums rows into a fixed number of buckets selected by a
// parallel id vector.
type SegmentSum = ops.SegmentSum

// TopK selects the k largest entries along the last dimension, returning
// values and indices as two outputs.
type TopK = ops.TopK

// InTopK reports per row whether the target class scores among the top k
// predictions.
type InTopK = ops.InTopK

// LogSumExp reduces one axis with a numerically stable log(sum(exp(x))).
type LogSumExp = ops.LogSumExp

// Constructors

// NewAdd creates an element-wise addition.
func NewAdd(name string, backend tensor.Backend) *Binary { return ops.NewAdd(name, backend) }

// NewSub creates an element-wise subtraction.
func NewSub(name string, backend tensor.Backend) *Binary { return ops.NewSub(name, backend) }

// NewMul creates an element-wise multiplication.
func NewMul(name string, backend tensor.Backend) *Binary { return ops.NewMul(name, backend) }

// NewDiv creates an element-wise division.
func NewDiv(name string, backend tensor.Backend) *Binary { return ops.NewDiv(name, backend) }

// NewReLU creates a rectified linear unit.
func NewReLU(name string, backend tensor.Backend) *Unary { return ops.NewReLU(name, backend) }

// NewExp creates an element-wise exponential.
func NewExp(name string, backend tensor.Backend) *Unary { return ops.NewExp(name, backend) }

// NewLog creates an element-wise natural logarithm.
func NewLog(name string, backend tensor.Backend) *Unary { return ops.NewLog(name, backend) }

// NewDense creates a dense projection around existing weights. weight must
// be [in, out]; bias may be nil or [out].
func NewDense(name string, weight, bias *tensor.RawTensor, backend tensor.Backend) (*Dense, error) {
	return ops.NewDense(name, weight, bias, backend)
}

// NewConcat creates a concatenation along axis. Negative axes count from
// the end.
func NewConcat(name string, axis int, backend tensor.Backend) *Concat {
	return ops.NewConcat(name, axis, backend)
}

// NewReshape creates a reshape to target, which may carry one unknown
// dimension.
func NewReshape(name string, target graph.Shape, backend tensor.Backend) (*Reshape, error) {
	return ops.NewReshape(name, target, backend)
}

// NewSegmentSum creates a segment sum with numSegments output buckets.
func NewSegmentSum(name string, numSegments int, backend tensor.Backend) (*SegmentSum, error) {
	return ops.NewSegmentSum(name, numSegments, backend)
}

// NewTopK creates a top-k selection along the last dimension.
func NewTopK(name string, k int, sorted bool, backend tensor.Backend) (*TopK, error) {
	return ops.NewTopK(name, k, sorted, backend)
}

// NewInTopK creates a per-row top-k membership check.
func NewInTopK(name string, k int, backend tensor.Backend) (*InTopK, error) {
	return ops.NewInTopK(name, k, backend)
}

// NewLogSumExp creates a log-sum-exp reduction over axis.
func NewLogSumExp(name string, axis int, keepDims bool, backend tensor.Backend) *LogSumExp {
	return ops.NewLogSumExp(name, axis, keepDims, backend)
}
