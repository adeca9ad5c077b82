// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides concrete tensors for the Weft framework.
//
// # Overview
//
// Tensors are the values that flow through a compiled graph. This package
// provides:
//   - RawTensor: a flat typed buffer with shape, strides and dtype
//   - Concrete Shape with NumPy-style broadcasting rules
//   - Backend: the kernel contract compute devices implement
//   - Creation helpers (Zeros, Ones, Full, FromSlice)
//
// # Basic Usage
//
//	import (
//	    "github.com/weft-ml/weft/tensor"
//	)
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    y := tensor.Ones(tensor.Shape{2, 3}, tensor.Float32)
//	    _ = x
//	    _ = y
//	}
//
// # Supported Data Types
//
// The DType constraint covers the storable element types:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
//   - bool (boolean masks)
//
// # Broadcasting
//
// Shape pairs combine under NumPy broadcasting rules:
//
//	a := tensor.Shape{3, 1}
//	b := tensor.Shape{3, 4}
//	out, _, _ := tensor.BroadcastShapes(a, b) // [3, 4]
//
// Symbolic shapes with unknown dimensions live in the graph package; this
// package only ever sees fully known sizes.
package tensor
