// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/weft-ml/weft/internal/tensor"
)

// RawTensor is the concrete tensor representation.
//
// RawTensor provides:
//   - Shape, stride and type information via Shape(), Strides(), DType()
//   - Type-safe data access via AsFloat32(), AsInt64(), etc.
//   - Deep copies via Clone()
//
// The typed views reinterpret the underlying buffer in place; mutating a
// view mutates the tensor.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32() // Type-safe access
//	copy := raw.Clone()     // Independent buffer
type RawTensor = tensor.RawTensor
