// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for graph execution.
//
// # Overview
//
// This package implements the tensor.Backend contract with:
//   - Pure Go kernels (no CGO)
//   - Float32, float64, int32 and int64 element types
//   - NumPy-compatible broadcasting
//   - Worker-pool parallelism for the heavy kernels
//
// # Basic Usage
//
//	import (
//	    "github.com/weft-ml/weft/backend/cpu"
//	    "github.com/weft-ml/weft/graph"
//	    "github.com/weft-ml/weft/ops"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    b := graph.NewBuilder()
//	    x := graph.Placeholder("x", graph.Shape{2, 3}, tensor.Float32)
//	    ys, _ := b.Apply(ops.NewReLU("act", backend), x)
//	    _ = ys
//	}
//
// # Thread Safety
//
// The CPU backend holds no mutable state; kernels allocate fresh result
// tensors and are safe for concurrent use.
package cpu
