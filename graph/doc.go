// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides symbolic computation graphs for the Weft framework.
//
// A graph is built in two phases. During definition, operations are applied
// to symbolic tensors through a Builder; no computation happens, but every
// application is validated through the operation's metadata entry point and
// recorded as an immutable node. A Function then captures the subgraph
// between chosen inputs and outputs: it maps the graph (reachability,
// depths, validation, deterministic ordering) once at construction and can
// replay it any number of times afterwards.
//
// Replaying runs in one of two modes. Call feeds concrete tensors through
// the recorded operations and returns concrete results. ComputeOutputSpec
// feeds symbolic tensors instead and returns only shape and dtype metadata,
// never touching tensor data.
//
// Example:
//
//	import (
//	    "github.com/weft-ml/weft/backend/cpu"
//	    "github.com/weft-ml/weft/graph"
//	    "github.com/weft-ml/weft/ops"
//	    "github.com/weft-ml/weft/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    b := graph.NewBuilder()
//
//	    x := graph.Placeholder("x", graph.Shape{graph.DimUnknown, 4}, tensor.Float32)
//	    ys, _ := b.Apply(ops.NewReLU("act", backend), x)
//	    fn, _ := graph.NewFunction(b, x, ys[0])
//
//	    in, _ := tensor.FromSlice([]float32{-1, 2, -3, 4}, tensor.Shape{1, 4})
//	    out, _ := fn.Call(in)
//	    _ = out // [0 2 0 4]
//	}
//
// Functions are immutable once constructed and safe for concurrent replay.
package graph
