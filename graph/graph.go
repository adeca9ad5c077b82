// Copyright 2025 Weft ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph

import (
	"github.com/weft-ml/weft/internal/graph"
	"github.com/weft-ml/weft/internal/tensor"
)

// Type aliases for public API

// DimUnknown marks a dimension whose size is only known at execution time.
const DimUnknown = graph.DimUnknown

// Shape is a symbolic tensor shape: each dimension is either a positive
// size or DimUnknown. Concrete tensors use tensor.Shape instead.
type Shape = graph.Shape

// Symbolic is a tensor stand-in carrying shape and dtype metadata plus a
// back-reference to the node that produced it.
type Symbolic = graph.Symbolic

// Source identifies the producing (operation, node index, output slot) of
// a symbolic tensor.
type Source = graph.Source

// Operation is the contract graph operations implement. Call computes
// concrete results; ComputeOutputSpec propagates metadata only.
type Operation = graph.Operation

// Argument is one slot in an operation application: a tensor reference, a
// tensor list, or an opaque constant.
type Argument = graph.Argument

// Arguments is the full argument template of one application.
type Arguments = graph.Arguments

// Node records one immutable operation application.
type Node = graph.Node

// Builder is the graph definition phase. It owns the per-operation
// application lists; operations themselves stay stateless.
type Builder = graph.Builder

// Function is a captured, replayable subgraph.
type Function = graph.Function

// Constructors

// NewBuilder creates an empty definition phase.
func NewBuilder() *Builder {
	return graph.NewBuilder()
}

// Placeholder creates a named root input with no producer.
//
// Example:
//
//	x := graph.Placeholder("x", graph.Shape{graph.DimUnknown, 4}, tensor.Float32)
func Placeholder(name string, shape Shape, dtype tensor.DataType) *Symbolic {
	return graph.Placeholder(name, shape, dtype)
}

// NewSymbolic creates an anonymous symbolic tensor, typically inside an
// operation's ComputeOutputSpec.
func NewSymbolic(shape Shape, dtype tensor.DataType) *Symbolic {
	return graph.NewSymbolic(shape, dtype)
}

// FromConcrete wraps a concrete tensor shape as a symbolic one.
func FromConcrete(s tensor.Shape) Shape {
	return graph.FromConcrete(s)
}

// TensorArg marks a positional or named slot as a tensor reference.
func TensorArg(t *Symbolic) Argument {
	return graph.TensorArg(t)
}

// TensorListArg marks a slot as an ordered list of tensor references.
func TensorListArg(ts ...*Symbolic) Argument {
	return graph.TensorListArg(ts...)
}

// ConstArg marks a slot as a constant passed through replay unchanged.
func ConstArg(v any) Argument {
	return graph.ConstArg(v)
}

// NewFunction captures the subgraph between inputs and outputs. Both may be
// single tensors, slices, or string-keyed maps, nested arbitrarily.
// Construction fails if the graph has a cycle, a disconnected dependency,
// or duplicate operation names.
func NewFunction(b *Builder, inputs, outputs any) (*Function, error) {
	return graph.NewFunction(b, inputs, outputs)
}
