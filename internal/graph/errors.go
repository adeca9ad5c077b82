package graph

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrNoInputs  = errors.New("function requires at least one input")
	ErrNoOutputs = errors.New("function requires at least one output")
)

// CycleError reports a tensor that participates in a cycle, which can only
// happen when node records have been constructed by hand.
type CycleError struct {
	Tensor    *Symbolic // tensor reached twice on one traversal path
	Operation Operation // operation whose inputs closed the cycle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("tensor %q from operation %q is part of a cycle", e.Tensor.Name(), e.Operation.Name())
}

// DisconnectedError reports an operation whose inputs cannot all be reached
// from the declared graph inputs.
type DisconnectedError struct {
	Operation Operation // operation missing an input value
	Tensor    *Symbolic // the unreachable input tensor
	Validated []string  // keys of nodes confirmed computable before the failure
}

func (e *DisconnectedError) Error() string {
	return fmt.Sprintf("graph disconnected: cannot obtain value for tensor %q at operation %q; "+
		"the following nodes were reachable without issue: [%s]",
		e.Tensor.Name(), e.Operation.Name(), strings.Join(e.Validated, ", "))
}

// DuplicateNameError reports a name shared by several operations or several
// declared inputs.
type DuplicateNameError struct {
	Name  string // the offending name
	Count int    // how many holders share it
	What  string // "operation" or "input"
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("the name %q is used %d times in the graph; all %s names must be unique",
		e.Name, e.Count, e.What)
}

// StructureError reports provided inputs whose nesting does not match the
// structure the function was defined with.
type StructureError struct {
	Want string // expected structure, rendered
	Got  string // provided structure, rendered
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("function called with an invalid input structure: expected %s, received %s", e.Want, e.Got)
}

// RankError reports a provided input whose rank differs from the declared
// input's shape.
type RankError struct {
	Tensor *Symbolic // declared input
	Got    Shape     // provided shape
}

func (e *RankError) Error() string {
	return fmt.Sprintf("invalid input %q: expected rank %d (shape %s), received rank %d (shape %s)",
		e.Tensor.Name(), e.Tensor.Shape().Rank(), e.Tensor.Shape(), e.Got.Rank(), e.Got)
}

// ShapeError reports a provided input that disagrees with the declared
// input's shape on a dimension both sides know.
type ShapeError struct {
	Tensor *Symbolic // declared input
	Axis   int       // first mismatching axis
	Got    Shape     // provided shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid input %q: expected shape %s, received shape %s (mismatch at axis %d)",
		e.Tensor.Name(), e.Tensor.Shape(), e.Got, e.Axis)
}

// ArityError reports an operation that returned a different number of
// outputs during replay than it did at graph definition time.
type ArityError struct {
	NodeKey string // node whose replay misbehaved
	Want    int    // outputs recorded at definition time
	Got     int    // outputs returned during replay
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("node %q produced %d outputs during replay, expected %d", e.NodeKey, e.Got, e.Want)
}

// UnresolvedOutputError reports declared outputs that replay never assigned
// a value, which happens when every path to them was skipped for missing
// inputs.
type UnresolvedOutputError struct {
	Tensors []*Symbolic // outputs left without a value
}

func (e *UnresolvedOutputError) Error() string {
	names := make([]string, len(e.Tensors))
	for i, t := range e.Tensors {
		names[i] = fmt.Sprintf("%q", t.Name())
	}
	return fmt.Sprintf("could not compute output(s) %s", strings.Join(names, ", "))
}
