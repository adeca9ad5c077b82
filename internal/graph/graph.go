// Package graph implements the symbolic computation graph at the core of
// weft: symbolic tensors carrying shape and dtype metadata, immutable nodes
// recording each operation application, and the mapping pass that validates
// and depth-orders a subgraph for replay.
//
// Architecture:
//   - Symbolic: metadata-only tensor with a back-reference to its producer
//   - Builder: applies operations to symbolic tensors and records Nodes
//   - Node: one immutable application of an Operation
//   - Function: maps the subgraph between chosen inputs and outputs, then
//     replays it on concrete tensors (Call) or on symbolic tensors
//     (ComputeOutputSpec)
//
// Usage:
//
//	b := graph.NewBuilder()
//	x := graph.Placeholder("x", graph.Shape{graph.DimUnknown, 4}, tensor.Float32)
//	ys, _ := b.Apply(dense, x)
//	fn, _ := graph.NewFunction(b, []any{x}, []any{ys[0]})
//	out, _ := fn.Call([]any{batch})
package graph

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/weft-ml/weft/internal/nest"
)

// Builder records operation applications during graph definition. The
// Builder owns the application history; operations themselves stay
// stateless and shareable across builders. A Builder is not safe for
// concurrent use.
type Builder struct {
	nodes map[Operation][]*Node
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[Operation][]*Node)}
}

// Apply applies op to positional tensor inputs and returns the produced
// symbolic tensors, flattened.
func (b *Builder) Apply(op Operation, inputs ...*Symbolic) ([]*Symbolic, error) {
	args := Arguments{Positional: make([]Argument, len(inputs))}
	for i, t := range inputs {
		args.Positional[i] = TensorArg(t)
	}
	spec, err := b.ApplyArgs(op, args)
	if err != nil {
		return nil, err
	}
	return symbolicLeaves(spec)
}

// ApplyArgs applies op with an explicit argument template, which may mix
// tensors, tensor lists, constants, and named arguments. It runs the
// operation's ComputeOutputSpec on the bound symbolic tensors, records the
// application as a new Node, and returns the spec structure with every
// symbolic leaf tagged as produced by that node.
func (b *Builder) ApplyArgs(op Operation, args Arguments) (any, error) {
	if op == nil {
		return nil, errors.New("apply: operation is nil")
	}
	if op.Name() == "" {
		return nil, errors.New("apply: operation has an empty name")
	}
	inputs := args.tensors()
	if len(inputs) == 0 {
		return nil, errors.Errorf("apply %s: at least one symbolic tensor argument is required", op.Name())
	}
	for i, t := range inputs {
		if t == nil {
			return nil, errors.Errorf("apply %s: tensor argument %d is nil", op.Name(), i)
		}
	}

	// The identity lookup always succeeds, so the spec sees the symbolic
	// tensors themselves.
	posArgs, named, _ := args.resolve(func(t *Symbolic) (any, bool) { return t, true })
	spec, err := op.ComputeOutputSpec(posArgs, named)
	if err != nil {
		return nil, errors.Wrapf(err, "apply %s: output spec", op.Name())
	}
	outputs, err := symbolicLeaves(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "apply %s", op.Name())
	}
	if len(outputs) == 0 {
		return nil, errors.Errorf("apply %s: operation produced no outputs", op.Name())
	}

	seen := make(map[*Symbolic]int, len(outputs))
	for slot, t := range outputs {
		if t.source != nil {
			return nil, errors.Errorf("apply %s: output %d is already produced by operation %q",
				op.Name(), slot, t.source.Operation.Name())
		}
		if prev, dup := seen[t]; dup {
			return nil, errors.Errorf("apply %s: output %d duplicates output %d", op.Name(), slot, prev)
		}
		seen[t] = slot
	}

	index := len(b.nodes[op])
	node := newNode(op, index, args, outputs)
	for slot, t := range outputs {
		t.source = &Source{Operation: op, NodeIndex: index, Slot: slot}
		if t.name == "" {
			t.name = defaultTensorName(op.Name(), index, slot, len(outputs))
		}
	}
	b.nodes[op] = append(b.nodes[op], node)
	klog.V(3).Infof("graph: applied %s as node %s (%d inputs, %d outputs)",
		op.Name(), node.Key(), len(inputs), len(outputs))
	return spec, nil
}

// NodesOf returns the recorded applications of op in application order.
func (b *Builder) NodesOf(op Operation) []*Node {
	return append([]*Node(nil), b.nodes[op]...)
}

// snapshot copies the application record so later Apply calls cannot affect
// functions already constructed from it. Nodes are immutable and shared.
func (b *Builder) snapshot() map[Operation][]*Node {
	out := make(map[Operation][]*Node, len(b.nodes))
	for op, apps := range b.nodes {
		out[op] = append([]*Node(nil), apps...)
	}
	return out
}

func defaultTensorName(op string, index, slot, arity int) string {
	if arity == 1 {
		return fmt.Sprintf("%s.%d", op, index)
	}
	return fmt.Sprintf("%s.%d.%d", op, index, slot)
}

// symbolicLeaves flattens v and asserts every leaf is a *Symbolic.
func symbolicLeaves(v any) ([]*Symbolic, error) {
	flat := nest.Flatten(v)
	out := make([]*Symbolic, len(flat))
	for i, leaf := range flat {
		t, ok := leaf.(*Symbolic)
		if !ok || t == nil {
			return nil, errors.Errorf("expected a symbolic tensor, got %T", leaf)
		}
		out[i] = t
	}
	return out, nil
}
