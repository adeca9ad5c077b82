package graph

import (
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/weft-ml/weft/internal/nest"
	"github.com/weft-ml/weft/internal/tensor"
)

// Function replays the subgraph between chosen input and output tensors.
// Construction validates the topology once; afterwards the same Function
// can execute concrete tensors with Call or propagate shape and dtype
// metadata with ComputeOutputSpec. A Function is immutable and safe for
// concurrent calls, provided the operations it replays are.
type Function struct {
	inputsStruct  any
	outputsStruct any
	inputs        []*Symbolic
	outputs       []*Symbolic
	gm            *graphMap
}

// NewFunction maps the subgraph of b that connects inputs to outputs. Both
// arguments may be single tensors, slices, or string-keyed maps, nested
// arbitrarily; the nesting is remembered, and Call returns its results in
// the outputs' structure. Applications recorded on b after construction do
// not affect the returned Function.
func NewFunction(b *Builder, inputs, outputs any) (*Function, error) {
	if b == nil {
		return nil, errors.New("function: builder is nil")
	}
	flatIn, err := symbolicLeaves(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "function inputs")
	}
	flatOut, err := symbolicLeaves(outputs)
	if err != nil {
		return nil, errors.Wrap(err, "function outputs")
	}
	if len(flatIn) == 0 {
		return nil, ErrNoInputs
	}
	if len(flatOut) == 0 {
		return nil, ErrNoOutputs
	}

	snap := b.snapshot()
	resolve := func(t *Symbolic) (*Node, error) {
		src := t.Source()
		if src == nil {
			return nil, nil
		}
		apps := snap[src.Operation]
		if src.NodeIndex >= len(apps) {
			return nil, errors.Errorf("tensor %q was produced outside this function's builder", t.Name())
		}
		n := apps[src.NodeIndex]
		if src.Slot < 0 || src.Slot >= len(n.outputs) || n.outputs[src.Slot] != t {
			return nil, errors.Errorf("tensor %q does not match the recorded outputs of node %q", t.Name(), n.Key())
		}
		return n, nil
	}
	gm, err := mapGraph(resolve, flatIn, flatOut)
	if err != nil {
		return nil, err
	}

	ident := func(x any) any { return x }
	return &Function{
		inputsStruct:  nest.Map(ident, inputs),
		outputsStruct: nest.Map(ident, outputs),
		inputs:        flatIn,
		outputs:       flatOut,
		gm:            gm,
	}, nil
}

// Call executes the graph on concrete tensors arranged in the declared
// input structure and returns results in the output structure. Nodes whose
// inputs never become available are skipped; declared outputs still missing
// after the walk produce an UnresolvedOutputError.
func (f *Function) Call(inputs any) (any, error) {
	if err := f.assertCompatible(inputs, Execute); err != nil {
		return nil, err
	}
	return f.runGraph(inputs, Execute)
}

// ComputeOutputSpec propagates shape and dtype metadata through the graph
// without executing kernels. When every provided shape exactly matches the
// declared input shape, fresh tensors mirroring the recorded output
// metadata are returned without walking the graph.
func (f *Function) ComputeOutputSpec(inputs any) (any, error) {
	if err := f.assertCompatible(inputs, InferSpec); err != nil {
		return nil, err
	}
	shortcut := true
	for i, leaf := range nest.Flatten(inputs) {
		if !leaf.(*Symbolic).Shape().Equal(f.inputs[i].Shape()) {
			shortcut = false
			break
		}
	}
	if shortcut {
		return nest.Map(func(x any) any {
			t := x.(*Symbolic)
			return NewSymbolic(t.Shape().Clone(), t.DType())
		}, f.outputsStruct), nil
	}
	return f.runGraph(inputs, InferSpec)
}

// Inputs returns the flattened input tensors in declaration order.
func (f *Function) Inputs() []*Symbolic {
	return append([]*Symbolic(nil), f.inputs...)
}

// Outputs returns the flattened output tensors in declaration order.
func (f *Function) Outputs() []*Symbolic {
	return append([]*Symbolic(nil), f.outputs...)
}

// Operations returns the mapped operations ordered from inputs towards
// outputs, with ties broken by traversal order.
func (f *Function) Operations() []Operation {
	return append([]Operation(nil), f.gm.operations...)
}

// Nodes returns every mapped node, ordered from inputs towards outputs.
func (f *Function) Nodes() []*Node {
	return append([]*Node(nil), f.gm.nodes...)
}

// NodeKeys returns the stable identifiers of every mapped node, sorted.
func (f *Function) NodeKeys() []string {
	keys := make([]string, 0, len(f.gm.nodeKeys))
	for k := range f.gm.nodeKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NodesByDepth returns a copy of the nodes bucketed by depth.
func (f *Function) NodesByDepth() map[int][]*Node {
	out := make(map[int][]*Node, len(f.gm.nodesByDepth))
	for d, ns := range f.gm.nodesByDepth {
		out[d] = append([]*Node(nil), ns...)
	}
	return out
}

// OperationsByDepth returns a copy of the operations bucketed by depth.
func (f *Function) OperationsByDepth() map[int][]Operation {
	out := make(map[int][]Operation, len(f.gm.operationsByDepth))
	for d, ops := range f.gm.operationsByDepth {
		out[d] = append([]Operation(nil), ops...)
	}
	return out
}

// assertCompatible validates provided inputs against the declared ones:
// structure first, then rank, then every dimension both sides know. Unknown
// dimensions accept anything.
func (f *Function) assertCompatible(inputs any, mode Mode) error {
	if err := nest.AssertSameStructure(inputs, f.inputsStruct); err != nil {
		return &StructureError{Want: nest.Describe(f.inputsStruct), Got: nest.Describe(inputs)}
	}
	for i, leaf := range nest.Flatten(inputs) {
		ref := f.inputs[i]
		got, err := providedShape(leaf, mode)
		if err != nil {
			return errors.Wrapf(err, "input %q", ref.Name())
		}
		if got.Rank() != ref.Shape().Rank() {
			return &RankError{Tensor: ref, Got: got}
		}
		for axis, dim := range ref.Shape() {
			if dim != DimUnknown && got[axis] != DimUnknown && got[axis] != dim {
				return &ShapeError{Tensor: ref, Axis: axis, Got: got}
			}
		}
	}
	return nil
}

func providedShape(leaf any, mode Mode) (Shape, error) {
	if mode == Execute {
		rt, ok := leaf.(*tensor.RawTensor)
		if !ok {
			return nil, errors.Errorf("expected a concrete tensor, got %T", leaf)
		}
		return FromConcrete(rt.Shape()), nil
	}
	t, ok := leaf.(*Symbolic)
	if !ok {
		return nil, errors.Errorf("expected a symbolic tensor, got %T", leaf)
	}
	return t.Shape(), nil
}

// runGraph walks the depth buckets from the inputs towards the outputs,
// resolving each node's argument template against the values computed so
// far and recording its outputs.
func (f *Function) runGraph(inputs any, mode Mode) (any, error) {
	flat := nest.Flatten(inputs)
	values := make(map[*Symbolic]any, len(flat))
	for i, t := range f.inputs {
		values[t] = flat[i]
	}

	for _, depth := range f.gm.depths {
		for _, n := range f.gm.nodesByDepth[depth] {
			if n.isInput {
				continue
			}
			if !n.computable(values) {
				klog.V(3).Infof("graph: skipping node %s, inputs not yet available", n.Key())
				continue
			}
			args, named, _ := n.args.resolve(func(t *Symbolic) (any, bool) {
				v, ok := values[t]
				return v, ok
			})

			var out any
			var err error
			if mode == Execute {
				out, err = n.op.Call(args, named)
			} else {
				out, err = n.op.ComputeOutputSpec(args, named)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "node %s (%s)", n.Key(), mode)
			}

			flatOut := nest.Flatten(out)
			if len(flatOut) != len(n.outputs) {
				return nil, &ArityError{NodeKey: n.Key(), Want: len(n.outputs), Got: len(flatOut)}
			}
			for i, t := range n.outputs {
				values[t] = flatOut[i]
			}
		}
	}

	results := make([]any, len(f.outputs))
	var missing []*Symbolic
	for i, t := range f.outputs {
		v, ok := values[t]
		if !ok {
			missing = append(missing, t)
			continue
		}
		results[i] = v
	}
	if len(missing) > 0 {
		return nil, &UnresolvedOutputError{Tensors: missing}
	}
	return nest.Pack(f.outputsStruct, results)
}
