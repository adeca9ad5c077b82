package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weft-ml/weft/internal/tensor"
)

func buildChain(t *testing.T) (*Function, *Symbolic) {
	t.Helper()
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	ys, err := b.Apply(&scaleOp{name: "double", factor: 2}, x)
	require.NoError(t, err)
	zs, err := b.Apply(&scaleOp{name: "triple", factor: 3}, ys[0])
	require.NoError(t, err)
	fn, err := NewFunction(b, x, zs[0])
	require.NoError(t, err)
	return fn, x
}

func TestFunctionCall(t *testing.T) {
	fn, _ := buildChain(t)

	out, err := fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	require.NoError(t, err)
	rt := out.(*tensor.RawTensor)
	assert.Equal(t, []float32{6, 12}, rt.AsFloat32())

	// Replay is repeatable.
	out, err = fn.Call(f32(t, tensor.Shape{2}, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, []float32{60, 0}, out.(*tensor.RawTensor).AsFloat32())
}

func TestFunctionCallNestedStructures(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	y := Placeholder("y", Shape{2}, tensor.Float32)
	sums, err := b.Apply(&addOp{name: "sum"}, x, y)
	require.NoError(t, err)
	doubles, err := b.Apply(&scaleOp{name: "double", factor: 2}, x)
	require.NoError(t, err)

	fn, err := NewFunction(b,
		map[string]any{"a": x, "b": y},
		[]any{sums[0], doubles[0]},
	)
	require.NoError(t, err)

	out, err := fn.Call(map[string]any{
		"a": f32(t, tensor.Shape{2}, 1, 2),
		"b": f32(t, tensor.Shape{2}, 10, 20),
	})
	require.NoError(t, err)

	results := out.([]any)
	require.Len(t, results, 2)
	assert.Equal(t, []float32{11, 22}, results[0].(*tensor.RawTensor).AsFloat32())
	assert.Equal(t, []float32{2, 4}, results[1].(*tensor.RawTensor).AsFloat32())
}

func TestFunctionIdentity(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	fn, err := NewFunction(b, x, x)
	require.NoError(t, err)

	v := f32(t, tensor.Shape{2}, 5, 7)
	out, err := fn.Call(v)
	require.NoError(t, err)
	assert.Same(t, v, out.(*tensor.RawTensor))
}

func TestFunctionCallStructureMismatch(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	y := Placeholder("y", Shape{2}, tensor.Float32)
	sums, err := b.Apply(&addOp{name: "sum"}, x, y)
	require.NoError(t, err)
	fn, err := NewFunction(b, []any{x, y}, sums[0])
	require.NoError(t, err)

	_, err = fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
	assert.Contains(t, err.Error(), "invalid input structure")

	_, err = fn.Call([]any{f32(t, tensor.Shape{2}, 1, 2)})
	assert.ErrorAs(t, err, &structErr)
}

func TestFunctionCallRankMismatch(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{DimUnknown, 4}, tensor.Float32)
	ys, err := b.Apply(&scaleOp{name: "double", factor: 2}, x)
	require.NoError(t, err)
	fn, err := NewFunction(b, x, ys[0])
	require.NoError(t, err)

	_, err = fn.Call(f32(t, tensor.Shape{4}, 1, 2, 3, 4))
	var rankErr *RankError
	require.ErrorAs(t, err, &rankErr)
	assert.Equal(t, x, rankErr.Tensor)
	assert.Equal(t, Shape{4}, rankErr.Got)
}

func TestFunctionCallShapeMismatch(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{DimUnknown, 4}, tensor.Float32)
	ys, err := b.Apply(&scaleOp{name: "double", factor: 2}, x)
	require.NoError(t, err)
	fn, err := NewFunction(b, x, ys[0])
	require.NoError(t, err)

	// The unknown dim accepts any size.
	out, err := fn.Call(f32(t, tensor.Shape{2, 4}, 1, 2, 3, 4, 5, 6, 7, 8))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 4}, out.(*tensor.RawTensor).Shape())

	// A known dim must match exactly.
	_, err = fn.Call(f32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6))
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 1, shapeErr.Axis)
	assert.Equal(t, Shape{2, 3}, shapeErr.Got)
}

func TestFunctionCallWrongValueKind(t *testing.T) {
	fn, x := buildChain(t)

	_, err := fn.Call(x)
	assert.ErrorContains(t, err, "expected a concrete tensor")

	_, err = fn.ComputeOutputSpec(f32(t, tensor.Shape{2}, 1, 2))
	assert.ErrorContains(t, err, "expected a symbolic tensor")
}

// countingOp records how often its spec path runs.
type countingOp struct {
	scaleOp
	specCalls int
}

func (o *countingOp) ComputeOutputSpec(args []any, named map[string]any) (any, error) {
	o.specCalls++
	return o.scaleOp.ComputeOutputSpec(args, named)
}

func TestFunctionComputeOutputSpecShortcut(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{DimUnknown, 4}, tensor.Float32)
	op := &countingOp{scaleOp: scaleOp{name: "double", factor: 2}}
	ys, err := b.Apply(op, x)
	require.NoError(t, err)
	fn, err := NewFunction(b, x, ys[0])
	require.NoError(t, err)
	specCallsAfterBuild := op.specCalls

	// Identical shapes: answered from the recorded metadata.
	out, err := fn.ComputeOutputSpec(NewSymbolic(Shape{DimUnknown, 4}, tensor.Float32))
	require.NoError(t, err)
	spec := out.(*Symbolic)
	assert.Equal(t, Shape{DimUnknown, 4}, spec.Shape())
	assert.Equal(t, tensor.Float32, spec.DType())
	assert.NotSame(t, ys[0], spec)
	assert.Nil(t, spec.Source())
	assert.Equal(t, specCallsAfterBuild, op.specCalls)
}

func TestFunctionComputeOutputSpecPropagates(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{DimUnknown, 4}, tensor.Float32)
	op := &countingOp{scaleOp: scaleOp{name: "double", factor: 2}}
	ys, err := b.Apply(op, x)
	require.NoError(t, err)
	fn, err := NewFunction(b, x, ys[0])
	require.NoError(t, err)
	specCallsAfterBuild := op.specCalls

	// A more specific shape walks the graph and refines the output.
	out, err := fn.ComputeOutputSpec(NewSymbolic(Shape{8, 4}, tensor.Float32))
	require.NoError(t, err)
	assert.Equal(t, Shape{8, 4}, out.(*Symbolic).Shape())
	assert.Equal(t, specCallsAfterBuild+1, op.specCalls)
}

// affineOp computes x*scale+shift with scale as a positional constant and
// shift as a named constant.
type affineOp struct {
	name string
}

func (o *affineOp) Name() string { return o.name }

func (o *affineOp) Call(args []any, named map[string]any) (any, error) {
	x := args[0].(*tensor.RawTensor)
	scale := args[1].(float32)
	shift := named["shift"].(float32)
	out := tensor.Zeros(x.Shape().Clone(), x.DType())
	xs, os := x.AsFloat32(), out.AsFloat32()
	for i := range xs {
		os[i] = xs[i]*scale + shift
	}
	return out, nil
}

func (o *affineOp) ComputeOutputSpec(args []any, _ map[string]any) (any, error) {
	x := args[0].(*Symbolic)
	return NewSymbolic(x.Shape().Clone(), x.DType()), nil
}

func TestFunctionCallConstantArguments(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	op := &affineOp{name: "affine"}

	spec, err := b.ApplyArgs(op, Arguments{
		Positional: []Argument{TensorArg(x), ConstArg(float32(3))},
		Named:      map[string]Argument{"shift": ConstArg(float32(1))},
	})
	require.NoError(t, err)
	outs, err := symbolicLeaves(spec)
	require.NoError(t, err)

	fn, err := NewFunction(b, x, outs[0])
	require.NoError(t, err)

	out, err := fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 7}, out.(*tensor.RawTensor).AsFloat32())
}

// sumListOp sums an arbitrary list of tensors elementwise.
type sumListOp struct {
	name string
}

func (o *sumListOp) Name() string { return o.name }

func (o *sumListOp) Call(args []any, _ map[string]any) (any, error) {
	list := args[0].([]any)
	first := list[0].(*tensor.RawTensor)
	out := tensor.Zeros(first.Shape().Clone(), first.DType())
	os := out.AsFloat32()
	for _, v := range list {
		for i, f := range v.(*tensor.RawTensor).AsFloat32() {
			os[i] += f
		}
	}
	return out, nil
}

func (o *sumListOp) ComputeOutputSpec(args []any, _ map[string]any) (any, error) {
	list := args[0].([]any)
	first := list[0].(*Symbolic)
	return NewSymbolic(first.Shape().Clone(), first.DType()), nil
}

func TestFunctionCallTensorList(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	y := Placeholder("y", Shape{2}, tensor.Float32)
	z := Placeholder("z", Shape{2}, tensor.Float32)
	op := &sumListOp{name: "sumlist"}

	spec, err := b.ApplyArgs(op, Arguments{
		Positional: []Argument{TensorListArg(x, y, z)},
	})
	require.NoError(t, err)
	outs, err := symbolicLeaves(spec)
	require.NoError(t, err)

	fn, err := NewFunction(b, []any{x, y, z}, outs[0])
	require.NoError(t, err)

	out, err := fn.Call([]any{
		f32(t, tensor.Shape{2}, 1, 2),
		f32(t, tensor.Shape{2}, 10, 20),
		f32(t, tensor.Shape{2}, 100, 200),
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{111, 222}, out.(*tensor.RawTensor).AsFloat32())
}

func TestFunctionMultipleOutputs(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	outs, err := b.Apply(&splitOp{name: "split"}, x)
	require.NoError(t, err)

	fn, err := NewFunction(b, x, []any{outs[0], outs[1]})
	require.NoError(t, err)

	res, err := fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	require.NoError(t, err)
	pair := res.([]any)
	require.Len(t, pair, 2)
	assert.Equal(t, []float32{1, 2}, pair[0].(*tensor.RawTensor).AsFloat32())
	assert.Equal(t, []float32{1, 2}, pair[1].(*tensor.RawTensor).AsFloat32())
}

// failOp always fails at execution time.
type failOp struct {
	name string
}

func (o *failOp) Name() string { return o.name }

func (o *failOp) Call(_ []any, _ map[string]any) (any, error) {
	return nil, assert.AnError
}

func (o *failOp) ComputeOutputSpec(args []any, _ map[string]any) (any, error) {
	x := args[0].(*Symbolic)
	return NewSymbolic(x.Shape().Clone(), x.DType()), nil
}

func TestFunctionCallOperationError(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	ys, err := b.Apply(&failOp{name: "fail"}, x)
	require.NoError(t, err)
	fn, err := NewFunction(b, x, ys[0])
	require.NoError(t, err)

	_, err = fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "node fail.0 (execute)")
}

// arityOp declares one output but returns two when executed.
type arityOp struct {
	name string
}

func (o *arityOp) Name() string { return o.name }

func (o *arityOp) Call(args []any, _ map[string]any) (any, error) {
	return []any{args[0], args[0]}, nil
}

func (o *arityOp) ComputeOutputSpec(args []any, _ map[string]any) (any, error) {
	x := args[0].(*Symbolic)
	return NewSymbolic(x.Shape().Clone(), x.DType()), nil
}

func TestFunctionCallArityMismatch(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	ys, err := b.Apply(&arityOp{name: "bad"}, x)
	require.NoError(t, err)
	fn, err := NewFunction(b, x, ys[0])
	require.NoError(t, err)

	_, err = fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	var arityErr *ArityError
	require.ErrorAs(t, err, &arityErr)
	assert.Equal(t, "bad.0", arityErr.NodeKey)
	assert.Equal(t, 1, arityErr.Want)
	assert.Equal(t, 2, arityErr.Got)
}

func TestFunctionUnproducedOutput(t *testing.T) {
	b := NewBuilder()
	x := Placeholder("x", Shape{2}, tensor.Float32)
	orphan := Placeholder("orphan", Shape{2}, tensor.Float32)
	ys, err := b.Apply(&scaleOp{name: "double", factor: 2}, x)
	require.NoError(t, err)

	// Nothing in the graph computes orphan and it is not an input, so
	// construction succeeds but replay cannot resolve it.
	fn, err := NewFunction(b, x, []any{ys[0], orphan})
	require.NoError(t, err)

	_, err = fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	var unresolved *UnresolvedOutputError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []*Symbolic{orphan}, unresolved.Tensors)
	assert.Contains(t, err.Error(), "could not compute output")
}

func TestFunctionSkipsNodesMissingInputs(t *testing.T) {
	// A hand-built map with a node whose second input nothing provides:
	// the node is skipped rather than failing, and the missing output is
	// reported at the end of the walk.
	x := Placeholder("x", Shape{2}, tensor.Float32)
	orphan := Placeholder("orphan", Shape{2}, tensor.Float32)
	sum := &addOp{name: "sum"}
	out := NewSymbolic(Shape{2}, tensor.Float32)
	n := newNode(sum, 0, Arguments{
		Positional: []Argument{TensorArg(x), TensorArg(orphan)},
	}, []*Symbolic{out})

	fn := &Function{
		inputsStruct:  x,
		outputsStruct: out,
		inputs:        []*Symbolic{x},
		outputs:       []*Symbolic{out},
		gm: &graphMap{
			nodes:             []*Node{n},
			nodeKeys:          map[string]struct{}{"sum.0": {}},
			nodesByDepth:      map[int][]*Node{0: {n}},
			depths:            []int{0},
			operations:        []Operation{sum},
			operationsByDepth: map[int][]Operation{0: {sum}},
		},
	}

	_, err := fn.Call(f32(t, tensor.Shape{2}, 1, 2))
	var unresolved *UnresolvedOutputError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []*Symbolic{out}, unresolved.Tensors)
}

func TestFunctionCallConcurrent(t *testing.T) {
	fn, _ := buildChain(t)
	in := f32(t, tensor.Shape{2}, 1, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := fn.Call(in)
			if assert.NoError(t, err) {
				assert.Equal(t, []float32{6, 12}, out.(*tensor.RawTensor).AsFloat32())
			}
		}()
	}
	wg.Wait()
}
