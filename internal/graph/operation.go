package graph

import "sort"

// Mode selects which operation entry point a graph replay invokes.
type Mode int

const (
	// Execute invokes Operation.Call with concrete tensors.
	Execute Mode = iota
	// InferSpec invokes Operation.ComputeOutputSpec with symbolic tensors.
	InferSpec
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Execute:
		return "execute"
	case InferSpec:
		return "infer-spec"
	default:
		return "unknown"
	}
}

// Operation is one computation step that can be applied to symbolic tensors.
// Implementations hold their own attributes (weights, axes, constants) but
// no application state: the Builder owns the record of where an operation
// was applied.
//
// Both entry points receive the application's resolved arguments. Slots
// bound to tensors arrive as *tensor.RawTensor under Execute and as
// *Symbolic under InferSpec; constant slots arrive unchanged in both. The
// returned value may be a single output or a nested structure; its flattened
// arity must match across both entry points, since the replay engine zips it
// with the application's recorded outputs.
type Operation interface {
	Name() string
	Call(args []any, named map[string]any) (any, error)
	ComputeOutputSpec(args []any, named map[string]any) (any, error)
}

// Argument is one slot of an application's argument template: a constant
// carried through replay unchanged, a tensor reference filled in from the
// value map, or an ordered list of tensor references filled in elementwise.
type Argument struct {
	kind    argKind
	tensor  *Symbolic
	tensors []*Symbolic
	value   any
}

type argKind int

const (
	argConst argKind = iota
	argTensor
	argTensorList
)

// TensorArg binds a slot to a symbolic tensor.
func TensorArg(t *Symbolic) Argument {
	return Argument{kind: argTensor, tensor: t}
}

// TensorListArg binds a slot to an ordered list of symbolic tensors. The
// slot resolves to a []any holding the tensors' values.
func TensorListArg(ts ...*Symbolic) Argument {
	return Argument{kind: argTensorList, tensors: append([]*Symbolic(nil), ts...)}
}

// ConstArg binds a slot to a constant passed through replay unchanged.
func ConstArg(v any) Argument {
	return Argument{kind: argConst, value: v}
}

// Arguments is the argument-binding template of one operation application.
type Arguments struct {
	Positional []Argument
	Named      map[string]Argument
}

// tensors returns every tensor referenced by the template: positional slots
// in order, then named slots in sorted key order.
func (a Arguments) tensors() []*Symbolic {
	var out []*Symbolic
	collect := func(arg Argument) {
		switch arg.kind {
		case argTensor:
			out = append(out, arg.tensor)
		case argTensorList:
			out = append(out, arg.tensors...)
		}
	}
	for _, arg := range a.Positional {
		collect(arg)
	}
	for _, k := range sortedArgKeys(a.Named) {
		collect(a.Named[k])
	}
	return out
}

// resolve materializes the template through lookup. The final return is
// false when any referenced tensor has no value yet.
func (a Arguments) resolve(lookup func(*Symbolic) (any, bool)) ([]any, map[string]any, bool) {
	resolveOne := func(arg Argument) (any, bool) {
		switch arg.kind {
		case argTensor:
			return lookup(arg.tensor)
		case argTensorList:
			vals := make([]any, len(arg.tensors))
			for i, t := range arg.tensors {
				v, ok := lookup(t)
				if !ok {
					return nil, false
				}
				vals[i] = v
			}
			return vals, true
		default:
			return arg.value, true
		}
	}

	args := make([]any, len(a.Positional))
	for i, arg := range a.Positional {
		v, ok := resolveOne(arg)
		if !ok {
			return nil, nil, false
		}
		args[i] = v
	}

	var named map[string]any
	if len(a.Named) > 0 {
		named = make(map[string]any, len(a.Named))
		for k, arg := range a.Named {
			v, ok := resolveOne(arg)
			if !ok {
				return nil, nil, false
			}
			named[k] = v
		}
	}
	return args, named, true
}

func sortedArgKeys(m map[string]Argument) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
