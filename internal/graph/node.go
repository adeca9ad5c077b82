package graph

import "fmt"

// Node records one application of an operation: the argument template it was
// called with, the tensors that fed it, and the tensors it produced. Nodes
// are immutable once built.
type Node struct {
	op      Operation
	index   int
	args    Arguments
	inputs  []*Symbolic
	outputs []*Symbolic

	// isInput marks the synthetic node standing in for a declared graph
	// input. Input nodes have no operation and replay skips them.
	isInput bool
	tensor  *Symbolic
}

func newNode(op Operation, index int, args Arguments, outputs []*Symbolic) *Node {
	return &Node{
		op:      op,
		index:   index,
		args:    args,
		inputs:  args.tensors(),
		outputs: outputs,
	}
}

func newInputNode(t *Symbolic) *Node {
	return &Node{
		isInput: true,
		tensor:  t,
		outputs: []*Symbolic{t},
	}
}

// Operation returns the applied operation, or nil for an input node.
func (n *Node) Operation() Operation { return n.op }

// Index returns the application's position among its operation's
// applications, starting at zero.
func (n *Node) Index() int { return n.index }

// IsInput reports whether the node stands in for a declared graph input.
func (n *Node) IsInput() bool { return n.isInput }

// Inputs returns the tensors feeding the node. Callers must not mutate the
// returned slice.
func (n *Node) Inputs() []*Symbolic { return n.inputs }

// Outputs returns the tensors the node produced. Callers must not mutate
// the returned slice.
func (n *Node) Outputs() []*Symbolic { return n.outputs }

// Arguments returns the argument template recorded at application time.
func (n *Node) Arguments() Arguments { return n.args }

// Key returns a stable identifier: the input tensor's name for input nodes,
// otherwise "operation.index".
func (n *Node) Key() string {
	if n.isInput {
		return n.tensor.Name()
	}
	return fmt.Sprintf("%s.%d", n.op.Name(), n.index)
}

// computable reports whether every input tensor has a value.
func (n *Node) computable(values map[*Symbolic]any) bool {
	for _, t := range n.inputs {
		if _, ok := values[t]; !ok {
			return false
		}
	}
	return true
}

func (n *Node) String() string {
	if n.isInput {
		return fmt.Sprintf("input %s", n.tensor)
	}
	return fmt.Sprintf("node %s (%d in, %d out)", n.Key(), len(n.inputs), len(n.outputs))
}
