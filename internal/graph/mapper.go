package graph

import (
	"sort"

	"k8s.io/klog/v2"
)

// graphMap is the validated, depth-ordered view of the subgraph between a
// set of input tensors and a set of output tensors. Depth is the number of
// operations between a node and the outputs: output-producing nodes sit at
// depth 0 and replay walks depths from highest to lowest.
type graphMap struct {
	nodes        []*Node
	nodeKeys     map[string]struct{}
	nodesByDepth map[int][]*Node
	depths       []int // node depths, sorted descending

	operations        []Operation
	operationsByDepth map[int][]Operation
}

// mapGraph validates the topology reachable from outputs and gathers its
// nodes and operations. It reports cycles, subgraphs that cannot be computed
// from the declared inputs, and duplicate operation or input names. Inputs
// that no output depends on are tolerated and registered at depth 0.
func mapGraph(resolve func(*Symbolic) (*Node, error), inputs, outputs []*Symbolic) (*graphMap, error) {
	m := &mapper{
		resolve:    resolve,
		inputs:     inputs,
		outputs:    outputs,
		inputNodes: make(map[*Symbolic]*Node),
		state:      make(map[*Node]visitState),
		opIndices:  make(map[Operation]int),
	}
	return m.run()
}

type visitState int

const (
	stateNew visitState = iota
	stateActive
	stateDone
)

type mapper struct {
	resolve func(*Symbolic) (*Node, error)
	inputs  []*Symbolic
	outputs []*Symbolic

	// inputNodes holds the synthetic node standing in for each declared
	// input that has no producer. Declared inputs that are produced by an
	// operation are traversed through their producer instead.
	inputNodes map[*Symbolic]*Node

	state       map[*Node]visitState
	finishOrder []*Node // nodes ordered from inputs towards outputs
	opIndices   map[Operation]int
	opOrder     []Operation
}

func (m *mapper) run() (*graphMap, error) {
	for _, t := range m.inputs {
		if _, ok := m.inputNodes[t]; ok {
			continue
		}
		p, err := m.resolve(t)
		if err != nil {
			return nil, err
		}
		if p == nil {
			m.inputNodes[t] = newInputNode(t)
		}
	}

	for _, t := range m.outputs {
		if err := m.visit(t); err != nil {
			return nil, err
		}
	}

	gm, err := m.assemble()
	if err != nil {
		return nil, err
	}
	if err := m.checkConnectivity(gm); err != nil {
		return nil, err
	}
	if err := m.checkNames(gm); err != nil {
		return nil, err
	}

	maxDepth := 0
	if len(gm.depths) > 0 {
		maxDepth = gm.depths[0]
	}
	klog.V(2).Infof("graph: mapped %d nodes, %d operations, max depth %d",
		len(gm.nodes), len(gm.operations), maxDepth)
	return gm, nil
}

// nodeFor returns the node that computes t: its producer when t was made by
// an operation, the synthetic input node when t is a declared input, and nil
// for any other root tensor.
func (m *mapper) nodeFor(t *Symbolic) (*Node, error) {
	p, err := m.resolve(t)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return m.inputNodes[t], nil
}

// visit runs a depth-first traversal from t, appending each node to
// finishOrder once all of its ancestors are finished. A node encountered
// again while still on the current path closes a cycle.
func (m *mapper) visit(t *Symbolic) error {
	root, err := m.nodeFor(t)
	if err != nil {
		return err
	}
	if root == nil {
		return nil
	}

	type frame struct {
		node     *Node
		via      *Symbolic
		expanded bool
	}
	stack := []frame{{node: root, via: t}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.expanded {
			stack = stack[:len(stack)-1]
			m.state[f.node] = stateDone
			m.finishOrder = append(m.finishOrder, f.node)
			continue
		}
		switch m.state[f.node] {
		case stateDone:
			stack = stack[:len(stack)-1]
			continue
		case stateActive:
			return &CycleError{Tensor: f.via, Operation: f.node.op}
		}

		if op := f.node.op; op != nil {
			if _, ok := m.opIndices[op]; !ok {
				m.opIndices[op] = len(m.opIndices)
				m.opOrder = append(m.opOrder, op)
			}
		}
		m.state[f.node] = stateActive
		f.expanded = true
		if f.node.isInput {
			continue
		}
		// Children are pushed in reverse so the input tensors are
		// traversed in declaration order.
		ins := f.node.inputs
		for i := len(ins) - 1; i >= 0; i-- {
			child, err := m.nodeFor(ins[i])
			if err != nil {
				return err
			}
			if child == nil {
				continue
			}
			stack = append(stack, frame{node: child, via: ins[i]})
		}
	}
	return nil
}

// parents returns the nodes computing n's input tensors.
func (m *mapper) parents(n *Node) []*Node {
	if n.isInput {
		return nil
	}
	var out []*Node
	for _, t := range n.inputs {
		// Resolution errors were already surfaced during traversal.
		p, err := m.nodeFor(t)
		if err != nil || p == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// assemble assigns depths and builds the ordered buckets. A node's depth is
// the maximum depth of the nodes consuming its outputs plus one; nodes of a
// shared operation are all pulled up to the operation's deepest application
// so replay never runs a later application of an operation before an
// earlier one has its inputs ready.
func (m *mapper) assemble() (*graphMap, error) {
	nodeDepths := make(map[*Node]int, len(m.finishOrder))
	opDepths := make(map[Operation]int, len(m.opOrder))

	for i := len(m.finishOrder) - 1; i >= 0; i-- {
		n := m.finishOrder[i]
		depth := nodeDepths[n]
		if n.op != nil {
			if d := opDepths[n.op]; d > depth {
				depth = d
			}
			opDepths[n.op] = depth
		}
		nodeDepths[n] = depth
		for _, p := range m.parents(n) {
			if depth+1 > nodeDepths[p] {
				nodeDepths[p] = depth + 1
			}
		}
	}

	// Inputs no output depends on stay in the map at depth 0; they may
	// still be fed at call time. A produced tensor declared as input drags
	// its unvisited producer in here, and connectivity checking below then
	// rejects the producer's own unreachable inputs.
	var extra []*Node
	for _, t := range m.inputs {
		if n, ok := m.inputNodes[t]; ok {
			if _, done := nodeDepths[n]; !done {
				nodeDepths[n] = 0
				extra = append(extra, n)
			}
			continue
		}
		p, err := m.resolve(t)
		if err != nil {
			return nil, err
		}
		if _, ok := opDepths[p.op]; !ok {
			opDepths[p.op] = 0
			m.opIndices[p.op] = -1
			m.opOrder = append(m.opOrder, p.op)
			nodeDepths[p] = 0
			extra = append(extra, p)
		}
	}

	gm := &graphMap{
		nodeKeys:          make(map[string]struct{}, len(nodeDepths)),
		nodesByDepth:      make(map[int][]*Node),
		operationsByDepth: make(map[int][]Operation),
	}

	gm.nodes = append(append([]*Node(nil), m.finishOrder...), extra...)
	for _, n := range gm.nodes {
		gm.nodeKeys[n.Key()] = struct{}{}
		gm.nodesByDepth[nodeDepths[n]] = append(gm.nodesByDepth[nodeDepths[n]], n)
	}
	for d := range gm.nodesByDepth {
		gm.depths = append(gm.depths, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(gm.depths)))

	// Order operations by depth, then by first-traversal order within a
	// depth. The stable sort keeps registration order for the unvisited
	// producers recorded above, which all share index -1.
	ops := append([]Operation(nil), m.opOrder...)
	sort.SliceStable(ops, func(i, j int) bool {
		di, dj := opDepths[ops[i]], opDepths[ops[j]]
		if di != dj {
			return di > dj
		}
		return m.opIndices[ops[i]] < m.opIndices[ops[j]]
	})
	gm.operations = ops
	for _, op := range ops {
		d := opDepths[op]
		gm.operationsByDepth[d] = append(gm.operationsByDepth[d], op)
	}
	return gm, nil
}

// checkConnectivity verifies that every tensor the mapped nodes consume is
// reachable from the declared inputs.
func (m *mapper) checkConnectivity(gm *graphMap) error {
	computable := make(map[*Symbolic]bool, len(m.inputs))
	for _, t := range m.inputs {
		computable[t] = true
	}
	var validated []string
	for _, d := range gm.depths {
		for _, n := range gm.nodesByDepth[d] {
			for _, x := range n.inputs {
				if !computable[x] {
					return &DisconnectedError{Operation: n.op, Tensor: x, Validated: validated}
				}
			}
			if len(n.inputs) > 0 {
				validated = append(validated, n.Key())
			}
			for _, x := range n.outputs {
				computable[x] = true
			}
		}
	}
	return nil
}

// checkNames rejects duplicate operation names and duplicate names among
// distinct declared inputs. The same input tensor listed twice is allowed.
func (m *mapper) checkNames(gm *graphMap) error {
	opCounts := make(map[string]int, len(gm.operations))
	for _, op := range gm.operations {
		opCounts[op.Name()]++
	}
	for _, op := range gm.operations {
		if c := opCounts[op.Name()]; c > 1 {
			return &DuplicateNameError{Name: op.Name(), Count: c, What: "operation"}
		}
	}

	seen := make(map[*Symbolic]bool, len(m.inputs))
	inCounts := make(map[string]int, len(m.inputs))
	var uniq []*Symbolic
	for _, t := range m.inputs {
		if seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
		inCounts[t.Name()]++
	}
	for _, t := range uniq {
		if c := inCounts[t.Name()]; c > 1 {
			return &DuplicateNameError{Name: t.Name(), Count: c, What: "input"}
		}
	}
	return nil
}
