package forest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Forest.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Forest.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Forest.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Forest.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [Forest.AddEdge] when From equals To.
	// A node can never supervise itself.
	ErrSelfLoop = errors.New("edge must not be a self-loop")

	// ErrMultipleParents is returned by [Forest.AddEdge] when the target node
	// already has an incoming edge. Every node has at most one supervisor.
	ErrMultipleParents = errors.New("node already has a parent")

	// ErrInvalidEdgeEndpoint is returned by [Forest.Validate] when an edge
	// references a node that doesn't exist. This indicates corrupt input.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrCycle is the sentinel wrapped by [CycleError]. Use
	// errors.Is(err, ErrCycle) to classify validation failures.
	ErrCycle = errors.New("hierarchy contains a cycle")
)

// CycleError reports a cycle found during [Forest.Validate]. Path holds the
// node IDs along the cycle, starting and ending at the same node.
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("hierarchy contains a cycle: %s", strings.Join(e.Path, " → "))
}

// Unwrap makes errors.Is(err, ErrCycle) succeed.
func (e *CycleError) Unwrap() error { return ErrCycle }

// Node represents a person or position in an organization chart.
//
// The zero value is not usable - ID must be set before adding to a Forest.
// Position data is deliberately absent: coordinates belong to the rendering
// collaborator, and the engine reads them through narrow interfaces.
type Node struct {
	ID    string         // Unique identifier, stable for the node's lifetime
	Label string         // Display label (defaults to ID when empty)
	Meta  map[string]any // Free-form metadata, e.g. role (never nil after AddNode)

	// Root marks a node explicitly anchored in the root band. A node can
	// transiently have no parent without being a declared root, e.g. while a
	// detached subtree is mid-drag.
	Root bool
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed supervision link: From supervises To.
type Edge struct {
	From string // Parent node ID
	To   string // Child node ID
}

// Forest is a set of nodes and parent→child edges forming a multi-root
// hierarchy. Each node has at most one incoming edge; [Forest.AddEdge]
// enforces this structurally, so every mutation sequence built from
// AddNode/AddEdge/RemoveEdge preserves the forest property except for cycles
// in externally supplied edge sets, which [Forest.Validate] rejects.
//
// The zero value is not usable - use New. Forest is not safe for concurrent
// use without external synchronization; the engine drives it from a single
// event loop.
type Forest struct {
	nodes    map[string]*Node
	edges    []Edge
	parent   map[string]string   // child ID -> parent ID
	children map[string][]string // parent ID -> child IDs in attach order
}

// New creates an empty forest.
func New() *Forest {
	return &Forest{
		nodes:    make(map[string]*Node),
		parent:   make(map[string]string),
		children: make(map[string][]string),
	}
}

// AddNode adds a node to the forest.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID if
// a node with the same ID already exists. The node's Meta field is
// initialized to an empty map if nil.
func (f *Forest) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := f.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = map[string]any{}
	}
	node := &n
	f.nodes[node.ID] = node
	return nil
}

// AddEdge adds a supervision edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode for missing endpoints,
// ErrSelfLoop when From == To, and ErrMultipleParents when the target already
// has a parent. Cycle safety for engine-driven mutations follows from the
// single-parent constraint plus the drag engine detaching before reattaching.
func (f *Forest) AddEdge(e Edge) error {
	if _, ok := f.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := f.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	if _, ok := f.parent[e.To]; ok {
		return ErrMultipleParents
	}
	f.edges = append(f.edges, e)
	f.parent[e.To] = e.From
	f.children[e.From] = append(f.children[e.From], e.To)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist.
func (f *Forest) RemoveEdge(from, to string) {
	f.edges = slices.DeleteFunc(f.edges, func(e Edge) bool { return e.From == from && e.To == to })
	if f.parent[to] == from {
		delete(f.parent, to)
	}
	f.children[from] = slices.DeleteFunc(f.children[from], func(s string) bool { return s == to })
}

// Remove deletes a node and every edge touching it. The node's children
// become free nodes. Removing an unknown ID is a no-op.
func (f *Forest) Remove(id string) {
	if _, ok := f.nodes[id]; !ok {
		return
	}
	f.RemoveIncomingEdge(id)
	for _, child := range slices.Clone(f.children[id]) {
		f.RemoveEdge(id, child)
	}
	delete(f.children, id)
	delete(f.nodes, id)
}

// RemoveIncomingEdge removes the single incoming edge of id, if any, and
// reports whether one was removed. This is the detach primitive: the node's
// own outgoing edges are untouched, so its subtree stays internally connected.
func (f *Forest) RemoveIncomingEdge(id string) bool {
	p, ok := f.parent[id]
	if !ok {
		return false
	}
	f.RemoveEdge(p, id)
	return true
}

// SetRoot sets or clears the explicit root-band anchor flag on a node.
// Unknown IDs are ignored.
func (f *Forest) SetRoot(id string, root bool) {
	if n, ok := f.nodes[id]; ok {
		n.Root = root
	}
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The pointer refers to the actual node, so field changes (except ID)
// affect the forest.
func (f *Forest) Node(id string) (*Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// Nodes returns all nodes in the forest. The order is not guaranteed.
func (f *Forest) Nodes() []*Node {
	nodes := make([]*Node, 0, len(f.nodes))
	for _, n := range f.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// NodeIDs returns all node IDs sorted ascending, for deterministic iteration.
func (f *Forest) NodeIDs() []string {
	ids := make([]string, 0, len(f.nodes))
	for id := range f.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns a copy of all edges in insertion order.
func (f *Forest) Edges() []Edge { return slices.Clone(f.edges) }

// NodeCount returns the number of nodes.
func (f *Forest) NodeCount() int { return len(f.nodes) }

// EdgeCount returns the number of edges.
func (f *Forest) EdgeCount() int { return len(f.edges) }

// Parent returns the parent ID of a node and true, or "" and false when the
// node has no incoming edge.
func (f *Forest) Parent(id string) (string, bool) {
	p, ok := f.parent[id]
	return p, ok
}

// Children returns the IDs of a node's direct reports in attach order.
// The returned slice is a read-only view; do not modify it.
func (f *Forest) Children(id string) []string { return f.children[id] }

// HasEdge reports whether the node participates in any supervision edge.
func (f *Forest) HasEdge(id string) bool {
	if _, ok := f.parent[id]; ok {
		return true
	}
	return len(f.children[id]) > 0
}

// IsFree reports whether the node starts a drag in the free state: no
// incoming edge and not a declared root. A parentless node with children is
// an implied root, so it still answers true here (grabbing it moves the whole
// subtree out) while Roots and the layout treat it as connected.
func (f *Forest) IsFree(id string) bool {
	n, ok := f.nodes[id]
	if !ok {
		return false
	}
	_, attached := f.parent[id]
	return !attached && !n.Root
}

// InHierarchy reports whether the node is a declared root or participates in
// any edge. Only in-hierarchy nodes are drop-target candidates.
func (f *Forest) InHierarchy(id string) bool {
	n, ok := f.nodes[id]
	if !ok {
		return false
	}
	return n.Root || f.HasEdge(id)
}

// Roots returns the IDs of all roots, sorted ascending: nodes with outgoing
// edges but no incoming edge, union with nodes explicitly flagged Root.
func (f *Forest) Roots() []string {
	var roots []string
	for id, n := range f.nodes {
		if _, attached := f.parent[id]; attached {
			continue
		}
		if n.Root || len(f.children[id]) > 0 {
			roots = append(roots, id)
		}
	}
	slices.Sort(roots)
	return roots
}

// FreeIDs returns the IDs of all unconnected nodes, sorted ascending: no
// edge in either direction and no root marker. This is the exact complement
// of the connected partition the layout pins to the root band, so an implied
// root never lands in the free grid.
func (f *Forest) FreeIDs() []string {
	var free []string
	for id := range f.nodes {
		if !f.InHierarchy(id) {
			free = append(free, id)
		}
	}
	slices.Sort(free)
	return free
}

// Descendants returns every node reachable from id through outgoing edges,
// in breadth-first order, excluding id itself. Returns nil for unknown IDs
// or leaf nodes.
func (f *Forest) Descendants(id string) []string {
	var out []string
	queue := slices.Clone(f.children[id])
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, f.children[cur]...)
	}
	return out
}

// Validate checks that the edge set forms an acyclic forest and returns nil
// if valid. It verifies three constraints:
//
//  1. All edges connect existing nodes
//  2. Each node has at most one incoming edge
//  3. No directed cycles exist, including self-loops
//
// Returns ErrInvalidEdgeEndpoint, ErrSelfLoop, ErrMultipleParents, or a
// *CycleError (matching ErrCycle) naming the full cycle path.
//
// This runs once per externally supplied edge set - at load time or when the
// host pushes edges. Engine mutations never need re-validation because they
// add or remove one edge at a time under the single-parent constraint.
//
// Cycle detection is a three-color depth-first traversal restarted from every
// unvisited node, so disconnected trees are all covered.
func (f *Forest) Validate() error {
	seen := make(map[string]bool, len(f.edges))
	for _, e := range f.edges {
		_, okS := f.nodes[e.From]
		_, okD := f.nodes[e.To]
		if !okS || !okD {
			return fmt.Errorf("%w: %s→%s", ErrInvalidEdgeEndpoint, e.From, e.To)
		}
		if e.From == e.To {
			return &CycleError{Path: []string{e.From, e.From}}
		}
		if seen[e.To] {
			return fmt.Errorf("%w: %s", ErrMultipleParents, e.To)
		}
		seen[e.To] = true
	}
	return f.detectCycles()
}

func (f *Forest) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(f.nodes))
	var cyclePath []string

	var dfs func(id string, stack []string) bool
	dfs = func(id string, stack []string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range f.children[id] {
			switch color[child] {
			case white:
				if dfs(child, stack) {
					return true
				}
			case gray:
				// Back edge: the cycle runs from child's position on the
				// stack through id and back to child.
				start := slices.Index(stack, child)
				cyclePath = append(slices.Clone(stack[start:]), child)
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range f.NodeIDs() {
		if color[id] == white {
			if dfs(id, nil) {
				return &CycleError{Path: cyclePath}
			}
		}
	}
	return nil
}
