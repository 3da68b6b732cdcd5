package forest

import (
	"errors"
	"slices"
	"testing"
)

func buildForest(t *testing.T, nodes []Node, edges []Edge) *Forest {
	t.Helper()
	f := New()
	for _, n := range nodes {
		if err := f.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := f.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s→%s): %v", e.From, e.To, err)
		}
	}
	return f
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		setup   func(f *Forest)
		wantErr error
	}{
		{name: "Valid", node: Node{ID: "a"}},
		{name: "EmptyID", node: Node{}, wantErr: ErrInvalidNodeID},
		{
			name:    "Duplicate",
			node:    Node{ID: "a"},
			setup:   func(f *Forest) { f.AddNode(Node{ID: "a"}) },
			wantErr: ErrDuplicateNodeID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			if tt.setup != nil {
				tt.setup(f)
			}
			err := f.AddNode(tt.node)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddNodeInitializesMeta(t *testing.T) {
	f := New()
	if err := f.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	n, _ := f.Node("a")
	if n.Meta == nil {
		t.Error("Meta not initialized")
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		edges   []Edge
		add     Edge
		wantErr error
	}{
		{name: "Valid", add: Edge{From: "a", To: "b"}},
		{name: "UnknownSource", add: Edge{From: "x", To: "b"}, wantErr: ErrUnknownSourceNode},
		{name: "UnknownTarget", add: Edge{From: "a", To: "x"}, wantErr: ErrUnknownTargetNode},
		{name: "SelfLoop", add: Edge{From: "a", To: "a"}, wantErr: ErrSelfLoop},
		{
			name:    "SecondParent",
			edges:   []Edge{{From: "a", To: "c"}},
			add:     Edge{From: "b", To: "c"},
			wantErr: ErrMultipleParents,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := buildForest(t, []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}, tt.edges)
			err := f.AddEdge(tt.add)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemoveIncomingEdge(t *testing.T) {
	f := buildForest(t,
		[]Node{{ID: "a", Root: true}, {ID: "b"}, {ID: "c"}},
		[]Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
	)

	if !f.RemoveIncomingEdge("b") {
		t.Fatal("RemoveIncomingEdge(b) = false, want true")
	}
	if _, ok := f.Parent("b"); ok {
		t.Error("b still has a parent after detach")
	}
	// Detachment keeps the node's own subtree intact.
	if p, _ := f.Parent("c"); p != "b" {
		t.Errorf("c parent = %q, want b", p)
	}
	if f.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1", f.EdgeCount())
	}

	if f.RemoveIncomingEdge("b") {
		t.Error("second detach reported an edge removal")
	}
}

func TestClassification(t *testing.T) {
	f := buildForest(t,
		[]Node{{ID: "a", Root: true}, {ID: "b"}, {ID: "c"}, {ID: "free"}, {ID: "anchor", Root: true}},
		[]Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
	)

	if got := f.Roots(); !slices.Equal(got, []string{"a", "anchor"}) {
		t.Errorf("Roots = %v, want [a anchor]", got)
	}
	if got := f.FreeIDs(); !slices.Equal(got, []string{"free"}) {
		t.Errorf("FreeIDs = %v, want [free]", got)
	}
	if !f.InHierarchy("c") {
		t.Error("c should be in hierarchy (has incoming edge)")
	}
	if f.InHierarchy("free") {
		t.Error("free should not be in hierarchy")
	}
	if f.IsFree("anchor") {
		t.Error("a declared root is never free")
	}
}

func TestImpliedRootClassification(t *testing.T) {
	// A parentless non-root node with children, the state left behind when
	// a subtree is detached from its tree without promoting the top node.
	f := buildForest(t,
		[]Node{{ID: "top"}, {ID: "kid"}, {ID: "loner"}},
		[]Edge{{From: "top", To: "kid"}},
	)

	if got := f.Roots(); !slices.Equal(got, []string{"top"}) {
		t.Errorf("Roots = %v, want [top]", got)
	}
	if got := f.FreeIDs(); !slices.Equal(got, []string{"loner"}) {
		t.Errorf("FreeIDs = %v, want [loner]", got)
	}
	if !f.InHierarchy("top") {
		t.Error("an implied root is in the hierarchy")
	}
	// Grabbing an implied root still starts a free drag of its subtree.
	if !f.IsFree("top") {
		t.Error("IsFree(top) = false, want true")
	}
}

func TestDescendants(t *testing.T) {
	f := buildForest(t,
		[]Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}},
		[]Edge{{From: "a", To: "b"}, {From: "a", To: "c"}, {From: "b", To: "d"}, {From: "b", To: "e"}},
	)

	got := f.Descendants("a")
	want := []string{"b", "c", "d", "e"}
	if !slices.Equal(got, want) {
		t.Errorf("Descendants(a) = %v, want %v", got, want)
	}
	if got := f.Descendants("d"); got != nil {
		t.Errorf("Descendants(d) = %v, want nil", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Forest
		wantErr error
	}{
		{
			name:  "Empty",
			build: func() *Forest { return New() },
		},
		{
			name: "SingleTree",
			build: func() *Forest {
				f := New()
				f.AddNode(Node{ID: "a"})
				f.AddNode(Node{ID: "b"})
				f.AddNode(Node{ID: "c"})
				f.AddEdge(Edge{From: "a", To: "b"})
				f.AddEdge(Edge{From: "a", To: "c"})
				return f
			},
		},
		{
			name: "MultipleDisconnectedTrees",
			build: func() *Forest {
				f := New()
				for _, id := range []string{"a", "b", "x", "y", "lone"} {
					f.AddNode(Node{ID: id})
				}
				f.AddEdge(Edge{From: "a", To: "b"})
				f.AddEdge(Edge{From: "x", To: "y"})
				return f
			},
		},
		{
			name: "TwoNodeCycle",
			build: func() *Forest {
				f := New()
				f.AddNode(Node{ID: "a"})
				f.AddNode(Node{ID: "b"})
				f.AddEdge(Edge{From: "a", To: "b"})
				f.AddEdge(Edge{From: "b", To: "a"})
				return f
			},
			wantErr: ErrCycle,
		},
		{
			name: "LongCycle",
			build: func() *Forest {
				f := New()
				for _, id := range []string{"a", "b", "c", "d"} {
					f.AddNode(Node{ID: id})
				}
				f.AddEdge(Edge{From: "a", To: "b"})
				f.AddEdge(Edge{From: "b", To: "c"})
				f.AddEdge(Edge{From: "c", To: "d"})
				f.AddEdge(Edge{From: "d", To: "a"})
				return f
			},
			wantErr: ErrCycle,
		},
		{
			name: "SelfLoopInjected",
			build: func() *Forest {
				// AddEdge rejects self-loops, so corrupt the edge set
				// directly the way a malformed external payload could.
				f := New()
				f.AddNode(Node{ID: "a"})
				f.edges = append(f.edges, Edge{From: "a", To: "a"})
				f.children["a"] = append(f.children["a"], "a")
				return f
			},
			wantErr: ErrCycle,
		},
		{
			name: "DanglingEndpoint",
			build: func() *Forest {
				f := New()
				f.AddNode(Node{ID: "a"})
				f.edges = append(f.edges, Edge{From: "a", To: "ghost"})
				return f
			},
			wantErr: ErrInvalidEdgeEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCyclePath(t *testing.T) {
	f := New()
	for _, id := range []string{"a", "b", "c"} {
		f.AddNode(Node{ID: id})
	}
	f.AddEdge(Edge{From: "a", To: "b"})
	f.AddEdge(Edge{From: "b", To: "c"})
	f.AddEdge(Edge{From: "c", To: "a"})

	err := f.Validate()
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("Validate = %v, want *CycleError", err)
	}
	if len(cerr.Path) != 4 {
		t.Fatalf("cycle path = %v, want 4 entries (closed walk)", cerr.Path)
	}
	if cerr.Path[0] != cerr.Path[len(cerr.Path)-1] {
		t.Errorf("cycle path %v does not close", cerr.Path)
	}
}

func TestRemove(t *testing.T) {
	f := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		f.AddNode(Node{ID: id})
	}
	f.AddEdge(Edge{From: "a", To: "b"})
	f.AddEdge(Edge{From: "b", To: "c"})
	f.AddEdge(Edge{From: "b", To: "d"})

	f.Remove("b")

	if _, ok := f.Node("b"); ok {
		t.Fatal("b still present after Remove")
	}
	if f.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", f.EdgeCount())
	}
	for _, id := range []string{"c", "d"} {
		if !f.IsFree(id) {
			t.Errorf("%s should be free after its parent was removed", id)
		}
	}
	if got := f.Children("a"); len(got) != 0 {
		t.Errorf("a children = %v, want none", got)
	}

	// Removing an unknown ID is a no-op.
	f.Remove("ghost")
	if f.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", f.NodeCount())
	}
}
