// Package chart is the canonical serialization format for org charts.
// Used for API responses, storage, and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// import, edit, export, re-import produces identical results. Positions
// travel with the chart so a host can restore a canvas exactly as the
// user left it.
package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"

	"github.com/kmathys/orgcanvas/pkg/apperr"
	"github.com/kmathys/orgcanvas/pkg/forest"
	"github.com/kmathys/orgcanvas/pkg/geom"
)

// Chart is the serializable document: every node with its canvas position,
// plus reporting edges. Nodes are sorted by ID for deterministic output.
type Chart struct {
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is the unified node type for all serialization contexts.
type Node struct {
	ID    string         `json:"id" bson:"id"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	X     float64        `json:"x" bson:"x"`
	Y     float64        `json:"y" bson:"y"`
	Root  bool           `json:"root,omitempty" bson:"root,omitempty"` // Declared top-of-hierarchy flag
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge represents a directed reporting edge, manager to report.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// FromForest converts a forest and its positions to the serialization
// format. Nodes are sorted by ID and edges by (from, to) for deterministic
// output.
func FromForest(f *forest.Forest, positions forest.PositionSource) Chart {
	ids := f.NodeIDs()
	out := Chart{
		Nodes: make([]Node, len(ids)),
		Edges: make([]Edge, 0, len(f.Edges())),
	}

	for i, id := range ids {
		n, _ := f.Node(id)
		pos := positions.Position(id)
		out.Nodes[i] = Node{
			ID:    n.ID,
			Label: n.Label,
			X:     pos.X,
			Y:     pos.Y,
			Root:  n.Root,
			Meta:  copyMeta(n.Meta),
		}
	}

	for _, e := range f.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		if a.From != b.From {
			if a.From < b.From {
				return -1
			}
			return 1
		}
		if a.To < b.To {
			return -1
		}
		if a.To > b.To {
			return 1
		}
		return 0
	})

	return out
}

// ToForest converts a chart to a forest plus a position map. Nodes without
// an ID are assigned a fresh UUID. The rebuilt structure is validated, so a
// chart that encodes a cycle or a multi-parent node is rejected.
func ToForest(c Chart) (*forest.Forest, map[string]geom.Point, error) {
	f := forest.New()
	positions := make(map[string]geom.Point, len(c.Nodes))

	for _, nc := range c.Nodes {
		id := nc.ID
		if id == "" {
			id = uuid.NewString()
		}
		n := forest.Node{
			ID:    id,
			Label: nc.Label,
			Meta:  copyMeta(nc.Meta),
			Root:  nc.Root,
		}
		if err := f.AddNode(n); err != nil {
			return nil, nil, apperr.Wrap(apperr.ErrCodeInvalidChart, err, "add node %s", id)
		}
		positions[id] = geom.Point{X: nc.X, Y: nc.Y}
	}

	for _, ec := range c.Edges {
		if err := f.AddEdge(forest.Edge{From: ec.From, To: ec.To}); err != nil {
			return nil, nil, apperr.Wrap(apperr.ErrCodeInvalidEdge, err, "add edge %s->%s", ec.From, ec.To)
		}
	}

	if err := f.Validate(); err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrCodeInvalidChart, err, "chart structure")
	}

	return f, positions, nil
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
// Returns nil if the result would be empty.
func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// Read decodes a JSON chart from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "a", "x": 0, "y": 0, "root": true}, {"id": "b", "x": 0, "y": 120}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// Read does not validate hierarchy structure; use [ToForest] for that.
// Read does not close r.
func Read(r io.Reader) (Chart, error) {
	var c Chart
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Chart{}, fmt.Errorf("decode: %w", err)
	}
	return c, nil
}

// Write encodes a chart as indented JSON and writes it to w.
// The output can be re-imported with [Read] for round-trip processing.
func Write(c Chart, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Import reads a JSON chart file at path.
//
// Import opens the file, decodes it using [Read], and closes the file.
// Errors wrap the underlying cause with the file path for context.
func Import(path string) (Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return Chart{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Export writes a chart to a JSON file at path.
// This is a convenience wrapper around [Write] for file-based output.
func Export(c Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(c, f)
}
