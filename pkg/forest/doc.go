// Package forest provides the hierarchy model for org-chart canvases: a set
// of nodes and parent→child edges forming an acyclic multi-root forest.
//
// # Overview
//
// An organization chart is a forest, not a general graph: every node has at
// most one supervisor, trees are disjoint, and unconnected "free" nodes float
// below the hierarchy until they are dropped onto it. This package holds that
// structure and nothing else - positions belong to the rendering collaborator
// and flow through the narrow [PositionSource] interface.
//
// # Basic Usage
//
// Create a forest with [New], add nodes with [Forest.AddNode], and edges with
// [Forest.AddEdge]:
//
//	f := forest.New()
//	f.AddNode(forest.Node{ID: "ceo", Root: true})
//	f.AddNode(forest.Node{ID: "cto"})
//	f.AddEdge(forest.Edge{From: "ceo", To: "cto"})
//
// Query structure with [Forest.Parent], [Forest.Children], [Forest.Roots],
// and [Forest.FreeIDs]. Use [Forest.Validate] on externally supplied edge
// sets; engine-driven mutations are structurally forest-safe and never need
// re-validation.
//
// # Subtree Snapshots
//
// Dragging moves a node and all of its descendants as one rigid body.
// [CaptureSubtree] records descendant offsets relative to the dragged node at
// gesture start; [Snapshot.MoveTo] replays them at any translation. Computing
// every move from the captured offsets rather than mutating incrementally
// removes accumulation-of-drift bugs and keeps the math testable without a
// live renderer.
package forest
