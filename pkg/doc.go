// Package pkg provides the core libraries for orgcanvas, a drag-and-drop
// engine for editing organization charts on an infinite canvas.
//
// # Overview
//
// An org chart is a strict forest: every person has at most one supervisor,
// several independent hierarchies can coexist, and unplaced people float
// free on the canvas until someone drags them into a reporting line. The pkg
// directory is organized into four main areas:
//
//  1. Domain model - forest structure, validation, rigid subtree transforms
//  2. Interaction - drag gesture state machine and camera control
//  3. Presentation - layout normalization and Graphviz rendering
//  4. Infrastructure - serialization, persistence, caching, configuration
//
// # Architecture
//
// The typical event flow through the engine:
//
//	Host pointer events (screen coordinates)
//	         ↓
//	    [editor] package (facade, coordinate conversion)
//	         ↓
//	    [drag] package (rubber band, snap-out, drop targets)
//	         ↓
//	    [forest] package (hierarchy mutations under validation)
//	         ↓
//	    [layout] + [canvas] packages (normalized positions)
//	         ↓
//	    host notification (exactly one per mutating gesture)
//
// # Main Packages
//
// ## Domain Model
//
// [forest] - The hierarchy itself: nodes, supervision edges, the validator
// (single parent, no cycles), and rigid subtree snapshots that let a whole
// branch translate as one body during a drag.
//
// [geom] - Points, rectangles, and the small amount of vector arithmetic the
// engine needs.
//
// ## Interaction
//
// [drag] - The gesture state machine. Rubber-band resistance while a node is
// still attached, snap-out detachment past a distance threshold, drop-target
// tracking, the root promotion band, and snap-back for aborted gestures.
//
// [viewport] - Camera control: screen-space panning, anchor-pinned zooming
// with scale clamps, and fit-to-content framing.
//
// ## Presentation
//
// [layout] - Deterministic position normalization: every root on one
// horizontal band, per-tree vertical alignment, and a packed grid for free
// nodes.
//
// [canvas] - The position and edge mirror the engine draws through, plus
// screen/canvas coordinate conversion.
//
// [render] - Graphviz DOT conversion and SVG/PNG rasterization through the
// embedded Graphviz engine, fronted by the content-addressed render cache.
//
// ## Infrastructure
//
// [chart] - The serializable chart document (JSON on disk, BSON in MongoDB)
// and conversion to and from the live forest.
//
// [store] - Named chart persistence: file, memory, Redis, and MongoDB
// backends behind one interface.
//
// [cache] - Content-addressed byte cache for rendered artifacts.
//
// [config] - TOML tunables with per-package defaults, shared by the CLI,
// the demo TUI, and the HTTP shell.
//
// [editor] - The facade hosts embed: it owns the forest, the drag engine,
// the camera, and the change notification contract.
package pkg
