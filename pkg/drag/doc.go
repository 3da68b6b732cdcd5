// Package drag implements the interaction state machine between raw
// pointer-drag events and the hierarchy's edge set.
//
// # Overview
//
// A gesture starts when the host forwards a drag-start event for a node.
// The engine classifies the node:
//
//   - Free (no parent, not a declared root): the node and its subtree
//     translate rigidly under the pointer, and drop targets are evaluated on
//     every move.
//   - Attached (has a parent, or is a declared root): vertical movement is
//     damped by the rubber-band factor until the pointer's vertical
//     displacement exceeds the snap-out threshold, at which point the node
//     detaches - its single incoming edge is removed, its root flag cleared,
//     and it behaves as free for the remainder of the gesture. The
//     transition is irreversible within the gesture.
//
// On drag-end the engine commits at most one outcome: snap-back for an
// attached node that never crossed the threshold (vertical restored,
// horizontal kept), attach-as-child when a drop target is highlighted, or
// create-root when the gesture ended with the root band armed.
//
// # Event Discipline
//
// Exactly one session can be active. Events referencing any other node -
// stale events, a second finger, a node that was never added - are silently
// ignored; pointer races must never corrupt the hierarchy. Every handler
// call is synchronous and produces one batch of position and edge commands
// for the rendering collaborator before the next event is processed.
//
// The hierarchy-changed callback fires after a gesture that mutated the
// structure, exactly once per such gesture. A plain snap-back is not a
// structural change and fires nothing.
package drag
