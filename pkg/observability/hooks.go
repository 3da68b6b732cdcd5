// Package observability provides hooks for instrumenting the interaction
// engine without adding hard dependencies on specific backends.
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This keeps the core packages free of logging and metrics frameworks while
// letting the application shell observe drag gestures, layout passes, and
// store operations. Register hooks once at startup:
//
//	observability.SetDragHooks(&myDragHooks{})
//	observability.SetLayoutHooks(&myLayoutHooks{})
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Drag Hooks
// =============================================================================

// DragHooks receives events from the drag interaction engine. Gesture events
// carry no context because they run on the single-threaded UI event loop.
type DragHooks interface {
	// OnSessionStart records a drag gesture beginning on a node.
	OnSessionStart(id string, attached bool)

	// OnDetach records a node snapping out of its hierarchy.
	OnDetach(id, parent string)

	// OnAttach records a node being dropped onto a new parent.
	OnAttach(parent, child string)

	// OnRootCreated records a node dropped into the root band.
	OnRootCreated(id string)

	// OnSessionEnd records the gesture finishing. changed reports whether
	// the gesture mutated the hierarchy.
	OnSessionEnd(id string, changed bool)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout passes.
type LayoutHooks interface {
	OnLayoutStart(nodeCount int)
	OnLayoutComplete(nodeCount int, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from chart store operations.
type StoreHooks interface {
	OnSave(ctx context.Context, backend, name string, err error)
	OnLoad(ctx context.Context, backend, name string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDragHooks is a no-op implementation of DragHooks.
type NoopDragHooks struct{}

func (NoopDragHooks) OnSessionStart(string, bool) {}
func (NoopDragHooks) OnDetach(string, string)     {}
func (NoopDragHooks) OnAttach(string, string)     {}
func (NoopDragHooks) OnRootCreated(string)        {}
func (NoopDragHooks) OnSessionEnd(string, bool)   {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(int)                   {}
func (NoopLayoutHooks) OnLayoutComplete(int, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnSave(context.Context, string, string, error) {}
func (NoopStoreHooks) OnLoad(context.Context, string, string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	dragHooks   DragHooks   = NoopDragHooks{}
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetDragHooks registers custom drag hooks.
// Call once at application startup before any gestures are processed.
func SetDragHooks(h DragHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		dragHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Drag returns the registered drag hooks.
func Drag() DragHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return dragHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	dragHooks = NoopDragHooks{}
	layoutHooks = NoopLayoutHooks{}
	storeHooks = NoopStoreHooks{}
}
