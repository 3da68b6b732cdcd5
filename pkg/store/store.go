// Package store persists charts under user-chosen names.
//
// This package defines a backend-neutral Store interface with
// implementations for different deployments:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI applications
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage for durable server deployments
//
// All backends speak the chart serialization format, so a chart saved by
// one backend can be loaded from another.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/kmathys/orgcanvas/pkg/apperr"
	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/observability"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a named chart does not exist.
	ErrNotFound = errors.New("chart not found")
)

// Store persists named charts.
type Store interface {
	// Save stores a chart under the given name, replacing any previous
	// version.
	Save(ctx context.Context, name string, c chart.Chart) error

	// Load retrieves a chart by name. Returns ErrNotFound (possibly
	// wrapped) when no chart with that name exists.
	Load(ctx context.Context, name string) (chart.Chart, error)

	// List returns the stored chart names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a named chart. Deleting a missing chart is not an
	// error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// ValidateName rejects names that would be unsafe as file names or
// backend keys.
func ValidateName(name string) error {
	if name == "" {
		return apperr.New(apperr.ErrCodeInvalidInput, "chart name must not be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return apperr.New(apperr.ErrCodeInvalidInput, "chart name %q must not contain path separators", name)
	}
	return nil
}

// Instrumented wraps a store so every save and load reports to the
// registered observability hooks. The backend label tells dashboards which
// implementation served the call.
func Instrumented(s Store, backend string) Store {
	return &instrumented{next: s, backend: backend}
}

type instrumented struct {
	next    Store
	backend string
}

func (s *instrumented) Save(ctx context.Context, name string, c chart.Chart) error {
	err := s.next.Save(ctx, name, c)
	observability.Store().OnSave(ctx, s.backend, name, err)
	return err
}

func (s *instrumented) Load(ctx context.Context, name string) (chart.Chart, error) {
	c, err := s.next.Load(ctx, name)
	observability.Store().OnLoad(ctx, s.backend, name, err)
	return c, err
}

func (s *instrumented) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	return s.next.Delete(ctx, name)
}

func (s *instrumented) Close() error { return s.next.Close() }

var _ Store = (*instrumented)(nil)
