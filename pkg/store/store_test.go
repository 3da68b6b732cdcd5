package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kmathys/orgcanvas/pkg/apperr"
	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/observability"
)

func testChart(name string) chart.Chart {
	return chart.Chart{
		Name: name,
		Nodes: []chart.Node{
			{ID: "a", X: 0, Y: 0, Root: true},
			{ID: "b", X: 0, Y: 120},
		},
		Edges: []chart.Edge{{From: "a", To: "b"}},
	}
}

// backends that can run without external services.
func localBackends(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestSaveLoadDelete(t *testing.T) {
	ctx := context.Background()

	for name, s := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			want := testChart("acme")
			if err := s.Save(ctx, "acme", want); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := s.Load(ctx, "acme")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load = %+v, want %+v", got, want)
			}

			if err := s.Delete(ctx, "acme"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Load(ctx, "acme"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load after delete = %v, want ErrNotFound", err)
			}

			// Deleting again is not an error.
			if err := s.Delete(ctx, "acme"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

func TestListSorted(t *testing.T) {
	ctx := context.Background()

	for name, s := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			for _, n := range []string{"zeta", "alpha", "mid"} {
				if err := s.Save(ctx, n, testChart(n)); err != nil {
					t.Fatalf("Save %s: %v", n, err)
				}
			}
			names, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"alpha", "mid", "zeta"}
			if !reflect.DeepEqual(names, want) {
				t.Errorf("List = %v, want %v", names, want)
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := testChart("v1")
	second := testChart("v2")
	if err := s.Save(ctx, "chart", first); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "chart", second); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "chart")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "v2" {
		t.Errorf("Name = %q, want the overwritten version", got.Name)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "Simple", input: "acme"},
		{name: "WithDash", input: "acme-2026"},
		{name: "Empty", input: "", wantErr: true},
		{name: "Slash", input: "a/b", wantErr: true},
		{name: "Backslash", input: `a\b`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !apperr.Is(err, apperr.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want INVALID_INPUT", apperr.GetCode(err))
			}
		})
	}
}

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	saves []string
	loads []string
}

func (h *recordingStoreHooks) OnSave(_ context.Context, backend, name string, _ error) {
	h.saves = append(h.saves, backend+"/"+name)
}

func (h *recordingStoreHooks) OnLoad(_ context.Context, backend, name string, _ error) {
	h.loads = append(h.loads, backend+"/"+name)
}

func TestInstrumentedReportsHooks(t *testing.T) {
	ctx := context.Background()
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	s := Instrumented(NewMemoryStore(), "memory")
	if err := s.Save(ctx, "acme", testChart("acme")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, "acme"); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(hooks.saves, []string{"memory/acme"}) {
		t.Errorf("saves = %v", hooks.saves)
	}
	if !reflect.DeepEqual(hooks.loads, []string{"memory/acme"}) {
		t.Errorf("loads = %v", hooks.loads)
	}
}
