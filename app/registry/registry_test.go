package registry

import (
	"testing"

	"github.com/osinthq/intake/app/normalize"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := New()
	reg.Register(Plugin{
		ID:        "test-plugin",
		Normalize: func(any) []normalize.Item { return nil },
	})

	if _, ok := reg.Get("test-plugin"); !ok {
		t.Errorf("Expected plugin to be retrievable")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Errorf("Expected unknown id to miss")
	}
}

func TestRegistry_IDsSorted(t *testing.T) {
	reg := New()
	for _, id := range []string{"zebra", "alpha", "mango"} {
		reg.Register(Plugin{ID: id, Normalize: func(any) []normalize.Item { return nil }})
	}

	ids := reg.IDs()
	expected := []string{"alpha", "mango", "zebra"}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("Expected %q at position %d, got %q", id, i, ids[i])
		}
	}
}

func TestRegistry_Run_UnknownPlugin(t *testing.T) {
	reg := New()
	if _, _, ok := reg.Run("nope", nil); ok {
		t.Errorf("Expected ok=false for unknown plugin")
	}
}

func TestRegistry_Run_ValidationIsAdvisory(t *testing.T) {
	reg := New()
	reg.Register(Plugin{
		ID:       "warned",
		Validate: func(any) []string { return []string{"payload looks off"} },
		Normalize: func(any) []normalize.Item {
			return []normalize.Item{{ID: "1", Title: "still processed"}}
		},
	})

	items, warnings, ok := reg.Run("warned", map[string]any{})
	if !ok {
		t.Fatalf("Expected plugin to run")
	}
	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(warnings))
	}
	// Warnings never block normalization.
	if len(items) != 1 {
		t.Errorf("Expected normalization to proceed despite warnings, got %d items", len(items))
	}
}

func TestRegistry_Run_NilNormalizeResult(t *testing.T) {
	reg := New()
	reg.Register(Plugin{
		ID:        "empty",
		Normalize: func(any) []normalize.Item { return nil },
	})

	items, _, ok := reg.Run("empty", nil)
	if !ok {
		t.Fatalf("Expected plugin to run")
	}
	if items == nil {
		t.Errorf("Expected non-nil item slice")
	}
}

func TestRegistry_Run_StageOrder(t *testing.T) {
	var order []string

	reg := New()
	reg.Register(Plugin{
		ID: "staged",
		Normalize: func(any) []normalize.Item {
			order = append(order, "normalize")
			return []normalize.Item{{ID: "1"}}
		},
		Enrich: func(items []normalize.Item) []normalize.Item {
			order = append(order, "enrich")
			return items
		},
		Classify: func(items []normalize.Item) []normalize.Item {
			order = append(order, "classify")
			return items
		},
	})

	if _, _, ok := reg.Run("staged", nil); !ok {
		t.Fatalf("Expected plugin to run")
	}

	expected := []string{"normalize", "enrich", "classify"}
	if len(order) != len(expected) {
		t.Fatalf("Expected stages %v, got %v", expected, order)
	}
	for i, stage := range expected {
		if order[i] != stage {
			t.Errorf("Expected stage %q at position %d, got %q", stage, i, order[i])
		}
	}
}
