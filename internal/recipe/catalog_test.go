package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("Failed to load default catalog: %v", err)
	}
	if c.Version() == "" {
		t.Error("Expected a catalog version, got empty string")
	}

	for _, m := range MealTypes {
		pool := c.ByMealType(m)
		// 28 days with a cap of 2 uses per recipe needs at least 14 recipes.
		if len(pool) < 14 {
			t.Errorf("Expected at least 14 %s recipes, got %d", m, len(pool))
		}
		for i := 1; i < len(pool); i++ {
			if pool[i-1].ID >= pool[i].ID {
				t.Errorf("Expected %s pool sorted by id, got %s before %s", m, pool[i-1].ID, pool[i].ID)
			}
		}
	}
}

func TestDecode(t *testing.T) {
	t.Run("DuplicateID", func(t *testing.T) {
		_, err := Decode([]byte(`{"version":"v1","recipes":[
			{"id":"a","title":"A","mealType":"lunch"},
			{"id":"a","title":"B","mealType":"lunch"}]}`))
		if err == nil || !strings.Contains(err.Error(), "duplicate recipe id a") {
			t.Errorf("Expected duplicate id error, got %v", err)
		}
	})

	t.Run("UnknownMealType", func(t *testing.T) {
		_, err := Decode([]byte(`{"version":"v1","recipes":[{"id":"a","title":"A","mealType":"brunch"}]}`))
		if err == nil {
			t.Fatal("Expected an error for unknown meal type, got nil")
		}
	})

	t.Run("MissingVersion", func(t *testing.T) {
		_, err := Decode([]byte(`{"recipes":[]}`))
		if err == nil {
			t.Fatal("Expected an error for missing version, got nil")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, err := Decode([]byte(`not json`))
		if err == nil || !strings.HasPrefix(err.Error(), "failed to unmarshal catalog") {
			t.Errorf("Expected unmarshal error, got %v", err)
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"version":"file-1","recipes":[{"id":"x","title":"Oat Bowl","mealType":"breakfast","prepTimeMin":5,"cookTimeMin":4}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Failed to load catalog file: %v", err)
	}
	if c.Version() != "file-1" {
		t.Errorf("Expected version 'file-1', got '%s'", c.Version())
	}
	r, ok := c.Get("x")
	if !ok {
		t.Fatal("Expected recipe 'x' to exist")
	}
	if r.TotalTimeMin() != 9 {
		t.Errorf("Expected total time 9, got %d", r.TotalTimeMin())
	}
}

func TestMerge(t *testing.T) {
	base, err := New("v1", []Recipe{{ID: "a", Title: "A", MealType: Lunch}})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("NoExtras", func(t *testing.T) {
		merged, err := base.Merge(nil)
		if err != nil {
			t.Fatal(err)
		}
		if merged.Version() != "v1" {
			t.Errorf("Expected version unchanged, got '%s'", merged.Version())
		}
	})

	t.Run("BumpsVersion", func(t *testing.T) {
		merged, err := base.Merge([]Recipe{{ID: "b", Title: "B", MealType: Dinner}})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(merged.Version(), "v1+") || len(merged.Version()) != len("v1+")+8 {
			t.Errorf("Expected version 'v1+<8 hex>', got '%s'", merged.Version())
		}
		if merged.Len() != 2 {
			t.Errorf("Expected 2 recipes, got %d", merged.Len())
		}
		if base.Len() != 1 {
			t.Errorf("Expected base catalog untouched, got %d recipes", base.Len())
		}
	})

	t.Run("RejectsDuplicate", func(t *testing.T) {
		if _, err := base.Merge([]Recipe{{ID: "a", Title: "A2", MealType: Lunch}}); err == nil {
			t.Fatal("Expected duplicate id error, got nil")
		}
	})
}

func TestLookup(t *testing.T) {
	c, _ := New("v1", []Recipe{{ID: "a", Title: "A", MealType: Snack}})
	if _, err := c.Lookup("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestParseMealType(t *testing.T) {
	m, err := ParseMealType(" Dinner ")
	if err != nil || m != Dinner {
		t.Errorf("Expected dinner, got %q (%v)", m, err)
	}
	if _, err := ParseMealType("brunch"); err == nil {
		t.Error("Expected an error for 'brunch', got nil")
	}
	if Snack.Index() != 2 {
		t.Errorf("Expected snack index 2, got %d", Snack.Index())
	}
}
