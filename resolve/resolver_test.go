package resolve

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mwantia/modexport/data"
)

func testMods() []data.ModEntry {
	return []data.ModEntry{
		{
			Name: "Base",
			Path: filepath.Join("/mods", "Base"),
			Tree: data.NewStaticTree("a.txt"),
		},
		{
			Name: "Patch",
			Path: filepath.Join("/mods", "Patch"),
			Tree: data.NewStaticTree("a.txt", "b.txt"),
		},
	}
}

func TestResolve_Empty(t *testing.T) {
	paths, err := Resolve(nil, false, Filters{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !paths.Empty() {
		t.Errorf("Expected empty map, got %v", paths.Paths())
	}
}

func TestResolve_MergedCollision(t *testing.T) {
	paths, err := Resolve(testMods(), false, Filters{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := map[string]string{
		"a.txt": filepath.Join("/mods", "Patch", "a.txt"),
		"b.txt": filepath.Join("/mods", "Patch", "b.txt"),
	}

	if paths.Len() != len(want) {
		t.Fatalf("Expected %d entries, got %v", len(want), paths.Paths())
	}

	for rel, abs := range want {
		src, ok := paths.Get(rel)
		if !ok {
			t.Fatalf("Missing entry %q", rel)
		}
		if src.Path != abs {
			t.Errorf("Entry %q: expected source %q, got %q", rel, abs, src.Path)
		}
		if src.Mod != "Patch" {
			t.Errorf("Entry %q: expected mod Patch, got %q", rel, src.Mod)
		}
	}
}

// walkOrderTree yields its entries in the given order, regardless of sorting.
type walkOrderTree struct {
	paths []string
}

func (w walkOrderTree) Walk(fn data.WalkFunc) error {
	for _, p := range w.paths {
		if fn(p, data.KindFile) == data.WalkStop {
			return nil
		}
	}
	return nil
}

func TestResolve_CollisionIgnoresWalkOrder(t *testing.T) {
	orders := [][]string{
		{"x/p.esp", "x/q.esp"},
		{"x/q.esp", "x/p.esp"},
	}

	for _, low := range orders {
		for _, high := range orders {
			mods := []data.ModEntry{
				{Name: "A", Path: "/mods/A", Tree: walkOrderTree{paths: low}},
				{Name: "B", Path: "/mods/B", Tree: walkOrderTree{paths: high}},
			}

			paths, err := Resolve(mods, false, Filters{})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}

			for _, rel := range []string{"x/p.esp", "x/q.esp"} {
				src, _ := paths.Get(rel)
				if src.Mod != "B" {
					t.Errorf("Entry %q (orders %v/%v): expected mod B, got %q", rel, low, high, src.Mod)
				}
			}
		}
	}
}

func TestResolve_SeparateFolders(t *testing.T) {
	paths, err := Resolve(testMods(), true, Filters{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []string{"Base/a.txt", "Patch/a.txt", "Patch/b.txt"}
	if got := paths.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected paths %v, got %v", want, got)
	}

	src, _ := paths.Get("Base/a.txt")
	if src.Path != filepath.Join("/mods", "Base", "a.txt") {
		t.Errorf("Unexpected source for Base/a.txt: %q", src.Path)
	}
}

func TestResolve_Filters(t *testing.T) {
	filters, err := NewFilters("*.txt")
	if err != nil {
		t.Fatalf("NewFilters failed: %v", err)
	}

	paths, err := Resolve(testMods(), false, filters)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !paths.Empty() {
		t.Errorf("Expected empty map, got %v", paths.Paths())
	}

	if got := paths.Excluded(); !reflect.DeepEqual(got, []string{"a.txt", "b.txt"}) {
		t.Errorf("Unexpected excluded paths: %v", got)
	}
}

func TestResolve_FiltersMatchDirectoriesAndNestedPaths(t *testing.T) {
	mods := []data.ModEntry{
		{
			Name: "Textures",
			Path: "/mods/Textures",
			Tree: data.NewStaticTree("textures/sky.dds", "docs/readme.txt", "docs/empty/"),
		},
	}

	filters, err := ParseFilters("docs\n\n  *.dds  \n")
	if err != nil {
		t.Fatalf("ParseFilters failed: %v", err)
	}

	if filters.Len() != 2 {
		t.Fatalf("Expected 2 patterns, got %v", filters.Patterns())
	}

	paths, err := Resolve(mods, false, filters)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// "docs" only matches the directory entry itself, "*.dds" crosses separators.
	want := []string{"docs/empty", "docs/readme.txt", "textures"}
	if got := paths.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected paths %v, got %v", want, got)
	}
}

func TestResolve_SkipsSeparators(t *testing.T) {
	mods := []data.ModEntry{
		{Name: "Armor_separator", Separator: true},
		{Name: "Empty", Path: "/mods/Empty", Tree: data.NewStaticTree()},
	}

	paths, err := Resolve(mods, true, Filters{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !paths.Empty() {
		t.Errorf("Expected empty map, got %v", paths.Paths())
	}
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := ResolveContext(ctx, testMods(), false, Filters{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
