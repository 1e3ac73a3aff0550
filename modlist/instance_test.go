package modlist

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mwantia/modexport/data"
)

const testList = `# This file was automatically generated by Mod Organizer.
+Patch
-Disabled
+Armor_separator
+Base
*DLC: Dawnguard

`

// newTestInstance creates an instance with the mods of testList.
func newTestInstance(t *testing.T) *Instance {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"mods/Base/a.txt":                     "1",
		"mods/Base/meta.ini":                  "[General]\nversion=1.0.0\nmodid=42\ngameName=skyrimse\n",
		"mods/Base/textures/meta.ini":         "nested files are kept",
		"mods/Patch/a.txt":                    "2",
		"mods/Patch/b.txt":                    "3",
		"mods/Patch/meta.ini":                 "[General]\nversion=2.1\nurl=https://example.com/patch\nhasCustomURL=true\n",
		"mods/Disabled/c.txt":                 "4",
		"overwrite/SKSE/plugins/settings.ini": "5",
		"profiles/Default/modlist.txt":        testList,
	}

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	instance := NewInstance(root, "Default", nil)
	if err := instance.Open(t.Context()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	return instance
}

func names(mods []data.ModEntry) []string {
	out := make([]string, 0, len(mods))
	for _, mod := range mods {
		out = append(out, mod.Name)
	}
	return out
}

func walkPaths(t *testing.T, tree data.FileTree) []string {
	t.Helper()

	var paths []string
	err := tree.Walk(func(path string, kind data.EntryKind) data.WalkAction {
		if kind.IsDir() {
			path += "/"
		}
		paths = append(paths, path)
		return data.WalkContinue
	})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	return paths
}

func TestParseList(t *testing.T) {
	entries, err := ParseList(strings.NewReader("\ufeff+A\n-B\n*C\n\n# comment\n+D_separator\n"))
	if err != nil {
		t.Fatalf("ParseList failed: %v", err)
	}

	want := []ListEntry{
		{Name: "A", State: StateEnabled},
		{Name: "B", State: StateDisabled},
		{Name: "C", State: StateUnmanaged},
		{Name: "D_separator", State: StateEnabled},
	}
	if !slices.Equal(entries, want) {
		t.Errorf("Expected %+v, got %+v", want, entries)
	}
	if !entries[3].Separator() || entries[0].Separator() {
		t.Error("Unexpected separator classification")
	}
}

func TestParseList_Invalid(t *testing.T) {
	for _, input := range []string{"Foo\n", "+\n"} {
		if _, err := ParseList(strings.NewReader(input)); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestActiveMods_Order(t *testing.T) {
	instance := newTestInstance(t)

	tests := []struct {
		name       string
		reverse    bool
		separators bool
		want       []string
	}{
		{"ascending", false, false, []string{"Base", "Patch"}},
		{"descending", true, false, []string{"Patch", "Base"}},
		{"separators", false, true, []string{"Base", "Armor_separator", "Patch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, err := instance.ActiveMods(t.Context(), tt.reverse, tt.separators)
			if err != nil {
				t.Fatalf("ActiveMods failed: %v", err)
			}

			if got := names(mods); !slices.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestActiveMods_Metadata(t *testing.T) {
	mods, err := newTestInstance(t).ActiveMods(t.Context(), false, true)
	if err != nil {
		t.Fatalf("ActiveMods failed: %v", err)
	}

	base, separator, patch := mods[0], mods[1], mods[2]

	if base.Version != "1.0.0" || base.NexusID != 42 || base.URL != "" {
		t.Errorf("Unexpected Base metadata: %+v", base)
	}
	if patch.Version != "2.1" || patch.URL != "https://example.com/patch" {
		t.Errorf("Unexpected Patch metadata: %+v", patch)
	}
	if !separator.Separator {
		t.Errorf("Expected separator entry, got %+v", separator)
	}
	if got := walkPaths(t, separator.Tree); len(got) != 0 {
		t.Errorf("Expected empty separator tree, got %v", got)
	}
}

func TestActiveMods_TreeSkipsRootMeta(t *testing.T) {
	mods, err := newTestInstance(t).ActiveMods(t.Context(), false, false)
	if err != nil {
		t.Fatalf("ActiveMods failed: %v", err)
	}

	want := []string{"a.txt", "textures/", "textures/meta.ini"}
	if got := walkPaths(t, mods[0].Tree); !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestActiveMods_MissingFolder(t *testing.T) {
	instance := newTestInstance(t)
	if err := os.RemoveAll(filepath.Join(instance.ModsPath(), "Patch")); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}

	if _, err := instance.ActiveMods(t.Context(), false, false); !errors.Is(err, data.ErrModNotFound) {
		t.Errorf("Expected mod not found error, got %v", err)
	}
}

func TestMod_Overwrite(t *testing.T) {
	mod, err := newTestInstance(t).Mod(t.Context(), data.OverwriteModName)
	if err != nil {
		t.Fatalf("Mod failed: %v", err)
	}

	if !mod.IsOverwrite() {
		t.Errorf("Expected overwrite pseudo-mod, got %+v", mod)
	}

	want := []string{"SKSE/", "SKSE/plugins/", "SKSE/plugins/settings.ini"}
	if got := walkPaths(t, mod.Tree); !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestMod_Unknown(t *testing.T) {
	if _, err := newTestInstance(t).Mod(t.Context(), "Missing"); !errors.Is(err, data.ErrModNotFound) {
		t.Errorf("Expected mod not found error, got %v", err)
	}
}

func TestOpen_MissingProfile(t *testing.T) {
	instance := newTestInstance(t)
	instance.SetProfile("Other")

	if err := instance.Open(t.Context()); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected not exist error, got %v", err)
	}
}
