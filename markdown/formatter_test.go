package markdown

import (
	"context"
	"io"
	"slices"
	"testing"

	"github.com/mwantia/modexport/data"
)

func TestLine(t *testing.T) {
	template := NexusTemplate("SkyrimSpecialEdition")

	tests := []struct {
		name string
		mod  data.ModEntry
		want string
	}{
		{
			name: "bare name with version",
			mod:  data.ModEntry{Name: "Foo", Version: "1.2.3"},
			want: "- Foo v1.2.3\n",
		},
		{
			name: "bare name without version",
			mod:  data.ModEntry{Name: "Foo"},
			want: "- Foo\n",
		},
		{
			name: "catalog id",
			mod:  data.ModEntry{Name: "SkyUI", NexusID: 12604, Version: "5.2"},
			want: "- [SkyUI](https://nexusmods.com/skyrimspecialedition/mods/12604) v5.2\n",
		},
		{
			name: "explicit url wins",
			mod:  data.ModEntry{Name: "Custom", URL: "https://example.com/custom", NexusID: 7},
			want: "- [Custom](https://example.com/custom)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Line(tt.mod, template); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLine_NoTemplate(t *testing.T) {
	got := Line(data.ModEntry{Name: "SkyUI", NexusID: 12604}, NexusTemplate(""))
	if got != "- SkyUI\n" {
		t.Errorf("Expected bare name without template, got %q", got)
	}
}

func TestRender_Restartable(t *testing.T) {
	mods := []data.ModEntry{{Name: "A"}, {Name: "B", Version: "2"}}
	seq := Render(mods, "")

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	want := []string{"- A\n", "- B v2\n"}
	if !slices.Equal(first, want) || !slices.Equal(second, want) {
		t.Errorf("Expected %q twice, got %q and %q", want, first, second)
	}

	for line := range seq {
		if line != "- A\n" {
			t.Errorf("Unexpected first line %q", line)
		}
		break
	}
}

type memorySink struct {
	name    string
	content string
}

func (*memorySink) Name() string {
	return "memory"
}

func (m *memorySink) Write(ctx context.Context, name string, r io.Reader, size int64) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.name = name
	m.content = string(content)
	return nil
}

func TestWrite(t *testing.T) {
	s := &memorySink{}
	mods := []data.ModEntry{{Name: "Foo", Version: "1.2.3"}, {Name: "Bar"}}

	if err := Write(t.Context(), Render(mods, ""), s, "modlist.md"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if s.name != "modlist.md" || s.content != "- Foo v1.2.3\n- Bar\n" {
		t.Errorf("Unexpected sink content %q as %q", s.content, s.name)
	}
}
