// Package markdown renders the active mod list as Markdown list items.
package markdown

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/mwantia/modexport/data"
	"github.com/mwantia/modexport/sink"
)

// IDPlaceholder is replaced by the catalog id of a mod in URL templates.
const IDPlaceholder = "{id}"

// NexusTemplate returns the mod page URL template of game on Nexus Mods.
// An empty game yields an empty template.
func NexusTemplate(game string) string {
	game = strings.ToLower(strings.TrimSpace(game))
	if game == "" {
		return ""
	}

	return fmt.Sprintf("https://nexusmods.com/%s/mods/%s", game, IDPlaceholder)
}

// Line renders the list item of a single mod, newline terminated.
func Line(mod data.ModEntry, urlTemplate string) string {
	var b strings.Builder
	b.WriteString("- ")

	if url := modURL(mod, urlTemplate); url != "" {
		fmt.Fprintf(&b, "[%s](%s)", mod.Name, url)
	} else {
		b.WriteString(mod.Name)
	}

	if mod.Version != "" {
		b.WriteString(" v")
		b.WriteString(mod.Version)
	}

	b.WriteByte('\n')
	return b.String()
}

// Render returns one line per mod in input order. The sequence does no I/O
// and can be iterated any number of times.
func Render(mods []data.ModEntry, urlTemplate string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, mod := range mods {
			if !yield(Line(mod, urlTemplate)) {
				return
			}
		}
	}
}

// String joins all lines of seq.
func String(seq iter.Seq[string]) string {
	var b strings.Builder
	for line := range seq {
		b.WriteString(line)
	}

	return b.String()
}

// Write delivers the rendered lines of seq to s as a single artifact called name.
func Write(ctx context.Context, seq iter.Seq[string], s sink.Sink, name string) error {
	text := String(seq)
	if err := s.Write(ctx, name, strings.NewReader(text), int64(len(text))); err != nil {
		return fmt.Errorf("failed to write mod list to %s: %w", s.Name(), err)
	}

	return nil
}

// modURL picks the explicit URL first and falls back to the template.
func modURL(mod data.ModEntry, urlTemplate string) string {
	if mod.URL != "" {
		return mod.URL
	}

	if mod.NexusID > 0 && strings.Contains(urlTemplate, IDPlaceholder) {
		return strings.ReplaceAll(urlTemplate, IDPlaceholder, strconv.Itoa(mod.NexusID))
	}

	return ""
}
