package export

import (
	stdzip "archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zip"
	"github.com/mwantia/modexport/data"
)

func newArchive(t *testing.T, opts ...EngineOption) *Archive {
	t.Helper()

	archive, err := NewArchive(opts...)
	if err != nil {
		t.Fatalf("NewArchive failed: %v", err)
	}
	return archive
}

// readArchive returns the content of every member of the archive at path.
func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()

	reader, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("OpenArchive failed: %v", err)
	}
	defer reader.Close()

	members := make(map[string]string)
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("Open '%s' failed: %v", file.Name, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("ReadAll '%s' failed: %v", file.Name, err)
		}

		members[file.Name] = string(content)
	}

	return members
}

func TestArchive_RoundTrip(t *testing.T) {
	root := t.TempDir()
	large := strings.Repeat("compressible content, ", 4096)
	mods := []data.ModEntry{
		writeMod(t, root, "Base", map[string]string{"a.txt": "1", "meshes/armor.nif": large}),
		writeMod(t, root, "Patch", map[string]string{"a.txt": "2", "b.txt": "3", "empty.txt": ""}),
	}
	want := map[string]string{
		"a.txt":            "2",
		"b.txt":            "3",
		"empty.txt":        "",
		"meshes/armor.nif": large,
	}

	tests := []struct {
		codec data.Codec
		level int
	}{
		{data.CodecStored, DefaultLevel},
		{data.CodecDeflate, DefaultLevel},
		{data.CodecDeflate, 9},
		{data.CodecBzip2, DefaultLevel},
		{data.CodecBzip2, 1},
		{data.CodecLZMA, DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "export.zip")
			p := buildPlan(t, mods, false, true)

			outcome, err := newArchive(t, WithCodec(tt.codec), WithLevel(tt.level)).Execute(t.Context(), p, target)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			// The "meshes" directory entry is not a member on its own.
			if outcome.Written != len(want) || outcome.Done != p.Len() {
				t.Errorf("Unexpected outcome: %s", outcome)
			}

			got := readArchive(t, target)
			if len(got) != len(want) {
				t.Errorf("Expected %d members, got %d", len(want), len(got))
			}
			for name, content := range want {
				if got[name] != content {
					t.Errorf("Member '%s' differs from its source", name)
				}
			}
		})
	}
}

func TestArchive_MemberMethod(t *testing.T) {
	target := filepath.Join(t.TempDir(), "export.zip")
	p := buildPlan(t, scenarioMods(t), false, true)

	if _, err := newArchive(t, WithCodec(data.CodecBzip2)).Execute(t.Context(), p, target); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	reader, err := OpenArchive(target)
	if err != nil {
		t.Fatalf("OpenArchive failed: %v", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Method != data.CodecBzip2.Method() {
			t.Errorf("Member '%s': expected method %d, got %d", file.Name, data.CodecBzip2.Method(), file.Method)
		}
	}
}

func TestArchive_EmptyPlan(t *testing.T) {
	target := filepath.Join(t.TempDir(), "export.zip")
	p := buildPlan(t, scenarioMods(t), false, true, "*.txt")

	outcome, err := newArchive(t).Execute(t.Context(), p, target)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if outcome.Written != 0 || outcome.Filtered != 2 {
		t.Errorf("Unexpected outcome: %s", outcome)
	}
	if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected no archive, got %v", err)
	}
}

func TestArchive_CancelKeepsReadableArchive(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	target := filepath.Join(t.TempDir(), "export.zip")
	p := buildPlan(t, scenarioMods(t), false, true)

	archive := newArchive(t, WithProgress(func(done, total int, entry data.PlanEntry) {
		cancel()
	}))

	outcome, err := archive.Execute(ctx, p, target)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if outcome.Status != data.StatusAborted || outcome.Written != 1 {
		t.Errorf("Unexpected outcome: %s", outcome)
	}

	got := readArchive(t, target)
	if len(got) != 1 || got["a.txt"] != "2" {
		t.Errorf("Expected only a.txt in partial archive, got %v", got)
	}
}

func TestArchive_FailureFinalizesArchive(t *testing.T) {
	mods := scenarioMods(t)
	if err := os.Remove(filepath.Join(mods[1].Path, "b.txt")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	target := filepath.Join(t.TempDir(), "export.zip")
	outcome, err := newArchive(t).Execute(t.Context(), buildPlan(t, mods, false, true), target)
	if !errors.Is(err, data.ErrArchiveWrite) {
		t.Fatalf("Expected archive write error, got %v", err)
	}
	if outcome.Status != data.StatusFailed || outcome.Done != 1 {
		t.Errorf("Unexpected outcome: %s", outcome)
	}

	got := readArchive(t, target)
	if len(got) != 1 || got["a.txt"] != "2" {
		t.Errorf("Expected a.txt in finalized archive, got %v", got)
	}
}

func TestArchive_StandardLayout(t *testing.T) {
	root := t.TempDir()
	mod := writeMod(t, root, "Base", map[string]string{"a.txt": "1", "docs/ü.txt": strings.Repeat("data ", 512)})

	modified := time.Date(2024, 3, 9, 14, 30, 20, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(mod.Path, "a.txt"), modified, modified); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	for _, codec := range []data.Codec{data.CodecStored, data.CodecDeflate, data.CodecBzip2, data.CodecLZMA} {
		t.Run(codec.String(), func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "export.zip")
			if _, err := newArchive(t, WithCodec(codec)).Execute(t.Context(), buildPlan(t, []data.ModEntry{mod}, false, true), target); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}

			raw, err := os.ReadFile(target)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !bytes.HasPrefix(raw, []byte("PK\x03\x04")) {
				t.Fatalf("Expected local file header at offset 0, got % x", raw[:min(len(raw), 8)])
			}

			// Read back with the standard library, which also verifies every CRC32.
			reader, err := stdzip.NewReader(bytes.NewReader(raw), int64(len(raw)))
			if err != nil {
				t.Fatalf("NewReader failed: %v", err)
			}
			reader.RegisterDecompressor(methodBzip2, func(in io.Reader) io.ReadCloser {
				br, err := bzip2.NewReader(in, nil)
				if err != nil {
					return errorReader{err}
				}
				return br
			})
			reader.RegisterDecompressor(methodLZMA, newLZMAReader)

			for _, file := range reader.File {
				rc, err := file.Open()
				if err != nil {
					t.Fatalf("Open '%s' failed: %v", file.Name, err)
				}
				if _, err := io.Copy(io.Discard, rc); err != nil {
					t.Errorf("Reading '%s' failed: %v", file.Name, err)
				}
				rc.Close()

				if file.Name == "docs/ü.txt" && file.NonUTF8 {
					t.Errorf("Expected '%s' to be flagged as UTF-8", file.Name)
				}
				if file.Name == "a.txt" && !file.Modified.Equal(modified) {
					t.Errorf("Expected modification time %v, got %v", modified, file.Modified)
				}
			}
		})
	}
}

func TestArchive_NonRegularSourceLeavesNoMember(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.txt")
	if err := os.WriteFile(good, []byte("ok"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	p := &data.Plan{
		Entries: []data.PlanEntry{
			{Path: "good.txt", Source: good, Mod: "Base", Kind: data.KindFile, Action: data.ActionWriteFile},
			{Path: "torn.bin", Source: root, Mod: "Base", Kind: data.KindFile, Action: data.ActionWriteFile},
		},
	}

	target := filepath.Join(t.TempDir(), "export.zip")
	outcome, err := newArchive(t, WithCodec(data.CodecDeflate)).Execute(t.Context(), p, target)
	if !errors.Is(err, data.ErrArchiveWrite) {
		t.Fatalf("Expected archive write error, got %v", err)
	}
	if outcome.Status != data.StatusFailed || outcome.Written != 1 {
		t.Errorf("Unexpected outcome: %s", outcome)
	}

	got := readArchive(t, target)
	if _, ok := got["torn.bin"]; ok || len(got) != 1 || got["good.txt"] != "ok" {
		t.Errorf("Expected only good.txt in archive, got %v", got)
	}

	spools, err := filepath.Glob(filepath.Join(filepath.Dir(target), "*.spool"))
	if err != nil || len(spools) != 0 {
		t.Errorf("Expected spool to be removed, got %v", spools)
	}
}

func TestArchive_ReadErrorLeavesNoMember(t *testing.T) {
	for _, codec := range []data.Codec{data.CodecStored, data.CodecDeflate, data.CodecBzip2, data.CodecLZMA} {
		t.Run(codec.String(), func(t *testing.T) {
			archive := newArchive(t, WithCodec(codec))
			dir := t.TempDir()

			spool, err := newSpool(dir)
			if err != nil {
				t.Fatalf("newSpool failed: %v", err)
			}
			defer spool.remove()

			var buf bytes.Buffer
			writer := zip.NewWriter(&buf)
			info := fakeFileInfo{name: "member.bin", size: 1 << 16}

			content := strings.Repeat("x", 1<<15)
			src := io.MultiReader(strings.NewReader(content), iotest.ErrReader(errors.New("disk gone")))

			if _, err := archive.addMember(writer, spool, archive.newHeader("broken.bin", info), src); !errors.Is(err, data.ErrArchiveWrite) {
				t.Fatalf("Expected archive write error, got %v", err)
			}
			if _, err := archive.addMember(writer, spool, archive.newHeader("whole.bin", info), strings.NewReader(content)); err != nil {
				t.Fatalf("addMember failed: %v", err)
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
			if err != nil {
				t.Fatalf("NewReader failed: %v", err)
			}
			registerDecompressors(reader)

			if len(reader.File) != 1 || reader.File[0].Name != "whole.bin" {
				t.Fatalf("Expected only whole.bin, got %d members", len(reader.File))
			}

			rc, err := reader.File[0].Open()
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if string(got) != content {
				t.Errorf("Member differs from its source, got %d bytes", len(got))
			}
		})
	}
}

type fakeFileInfo struct {
	name string
	size int64
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return f.size }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() any           { return nil }

func TestNewArchive_LevelFallback(t *testing.T) {
	tests := []struct {
		name  string
		codec data.Codec
		level int
		want  int
	}{
		{"deflate in range", data.CodecDeflate, 0, 0},
		{"deflate too high", data.CodecDeflate, 12, DefaultLevel},
		{"bzip2 default", data.CodecBzip2, DefaultLevel, defaultBzip2Level},
		{"bzip2 too low", data.CodecBzip2, 0, defaultBzip2Level},
		{"lzma ignores level", data.CodecLZMA, 5, DefaultLevel},
		{"stored ignores level", data.CodecStored, 3, DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := newArchive(t, WithCodec(tt.codec), WithLevel(tt.level))
			if archive.Level() != tt.want {
				t.Errorf("Expected level %d, got %d", tt.want, archive.Level())
			}
		})
	}
}

func TestWithCodec_Unknown(t *testing.T) {
	if _, err := NewArchive(WithCodec(data.Codec(42))); !errors.Is(err, data.ErrInvalid) {
		t.Errorf("Expected invalid argument error, got %v", err)
	}
}
