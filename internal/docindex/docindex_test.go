package docindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lcgerke/docengine/internal/docerrors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestBuild_OrderingAndClassification(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "# b")
	writeFile(t, root, "a.md", "# a")
	writeFile(t, root, "data.json", "{}")
	writeFile(t, root, "image.png", "not a doc")
	writeFile(t, root, "docs/nested.md", "nested")
	writeFile(t, root, "node_modules/pkg/readme.md", "ignored")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")

	entries, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.RelativePath)
	}

	want := []string{"a.md", "b.md", "data.json", "docs/nested.md"}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.md", "z")
	writeFile(t, root, "a.json", "{}")
	writeFile(t, root, "m/x.md", "x")

	first, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("listings differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RelativePath != second[i].RelativePath {
			t.Errorf("listing order differs at %d: %q vs %q", i, first[i].RelativePath, second[i].RelativePath)
		}
	}
}

func TestBuild_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.md", "real content")

	link := filepath.Join(root, "link.md")
	if err := os.Symlink(filepath.Join(root, "real.md"), link); err != nil {
		t.Skipf("symlinks unsupported on this platform: %v", err)
	}

	entries, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, e := range entries {
		if e.RelativePath == "link.md" {
			t.Fatalf("symlink was not skipped: %+v", e)
		}
	}
}

func TestReadContent_RoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Hi\n")

	got, err := ReadContent(root, "README.md")
	if err != nil {
		t.Fatalf("ReadContent: %v", err)
	}
	if got != "# Hi\n" {
		t.Errorf("content = %q, want %q", got, "# Hi\n")
	}
}

func TestReadContent_NotFound(t *testing.T) {
	root := t.TempDir()
	_, err := ReadContent(root, "missing.md")
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindNotFound {
		t.Errorf("kind = %v, want NotFound", kind)
	}
}

func TestReadContent_NonUTF8(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.json", "")
	full := filepath.Join(root, "bad.json")
	if err := os.WriteFile(full, []byte{0xff, 0xfe, 0x00}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := ReadContent(root, "bad.json")
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindEncodingNotUtf8 {
		t.Errorf("kind = %v, want EncodingNotUtf8", kind)
	}
}

func TestReadContent_Symlink(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.md", "real")
	link := filepath.Join(root, "link.md")
	if err := os.Symlink(filepath.Join(root, "real.md"), link); err != nil {
		t.Skipf("symlinks unsupported on this platform: %v", err)
	}

	_, err := ReadContent(root, "link.md")
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindNotFound {
		t.Errorf("kind = %v, want NotFound for a symlinked path", kind)
	}
}
