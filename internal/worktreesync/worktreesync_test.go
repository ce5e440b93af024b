package worktreesync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lcgerke/docengine/internal/gitcli"
)

func initRepo(t *testing.T, dir string) *gitcli.Client {
	t.Helper()
	client := gitcli.NewClient(dir)
	if err := client.Init(false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := client.ConfigSet("user.name", "Test User"); err != nil {
		t.Fatalf("ConfigSet: %v", err)
	}
	if err := client.ConfigSet("user.email", "test@example.com"); err != nil {
		t.Fatalf("ConfigSet: %v", err)
	}
	return client
}

func TestPropagate_CopiesAndCommits(t *testing.T) {
	srcDir := t.TempDir()
	initRepo(t, srcDir)
	if err := os.WriteFile(filepath.Join(srcDir, "guide.md"), []byte("# Guide\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	destDir := t.TempDir()
	destClient := initRepo(t, destDir)
	if err := os.WriteFile(filepath.Join(destDir, "feature.go"), []byte("package x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := destClient.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := destClient.CommitWithIdentity("feature work", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	p := New(srcDir, destClient, destDir, "main", gitcli.DefaultIdentity)
	result, err := p.Propagate()
	if err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if result.NoChange {
		t.Fatal("expected a real change on first propagate")
	}
	if result.FilesSynced != 1 {
		t.Errorf("FilesSynced = %d, want 1", result.FilesSynced)
	}
	if result.CommitHash == "" {
		t.Error("expected a non-empty commit hash")
	}

	got, err := os.ReadFile(filepath.Join(destDir, "guide.md"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "# Guide\n" {
		t.Errorf("content = %q", got)
	}

	if _, err := os.Stat(filepath.Join(destDir, "feature.go")); err != nil {
		t.Errorf("expected feature.go to survive propagation untouched: %v", err)
	}
}

func TestPropagate_NoChangeWhenAlreadySynced(t *testing.T) {
	srcDir := t.TempDir()
	initRepo(t, srcDir)
	if err := os.WriteFile(filepath.Join(srcDir, "guide.md"), []byte("# Guide\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	destDir := t.TempDir()
	destClient := initRepo(t, destDir)
	if err := os.WriteFile(filepath.Join(destDir, "seed.md"), []byte("seed"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := destClient.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := destClient.CommitWithIdentity("seed", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	p := New(srcDir, destClient, destDir, "main", gitcli.DefaultIdentity)
	first, err := p.Propagate()
	if err != nil {
		t.Fatalf("Propagate first: %v", err)
	}
	if first.NoChange {
		t.Fatal("expected a real change on first propagate")
	}

	second, err := p.Propagate()
	if err != nil {
		t.Fatalf("Propagate second: %v", err)
	}
	if !second.NoChange {
		t.Fatal("expected NoChange on an immediate repeat propagate")
	}
}

func TestPropagate_RemovesStaleDocuments(t *testing.T) {
	srcDir := t.TempDir()
	initRepo(t, srcDir)
	if err := os.WriteFile(filepath.Join(srcDir, "keep.md"), []byte("keep"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	destDir := t.TempDir()
	destClient := initRepo(t, destDir)
	if err := os.WriteFile(filepath.Join(destDir, "stale.md"), []byte("stale"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := destClient.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := destClient.CommitWithIdentity("seed", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	p := New(srcDir, destClient, destDir, "main", gitcli.DefaultIdentity)
	if _, err := p.Propagate(); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	if _, err := os.Stat(filepath.Join(destDir, "stale.md")); !os.IsNotExist(err) {
		t.Error("expected stale.md to be removed by propagation")
	}
	if _, err := os.Stat(filepath.Join(destDir, "keep.md")); err != nil {
		t.Errorf("expected keep.md to be present: %v", err)
	}
}
