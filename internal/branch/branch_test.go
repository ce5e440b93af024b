package branch

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/gitcli"
)

func initRepoWithCommit(t *testing.T, dir string) *gitcli.Client {
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
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := client.CommitWithIdentity("initial", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return client
}

// createBranchForTest creates a local branch without switching to it, by
// shelling out directly rather than through internal/gitcli: the Branch
// Coordinator itself never creates branches (spec.md §4.3 invariant), so
// this helper stands in for "a branch that already exists".
func createBranchForTest(t *testing.T, dir, name string) {
	t.Helper()
	cmd := exec.Command("git", "branch", name)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		t.Fatalf("git branch %s: %v", name, err)
	}
}

func TestCurrentBranch_AndIsDocsBranch(t *testing.T) {
	dir := t.TempDir()
	client := initRepoWithCommit(t, dir)

	main, err := client.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}

	co := New(client, main)
	current, err := co.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if current != main {
		t.Errorf("current = %q, want %q", current, main)
	}

	isDocs, err := co.IsDocsBranch()
	if err != nil {
		t.Fatalf("IsDocsBranch: %v", err)
	}
	if !isDocs {
		t.Error("expected current branch to be the docs branch")
	}
}

func TestListBranches_MarksCurrent(t *testing.T) {
	dir := t.TempDir()
	client := initRepoWithCommit(t, dir)
	main, _ := client.CurrentBranch()

	co := New(client, main)
	descriptors, err := co.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(descriptors) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(descriptors))
	}
	if !descriptors[0].IsCurrent || descriptors[0].IsRemote {
		t.Errorf("descriptor = %+v, want current local branch", descriptors[0])
	}
}

func TestSwitchBranch_NoOpOnCurrent(t *testing.T) {
	dir := t.TempDir()
	client := initRepoWithCommit(t, dir)
	main, _ := client.CurrentBranch()

	co := New(client, main)
	if err := co.SwitchBranch(main); err != nil {
		t.Fatalf("SwitchBranch to current branch should be a no-op success: %v", err)
	}
}

func TestSwitchBranch_UnknownBranch(t *testing.T) {
	dir := t.TempDir()
	client := initRepoWithCommit(t, dir)
	main, _ := client.CurrentBranch()

	co := New(client, main)
	err := co.SwitchBranch("does-not-exist")
	if err == nil {
		t.Fatal("expected an error switching to an unknown branch")
	}
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindUnknownBranch {
		t.Errorf("kind = %v, want UnknownBranch", kind)
	}
}

func TestSwitchBranch_UncommittedChanges(t *testing.T) {
	dir := t.TempDir()
	client := initRepoWithCommit(t, dir)
	main, _ := client.CurrentBranch()
	createBranchForTest(t, dir, "feature")

	if err := os.WriteFile(filepath.Join(dir, "dirty.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	co := New(client, main)
	err := co.SwitchBranch("feature")
	if err == nil {
		t.Fatal("expected an error switching with a dirty working tree")
	}
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindUncommittedChanges {
		t.Errorf("kind = %v, want UncommittedChanges", kind)
	}
}

func TestSwitchBranch_Success(t *testing.T) {
	dir := t.TempDir()
	client := initRepoWithCommit(t, dir)
	main, _ := client.CurrentBranch()
	createBranchForTest(t, dir, "feature")

	co := New(client, main)
	if err := co.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}

	current, err := co.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if current != "feature" {
		t.Errorf("current = %q, want feature", current)
	}
}
