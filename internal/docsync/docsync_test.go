package docsync

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcgerke/docengine/internal/arbiter"
	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/gitcli"
)

// cloneRepo clones src into dst via the git binary directly; internal/gitcli
// deliberately has no Clone method (worktree creation is out of scope for
// the engine itself — spec.md §4.6 assumes the task worktree already
// exists), so tests that need a second working copy of a remote shell out.
func cloneRepo(src, dst string) error {
	cmd := exec.Command("git", "clone", src, dst)
	return cmd.Run()
}

func setupRepoWithRemote(t *testing.T) (*gitcli.Client, string, string) {
	t.Helper()
	dir := t.TempDir()
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

	bareDir := filepath.Join(dir, "..", "bare.git")
	bareDir, _ = filepath.Abs(bareDir)
	if err := gitcli.InitBareRepo(bareDir); err != nil {
		t.Fatalf("InitBareRepo: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(bareDir) })

	if err := client.AddRemote("origin", bareDir); err != nil {
		t.Fatalf("AddRemote: %v", err)
	}
	branch, err := client.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if err := client.PushSetUpstream("origin", branch); err != nil {
		t.Fatalf("PushSetUpstream: %v", err)
	}
	return client, dir, branch
}

func TestStatus_UpToDate(t *testing.T) {
	client, _, branch := setupRepoWithRemote(t)
	a := arbiter.New()
	engine := New(client, a, "proj-1", "origin")

	status, err := engine.Status(branch)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Ahead != 0 || status.Behind != 0 {
		t.Errorf("ahead=%d behind=%d, want 0,0", status.Ahead, status.Behind)
	}
	if status.NeedsRebase || !status.CanSync {
		t.Errorf("NeedsRebase=%v CanSync=%v, want false,true", status.NeedsRebase, status.CanSync)
	}
}

func TestSync_PushesAheadCommit(t *testing.T) {
	client, dir, branch := setupRepoWithRemote(t)
	a := arbiter.New()
	engine := New(client, a, "proj-1", "origin")

	if err := os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := client.CommitWithIdentity("second", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	outcome, err := engine.Sync(context.Background(), branch, false, time.Second)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !outcome.Pushed || outcome.Rebased {
		t.Errorf("outcome = %+v, want Pushed=true Rebased=false", outcome)
	}

	status, err := engine.Status(branch)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Ahead != 0 || status.Behind != 0 {
		t.Errorf("ahead=%d behind=%d after push, want 0,0", status.Ahead, status.Behind)
	}
}

func TestSync_RequiresRebaseWhenBehindAndNotAllowed(t *testing.T) {
	client, dir, branch := setupRepoWithRemote(t)
	a := arbiter.New()
	engine := New(client, a, "proj-1", "origin")

	makeUpstreamDiverge(t, dir, branch)

	_, err := engine.Sync(context.Background(), branch, false, time.Second)
	if err == nil {
		t.Fatal("expected RebaseRequired when behind and allowRebase is false")
	}
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindRebaseRequired {
		t.Errorf("kind = %v, want RebaseRequired", kind)
	}
}

func TestSync_RebasesWhenAllowed(t *testing.T) {
	client, dir, branch := setupRepoWithRemote(t)
	a := arbiter.New()
	engine := New(client, a, "proj-1", "origin")

	makeUpstreamDiverge(t, dir, branch)

	if err := os.WriteFile(filepath.Join(dir, "local-change.md"), []byte("local"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := client.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := client.CommitWithIdentity("local change", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	outcome, err := engine.Sync(context.Background(), branch, true, time.Second)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !outcome.Rebased || !outcome.Pushed {
		t.Errorf("outcome = %+v, want Rebased=true Pushed=true", outcome)
	}
	if outcome.Ahead != 0 || outcome.Behind != 0 {
		t.Errorf("ahead=%d behind=%d after rebase+push, want 0,0", outcome.Ahead, outcome.Behind)
	}
}

// makeUpstreamDiverge simulates another writer advancing the upstream branch
// by cloning the bare remote, committing there, and pushing back, so origin
// has a commit the original working copy lacks.
func makeUpstreamDiverge(t *testing.T, dir, branch string) {
	t.Helper()
	otherDir := dir + "-other-clone"
	bareDir := filepath.Join(dir, "..", "bare.git")
	bareDir, _ = filepath.Abs(bareDir)

	if err := cloneRepo(bareDir, otherDir); err != nil {
		t.Fatalf("clone: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(otherDir) })

	other := gitcli.NewClient(otherDir)
	if err := other.ConfigSet("user.name", "Other Writer"); err != nil {
		t.Fatalf("ConfigSet: %v", err)
	}
	if err := other.ConfigSet("user.email", "other@example.com"); err != nil {
		t.Fatalf("ConfigSet: %v", err)
	}
	if err := os.WriteFile(filepath.Join(otherDir, "remote-change.md"), []byte("remote"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := other.Add("."); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := other.CommitWithIdentity("remote change", gitcli.DefaultIdentity); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := other.Push("origin", branch); err != nil {
		t.Fatalf("Push from other clone: %v", err)
	}
}

func TestSync_FailsOnDirtyWorkingTree(t *testing.T) {
	client, dir, branch := setupRepoWithRemote(t)
	a := arbiter.New()
	engine := New(client, a, "proj-1", "origin")

	if err := os.WriteFile(filepath.Join(dir, "untracked.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := engine.Sync(context.Background(), branch, false, time.Second)
	if err == nil {
		t.Fatal("expected an error when the working tree is dirty")
	}
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindSyncPreconditionFailed {
		t.Errorf("kind = %v, want SyncPreconditionFailed", kind)
	}
}

func TestSync_FailsOnWrongBranch(t *testing.T) {
	client, dir, branch := setupRepoWithRemote(t)
	a := arbiter.New()
	engine := New(client, a, "proj-1", "origin")

	cmd := exec.Command("git", "checkout", "-b", "other-branch")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		t.Fatalf("checkout -b other-branch: %v", err)
	}

	_, err := engine.Sync(context.Background(), branch, false, time.Second)
	if err == nil {
		t.Fatal("expected an error when HEAD is not on the docs branch")
	}
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindSyncPreconditionFailed {
		t.Errorf("kind = %v, want SyncPreconditionFailed", kind)
	}
}
