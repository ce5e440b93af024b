package repohealth

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/lcgerke/docengine/internal/reporegistry"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-q", "-m", "initial")
}

func TestCheckOne_MissingWorktree(t *testing.T) {
	registry, err := reporegistry.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checker := NewChecker(registry)

	issues, err := checker.CheckOne(reporegistry.Repository{
		ProjectID:    "proj-1",
		WorktreePath: "/nonexistent/path/does-not-exist",
	})
	if err != nil {
		t.Fatalf("CheckOne: %v", err)
	}
	if len(issues) != 1 || issues[0].Type != IssueMissingWorktree {
		t.Fatalf("issues = %+v, want one IssueMissingWorktree", issues)
	}
}

func TestCheckOne_NotGitRepo(t *testing.T) {
	registry, err := reporegistry.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checker := NewChecker(registry)

	dir := t.TempDir()
	if _, err := checker.CheckOne(reporegistry.Repository{ProjectID: "proj-1", WorktreePath: dir}); err == nil {
		t.Fatal("expected an error for a non-git directory")
	}
}

func TestCheckOne_HealthyRepoReportsNoIssues(t *testing.T) {
	registry, err := reporegistry.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checker := NewChecker(registry)

	dir := t.TempDir()
	initRepo(t, dir)

	issues, err := checker.CheckOne(reporegistry.Repository{ProjectID: "proj-1", WorktreePath: dir})
	if err != nil {
		t.Fatalf("CheckOne: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
}

func TestCheckOne_ReportsErroredLastSync(t *testing.T) {
	registry, err := reporegistry.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checker := NewChecker(registry)

	dir := t.TempDir()
	initRepo(t, dir)

	issues, err := checker.CheckOne(reporegistry.Repository{
		ProjectID:    "proj-1",
		WorktreePath: dir,
		LastSync:     reporegistry.SyncStatusError,
		LastError:    "push rejected",
	})
	if err != nil {
		t.Fatalf("CheckOne: %v", err)
	}

	found := false
	for _, issue := range issues {
		if issue.Type == IssueSyncErrored {
			found = true
		}
	}
	if !found {
		t.Errorf("issues = %+v, want an IssueSyncErrored", issues)
	}
}

func TestCheckAll_AggregatesAcrossRepositories(t *testing.T) {
	registryDir := t.TempDir()
	registry, err := reporegistry.New(registryDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checker := NewChecker(registry)

	healthyDir := t.TempDir()
	initRepo(t, healthyDir)
	if err := registry.Register(reporegistry.Repository{ProjectID: "healthy", WorktreePath: healthyDir}); err != nil {
		t.Fatalf("Register healthy: %v", err)
	}
	if err := registry.Register(reporegistry.Repository{ProjectID: "missing", WorktreePath: "/does/not/exist"}); err != nil {
		t.Fatalf("Register missing: %v", err)
	}

	issues, err := checker.CheckAll()
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}

	var sawMissing bool
	for _, issue := range issues {
		if issue.ProjectID == "missing" && issue.Type == IssueMissingWorktree {
			sawMissing = true
		}
	}
	if !sawMissing {
		t.Errorf("issues = %+v, want an IssueMissingWorktree for project \"missing\"", issues)
	}
}
