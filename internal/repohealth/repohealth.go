// Package repohealth implements the doctor diagnostics (SPEC_FULL.md
// supplemented feature: "repository health check"), scanning a project's
// repository for issues an operator would otherwise only discover mid-sync
// or mid-commit.
//
// Grounded on the teacher's internal/autofix.Fixer (DetectIssues/FixIssue
// scan-then-remediate shape), generalized from "GitHub needs sync" /
// "missing git hooks" to this engine's own concerns: stale or errored sync
// status, orphaned submodules, missing LFS tracking for large binaries, and
// a missing worktree directory. Issues that require a network operation
// (a sync) are reported, never auto-fixed, matching the teacher's own
// "requires manual intervention" treatment of its needs_sync issue.
package repohealth

import (
	"fmt"
	"os"

	"github.com/lcgerke/docengine/internal/docsync"
	"github.com/lcgerke/docengine/internal/gitcli"
	"github.com/lcgerke/docengine/internal/reporegistry"
)

// Severity ranks how urgently an Issue needs attention.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IssueType identifies the kind of problem detected.
type IssueType string

const (
	IssueMissingWorktree    IssueType = "missing_worktree"
	IssueNotGitRepo         IssueType = "not_git_repo"
	IssueOrphanedSubmodule  IssueType = "orphaned_submodule"
	IssueUntrackedLargeFile IssueType = "untracked_large_file"
	IssueSyncBehind         IssueType = "sync_behind"
	IssueSyncErrored        IssueType = "sync_errored"
)

// Issue is one diagnostic finding for a single project.
type Issue struct {
	Type        IssueType
	Description string
	ProjectID   string
	Severity    Severity
}

// largeFileThresholdBytes flags blobs at or above 50MB, matching the
// teacher's own large-binary warning threshold.
const largeFileThresholdBytes = 50 * 1024 * 1024

// Checker scans registered repositories for health issues.
type Checker struct {
	registry *reporegistry.Registry
}

// NewChecker creates a Checker over registry.
func NewChecker(registry *reporegistry.Registry) *Checker {
	return &Checker{registry: registry}
}

// CheckAll scans every registered project and returns all issues found.
// A per-project scan failure is folded into an Issue rather than aborting
// the whole scan, so one broken repository doesn't hide problems in others.
func (c *Checker) CheckAll() ([]Issue, error) {
	repos, err := c.registry.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list registered repositories: %w", err)
	}

	var issues []Issue
	for _, repo := range repos {
		found, err := c.CheckOne(repo)
		if err != nil {
			issues = append(issues, Issue{
				Type:        IssueNotGitRepo,
				Description: err.Error(),
				ProjectID:   repo.ProjectID,
				Severity:    SeverityHigh,
			})
			continue
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

// CheckWorktree verifies that path exists and is a git repository, without
// requiring a registered Repository record. internal/worktreesync calls this
// before propagating documents into a destination worktree, so a missing or
// non-git destination fails with a clear diagnostic instead of a confusing
// mid-copy I/O error.
func CheckWorktree(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("worktree directory not found: %s", path)
	}
	if !gitcli.NewClient(path).IsRepository() {
		return fmt.Errorf("%s exists but is not a git repository", path)
	}
	return nil
}

// CheckOne scans a single registered repository.
func (c *Checker) CheckOne(repo reporegistry.Repository) ([]Issue, error) {
	if _, err := os.Stat(repo.WorktreePath); os.IsNotExist(err) {
		return []Issue{{
			Type:        IssueMissingWorktree,
			Description: fmt.Sprintf("worktree directory not found: %s", repo.WorktreePath),
			ProjectID:   repo.ProjectID,
			Severity:    SeverityHigh,
		}}, nil
	}

	client := gitcli.NewClient(repo.WorktreePath)
	if !client.IsRepository() {
		return nil, fmt.Errorf("%s exists but is not a git repository", repo.WorktreePath)
	}

	var issues []Issue

	orphans, err := client.GetOrphanedSubmodules()
	if err == nil {
		for _, o := range orphans {
			issues = append(issues, Issue{
				Type:        IssueOrphanedSubmodule,
				Description: fmt.Sprintf("gitlink %s (%s) has no entry in .gitmodules", o.Path, o.Hash),
				ProjectID:   repo.ProjectID,
				Severity:    SeverityMedium,
			})
		}
	}

	if large, err := client.ScanLargeBinaries(largeFileThresholdBytes); err == nil {
		for _, b := range large {
			issues = append(issues, Issue{
				Type:        IssueUntrackedLargeFile,
				Description: fmt.Sprintf("blob %s is %.1fMB; consider Git LFS", b.SHA1, b.SizeMB),
				ProjectID:   repo.ProjectID,
				Severity:    SeverityLow,
			})
		}
	}

	if repo.DocsBranch != "" && repo.UpstreamRemote != "" {
		syncEngine := docsync.New(client, nil, repo.ProjectID, repo.UpstreamRemote)
		if status, err := syncEngineStatus(syncEngine, repo.DocsBranch); err == nil {
			if status.Behind > 0 {
				issues = append(issues, Issue{
					Type:        IssueSyncBehind,
					Description: fmt.Sprintf("branch %s is %d commit(s) behind %s", repo.DocsBranch, status.Behind, status.Upstream),
					ProjectID:   repo.ProjectID,
					Severity:    SeverityMedium,
				})
			}
		}
	}

	if repo.LastSync == reporegistry.SyncStatusError {
		issues = append(issues, Issue{
			Type:        IssueSyncErrored,
			Description: fmt.Sprintf("last sync failed: %s", repo.LastError),
			ProjectID:   repo.ProjectID,
			Severity:    SeverityMedium,
		})
	}

	return issues, nil
}

// syncEngineStatus calls Status directly: docsync.Engine.Status performs no
// locking or mutation, so it is safe to call with a nil Arbiter here (the
// doctor scan never calls Sync).
func syncEngineStatus(e *docsync.Engine, branch string) (docsync.Status, error) {
	return e.Status(branch)
}
