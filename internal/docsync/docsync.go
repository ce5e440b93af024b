// Package docsync implements the Sync Engine (spec.md §4.5, component C5):
// reporting how a docs branch diverges from its upstream and bringing it up
// to date via fetch, optional rebase, and push. Every mutating sync runs
// under the Concurrency Arbiter, so it is serialized with other holders of
// the same project lock; commit.Engine.Write does not acquire that lock.
package docsync

import (
	"context"
	"time"

	"github.com/lcgerke/docengine/internal/arbiter"
	"github.com/lcgerke/docengine/internal/branch"
	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/gitcli"
)

// Status is a Sync Status snapshot (spec.md §3).
type Status struct {
	Branch      string
	Upstream    string
	Ahead       int
	Behind      int
	// NeedsRebase is true when the upstream has commits the local branch
	// lacks: a plain push would be rejected.
	NeedsRebase bool
	// WorkingTreeClean is true when there are no staged, unstaged, or
	// untracked changes (spec.md §3 "can_sync").
	WorkingTreeClean bool
	// OnDocsBranch is true when the current branch is the docs branch being
	// synced (spec.md §3 "can_sync").
	OnDocsBranch bool
	// CanSync is true when a sync() call without allow_rebase would
	// succeed: the working tree and index are clean, the current branch is
	// the docs branch, and either there is nothing to push or a
	// fast-forward push is sufficient.
	CanSync bool
}

// Outcome describes the result of a successful Sync.
type Outcome struct {
	Rebased bool
	Pushed  bool
	Ahead   int
	Behind  int
}

// Engine performs sync status checks and mutations for a single repository.
type Engine struct {
	client     *gitcli.Client
	arb        *arbiter.Arbiter
	projectID  string
	remote     string
	sshKeyPath string
}

// New creates an Engine. remote is the configured upstream remote name
// (spec.md §3 "Upstream", typically "origin").
func New(client *gitcli.Client, arb *arbiter.Arbiter, projectID, remote string) *Engine {
	return &Engine{client: client, arb: arb, projectID: projectID, remote: remote}
}

// WithSSHKey configures Engine to push using the deploy key at keyPath
// (internal/vault.Client.DownloadSSHKey's return value) instead of whatever
// SSH identity the ambient environment would otherwise select.
func (e *Engine) WithSSHKey(keyPath string) *Engine {
	e.sshKeyPath = keyPath
	return e
}

// Status fetches from the remote (non-mutating to local branches) and
// reports how branchName compares to its upstream, along with whether the
// working tree is clean and HEAD is actually on branchName — both required
// for CanSync to be true (spec.md §3 "can_sync").
func (e *Engine) Status(branchName string) (Status, error) {
	if !e.client.HasUpstream(branchName) {
		return Status{}, docerrors.New(docerrors.KindSyncPreconditionFailed, "branch has no configured upstream")
	}

	if err := e.client.FetchRemote(e.remote); err != nil {
		return Status{}, docerrors.Wrap(docerrors.KindRemoteUnreachable, "failed to fetch upstream", err)
	}

	upstream, err := e.client.Upstream(branchName)
	if err != nil {
		return Status{}, docerrors.Wrap(docerrors.KindSyncPreconditionFailed, "failed to resolve upstream ref", err)
	}

	ahead, behind, err := e.client.AheadBehind(branchName, upstream)
	if err != nil {
		return Status{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to compare branch with upstream", err)
	}

	clean, err := e.client.IsWorkingTreeClean()
	if err != nil {
		return Status{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to inspect working tree", err)
	}

	onDocsBranch, err := branch.New(e.client, branchName).IsDocsBranch()
	if err != nil {
		return Status{}, err
	}

	return Status{
		Branch:           branchName,
		Upstream:         upstream,
		Ahead:            ahead,
		Behind:           behind,
		NeedsRebase:      behind > 0,
		WorkingTreeClean: clean,
		OnDocsBranch:     onDocsBranch,
		CanSync:          behind == 0 && clean && onDocsBranch,
	}, nil
}

// Sync brings branchName up to date with its upstream and pushes local
// commits.
//
//   - If the working tree or index is dirty, or the current branch is not
//     branchName, it fails with SyncPreconditionFailed without mutating
//     anything (spec.md §3 "can_sync").
//   - If the branch is not behind, it pushes directly (fast-forward).
//   - If the branch is behind and allowRebase is false, it fails with
//     RebaseRequired without mutating anything (spec.md §4.5 step 3).
//   - If the branch is behind and allowRebase is true, it rebases onto the
//     upstream (aborting and returning the original error on conflict) and
//     then pushes.
//
// The whole operation runs under the project's Concurrency Arbiter lock, so
// it never overlaps another Sync (or any other holder of that lock) for the
// same project. commit.Engine.Write does not take the lock, so a write that
// runs concurrently is not excluded from the rebase window.
func (e *Engine) Sync(ctx context.Context, branchName string, allowRebase bool, lockTimeout time.Duration) (Outcome, error) {
	release, err := e.arb.Acquire(ctx, e.projectID, lockTimeout)
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	status, err := e.Status(branchName)
	if err != nil {
		return Outcome{}, err
	}

	if !status.OnDocsBranch {
		return Outcome{}, docerrors.New(docerrors.KindSyncPreconditionFailed, "current branch is not the docs branch")
	}
	if !status.WorkingTreeClean {
		return Outcome{}, docerrors.New(docerrors.KindSyncPreconditionFailed, "working tree or index has uncommitted changes")
	}

	if status.Behind > 0 && !allowRebase {
		return Outcome{}, docerrors.New(docerrors.KindRebaseRequired, "upstream has diverged; rebase required to sync")
	}

	rebased := false
	if status.Behind > 0 {
		if e.client.IsRebaseInProgress() {
			return Outcome{}, docerrors.New(docerrors.KindRebaseConflict, "a rebase is already in progress")
		}
		if err := e.client.RebaseOntoUpstream(status.Upstream); err != nil {
			return Outcome{}, docerrors.Wrap(docerrors.KindRebaseConflict, "rebase onto upstream failed", err)
		}
		rebased = true
	}

	pushed := false
	if status.Ahead > 0 || rebased {
		if e.sshKeyPath != "" {
			if err := e.client.SetSSHCommand(e.sshKeyPath); err != nil {
				return Outcome{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to configure deploy key", err)
			}
		}
		if err := e.client.Push(e.remote, branchName); err != nil {
			return Outcome{}, docerrors.Wrap(docerrors.KindRemoteUnreachable, "push failed", err)
		}
		pushed = true
	}

	finalAhead, finalBehind := status.Ahead, 0
	if rebased {
		finalAhead, finalBehind, err = e.client.AheadBehind(branchName, status.Upstream)
		if err != nil {
			return Outcome{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to re-check status after rebase", err)
		}
	}

	return Outcome{Rebased: rebased, Pushed: pushed, Ahead: finalAhead, Behind: finalBehind}, nil
}
