package main

import (
	"fmt"
	"os"

	"github.com/lcgerke/docengine/internal/branch"
	"github.com/lcgerke/docengine/internal/constants"
	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/eventlog"
	"github.com/lcgerke/docengine/internal/gitcli"
	"github.com/lcgerke/docengine/internal/reporegistry"
	"github.com/lcgerke/docengine/internal/ui"
)

// sharedEventLog records the docs write, docs create, and sync sync
// commands this process runs (branch switch is not recorded). It is
// process-local, like sharedArbiter: persisted cross-invocation history is
// out of scope, but a single invocation's operations (and any concurrent
// goroutines within it) still get a consistent, subscribable record.
var sharedEventLog = eventlog.New(1000, verboseLogging())

func verboseLogging() bool {
	return os.Getenv("DOCENGINE_LOG") != ""
}

// newOutput builds a ui.Output honoring the global --format/--no-color
// flags, matching the teacher's per-command output setup.
func newOutput() *ui.Output {
	out := ui.NewOutput(os.Stdout)
	if format != "" {
		out.SetFormat(ui.Format(format))
	}
	if noColor {
		out.SetColorEnabled(false)
	}
	return out
}

// openRegistry opens the default repository registry ("" defaults to
// $HOME/.docengine/repositories.yaml).
func openRegistry() (*reporegistry.Registry, error) {
	return reporegistry.New("")
}

// resolveRepo loads a project's Repository record and opens a gitcli.Client
// for its worktree.
func resolveRepo(projectID string) (reporegistry.Repository, *gitcli.Client, error) {
	registry, err := openRegistry()
	if err != nil {
		return reporegistry.Repository{}, nil, fmt.Errorf("failed to open repository registry: %w", err)
	}

	repo, err := registry.Get(projectID)
	if err != nil {
		return reporegistry.Repository{}, nil, err
	}

	client := gitcli.NewClient(repo.WorktreePath)
	if !client.IsRepository() {
		return reporegistry.Repository{}, nil, docerrors.WithPath(
			docerrors.New(docerrors.KindRepositoryMissing, "worktree is not a git repository"),
			repo.WorktreePath,
		)
	}
	return repo, client, nil
}

// identityFor returns gitcli.DefaultIdentity for every repo: Repository
// records carry no commit identity, so no per-repository identity is used.
func identityFor(repo reporegistry.Repository) gitcli.Identity {
	return gitcli.DefaultIdentity
}

// coordinatorFor builds a branch.Coordinator scoped to repo's docs branch,
// for commands (docs write, sync) that must enforce the WrongBranch/
// SyncPreconditionFailed invariants before mutating anything.
func coordinatorFor(repo reporegistry.Repository, client *gitcli.Client) *branch.Coordinator {
	return branch.New(client, docsBranchFor(repo))
}

// docsBranchFor returns repo's configured docs branch, or the engine
// default when unset.
func docsBranchFor(repo reporegistry.Repository) string {
	if repo.DocsBranch != "" {
		return repo.DocsBranch
	}
	return constants.DefaultDocsBranch
}

// upstreamRemoteFor returns repo's configured upstream remote, or the
// engine default when unset.
func upstreamRemoteFor(repo reporegistry.Repository) string {
	if repo.UpstreamRemote != "" {
		return repo.UpstreamRemote
	}
	return constants.DefaultUpstreamRemote
}
