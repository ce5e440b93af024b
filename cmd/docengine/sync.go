package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lcgerke/docengine/internal/arbiter"
	"github.com/lcgerke/docengine/internal/constants"
	"github.com/lcgerke/docengine/internal/docsync"
	"github.com/lcgerke/docengine/internal/reporegistry"
	"github.com/lcgerke/docengine/internal/vault"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Check and perform upstream sync",
}

var syncAllowRebase bool

var syncStatusCmd = &cobra.Command{
	Use:   "status <project-id>",
	Short: "Show how the docs branch compares to its upstream",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncStatus,
}

var syncSyncCmd = &cobra.Command{
	Use:   "sync <project-id>",
	Short: "Bring the docs branch up to date with its upstream and push",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncSync,
}

// sharedArbiter is process-local: each docengine invocation is a single
// short-lived command, so a concurrency arbiter only needs to serialize
// within this process, not across invocations (cross-process exclusion is
// provided by the underlying Git repository's own lock files).
var sharedArbiter = arbiter.New()

func init() {
	syncSyncCmd.Flags().BoolVar(&syncAllowRebase, "allow-rebase", false, "Rebase onto upstream if it has diverged")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncSyncCmd)
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	engine := docsync.New(client, sharedArbiter, repo.ProjectID, upstreamRemoteFor(repo))
	status, err := engine.Status(docsBranchFor(repo))
	if err != nil {
		return err
	}

	out.SyncStatus(status)
	return nil
}

func runSyncSync(cmd *cobra.Command, args []string) error {
	out := newOutput()
	repo, client, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	engine := docsync.New(client, sharedArbiter, repo.ProjectID, upstreamRemoteFor(repo))
	if keyPath, ok := deployKeyPath(repo.ProjectID); ok {
		engine.WithSSHKey(keyPath)
	}

	var outcome docsync.Outcome
	err = sharedEventLog.Track(repo.ProjectID, "sync.sync", nil, func() error {
		var syncErr error
		outcome, syncErr = engine.Sync(cmd.Context(), docsBranchFor(repo), syncAllowRebase, constants.DefaultLockTimeout)
		return syncErr
	})

	registry, regErr := openRegistry()
	if regErr == nil {
		if err != nil {
			_ = registry.UpdateSyncStatus(repo.ProjectID, reporegistry.SyncStatusError, err.Error())
		} else {
			status := reporegistry.SyncStatusSynced
			if outcome.Behind > 0 {
				status = reporegistry.SyncStatusBehind
			} else if outcome.Ahead > 0 {
				status = reporegistry.SyncStatusAhead
			}
			_ = registry.UpdateSyncStatus(repo.ProjectID, status, "")
		}
	}

	if err != nil {
		return err
	}

	if out.IsJSON() {
		out.JSON(outcome)
		return nil
	}

	if outcome.Rebased {
		out.Info("rebased onto upstream")
	}
	if outcome.Pushed {
		out.Success("pushed")
	} else {
		out.Info("nothing to push")
	}
	fmt.Printf("ahead: %d  behind: %d\n", outcome.Ahead, outcome.Behind)
	return nil
}

// deployKeyPath downloads projectID's deploy key from Vault if one is
// configured, returning its on-disk path. Absence of Vault or of a
// project-specific key is not an error: most repositories push with
// whatever ambient SSH agent or credential helper is already configured,
// and a deploy key is strictly opt-in per spec.md's optional push
// credentials.
func deployKeyPath(projectID string) (string, bool) {
	vaultClient, err := vault.NewClient(context.Background())
	if err != nil || !vaultClient.IsReachable() {
		return "", false
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	destDir := filepath.Join(home, ".docengine", "ssh")

	keyPath, err := vaultClient.DownloadSSHKey(projectID, destDir)
	if err != nil {
		return "", false
	}
	return keyPath, true
}
