package gitcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lcgerke/docengine/internal/constants"
)

// status.go contains status and detection operations: IsRepository,
// RepositoryRoot, IsShallowClone, StagedFiles, UnstagedFiles,
// UntrackedFiles, ConflictFiles, GetOrphanedSubmodules.
// Grounded on the teacher's internal/git/cli_status.go.

// IsRepository reports whether the client's workdir is inside a git repository.
func (c *Client) IsRepository() bool {
	_, err := c.run("rev-parse", "--git-dir")
	return err == nil
}

// RepositoryRoot returns the top-level working tree path, usable from any
// subdirectory of the repository.
func (c *Client) RepositoryRoot() (string, bool) {
	if c.workdir == "" {
		return "", false
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = c.workdir
	output, err := cmd.Output()
	if err == nil {
		return strings.TrimSpace(string(output)), true
	}

	cmd = exec.Command("git", "rev-parse", "--is-bare-repository")
	cmd.Dir = c.workdir
	output, err = cmd.Output()
	if err == nil && strings.TrimSpace(string(output)) == "true" {
		return c.workdir, true
	}

	return "", false
}

// IsShallowClone reports whether the repository is a shallow clone.
func (c *Client) IsShallowClone() (bool, error) {
	shallowPath := filepath.Join(c.workdir, ".git", "shallow")
	_, err := os.Stat(shallowPath)
	return err == nil, nil
}

// IsWorkingTreeClean reports whether there are no staged, unstaged, or
// untracked changes (spec.md §4.3 "UncommittedChanges", §4.5 "can_sync").
func (c *Client) IsWorkingTreeClean() (bool, error) {
	staged, err := c.StagedFiles()
	if err != nil {
		return false, err
	}
	if len(staged) > 0 {
		return false, nil
	}

	unstaged, err := c.UnstagedFiles()
	if err != nil {
		return false, err
	}
	if len(unstaged) > 0 {
		return false, nil
	}

	untracked, err := c.UntrackedFiles()
	if err != nil {
		return false, err
	}
	return len(untracked) == 0, nil
}

// StagedFiles returns files staged in the index.
func (c *Client) StagedFiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// UnstagedFiles returns files with unstaged modifications.
func (c *Client) UnstagedFiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "diff", "--name-only")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// UntrackedFiles returns untracked files not covered by .gitignore.
func (c *Client) UntrackedFiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// ConflictFiles returns files with unresolved merge conflicts.
func (c *Client) ConflictFiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// OrphanedSubmodule is a submodule registered in the Git index (a gitlink,
// mode 160000) that has no corresponding entry in .gitmodules.
type OrphanedSubmodule struct {
	Path string
	Hash string
}

// GetOrphanedSubmodules detects gitlinks in the index missing from
// .gitmodules — a corrupt .gitmodules can otherwise confuse worktree
// propagation (SPEC_FULL.md's repohealth check).
func (c *Client) GetOrphanedSubmodules() ([]OrphanedSubmodule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "ls-files", "--stage")
	if err != nil {
		return nil, err
	}

	var orphaned []OrphanedSubmodule
	if output == "" {
		return orphaned, nil
	}

	var gitlinks []OrphanedSubmodule
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 4 && parts[0] == "160000" {
			gitlinks = append(gitlinks, OrphanedSubmodule{Path: parts[3], Hash: parts[1]})
		}
	}

	for _, gitlink := range gitlinks {
		_, err := c.run("config", "--file", ".gitmodules", "--get", fmt.Sprintf("submodule.%s.path", gitlink.Path))
		if err != nil {
			orphaned = append(orphaned, gitlink)
		}
	}

	return orphaned, nil
}
