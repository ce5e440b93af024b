package gitcli

import (
	"context"
	"fmt"
	"strings"

	"github.com/lcgerke/docengine/internal/constants"
)

// branch.go contains branch operations: CurrentBranch, BranchHash,
// RemoteBranchHash, ListBranches, IsAncestor, DefaultBranchOf.
// Grounded on the teacher's internal/git/cli_branch.go.

// CurrentBranch returns the current branch name. On a detached HEAD it
// returns the literal "HEAD" without error; callers use IsDetachedHead to
// detect that case and map it to DetachedHead.
func (c *Client) CurrentBranch() (string, error) {
	return c.run("rev-parse", "--abbrev-ref", "HEAD")
}

// IsDetachedHead reports whether HEAD is not a branch ref.
func (c *Client) IsDetachedHead() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.BranchOperationTimeout)
	defer cancel()

	_, err := c.runWithContext(ctx, "symbolic-ref", "-q", "HEAD")
	if err != nil {
		if cmdErr, ok := err.(*CommandError); ok && cmdErr.ExitCode() == 1 {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// BranchHash returns the commit hash for a local branch.
func (c *Client) BranchHash(branch string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.BranchOperationTimeout)
	defer cancel()
	return c.runWithContext(ctx, "rev-parse", branch)
}

// RemoteBranchHash returns the commit hash for a remote-tracking branch.
// Absence on the remote is not an error: it returns "".
func (c *Client) RemoteBranchHash(remote, branch string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.BranchOperationTimeout)
	defer cancel()

	ref := fmt.Sprintf("%s/%s", remote, branch)
	output, err := c.runWithContext(ctx, "rev-parse", ref)
	if err != nil {
		return "", nil
	}
	return output, nil
}

// ListBranches returns local and remote-tracking branch names.
func (c *Client) ListBranches() (local, remote []string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultOperationTimeout)
	defer cancel()

	localOut, err := c.runWithContext(ctx, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, nil, err
	}
	if localOut != "" {
		local = strings.Split(localOut, "\n")
	}

	remoteOut, err := c.runWithContext(ctx, "branch", "-r", "--format=%(refname:short)")
	if err != nil {
		return nil, nil, err
	}
	if remoteOut != "" {
		remote = strings.Split(remoteOut, "\n")
	}

	return local, remote, nil
}

// IsAncestor checks whether commit1 is an ancestor of commit2.
func (c *Client) IsAncestor(commit1, commit2 string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	_, err := c.runWithContext(ctx, "merge-base", "--is-ancestor", commit1, commit2)
	if err == nil {
		return true, nil
	}
	if cmdErr, ok := err.(*CommandError); ok && cmdErr.ExitCode() == 1 {
		return false, nil
	}
	return false, err
}

// Checkout switches HEAD to an existing local branch. It does not create,
// stash, or discard anything — the caller (internal/branch) is responsible
// for verifying the working tree is clean first.
func (c *Client) Checkout(branch string) error {
	_, err := c.run("checkout", branch)
	return err
}

// BranchExists reports whether a local branch exists.
func (c *Client) BranchExists(branch string) bool {
	_, err := c.run("show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// DefaultBranchOf determines the default branch for a remote, trying the
// local cache first and falling back to a network round trip, then to
// conventional names (spec.md §9 mirrors the teacher's resilience here).
func (c *Client) DefaultBranchOf(remote string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "symbolic-ref", fmt.Sprintf("refs/remotes/%s/HEAD", remote))
	if err == nil && output != "" {
		parts := strings.Split(output, "/")
		if len(parts) > 0 {
			return parts[len(parts)-1], nil
		}
	}

	output, err = c.runWithContext(ctx, "remote", "show", remote)
	if err == nil {
		for _, line := range strings.Split(output, "\n") {
			if strings.Contains(line, "HEAD branch:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "HEAD branch:")), nil
			}
		}
	}

	if _, err := c.runWithContext(ctx, "rev-parse", "--verify", "refs/heads/"+constants.DefaultDocsBranch); err == nil {
		return constants.DefaultDocsBranch, nil
	}
	if _, err := c.runWithContext(ctx, "rev-parse", "--verify", "refs/heads/"+constants.MasterBranch); err == nil {
		return constants.MasterBranch, nil
	}

	return "", fmt.Errorf("could not determine default branch for remote %s", remote)
}
