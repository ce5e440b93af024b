package gitcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lcgerke/docengine/internal/constants"
)

// sync.go contains the primitives the Sync Engine (C5) composes: ahead/behind
// counting, fetch, rebase, and push. Grounded on the teacher's
// internal/git/divergence.go (CheckDivergence/countCommits, generalized from
// "bare vs GitHub remote" to "local branch vs configured upstream") and
// internal/git/cli_advanced.go (CanReachRemote, FetchRemote).

// CountCommitsBetween counts commits reachable from ref1 but not ref2
// (`git rev-list --count ref1 ^ref2`).
func (c *Client) CountCommitsBetween(ref1, ref2 string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultOperationTimeout)
	defer cancel()

	output, err := c.runWithContext(ctx, "rev-list", "--count", ref1, "^"+ref2)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(output)
	if err != nil {
		return 0, fmt.Errorf("invalid commit count output: %q", output)
	}
	return count, nil
}

// AheadBehind returns how many commits localRef has that upstreamRef
// doesn't (ahead), and vice versa (behind).
func (c *Client) AheadBehind(localRef, upstreamRef string) (ahead, behind int, err error) {
	ahead, err = c.CountCommitsBetween(localRef, upstreamRef)
	if err != nil {
		return 0, 0, err
	}
	behind, err = c.CountCommitsBetween(upstreamRef, localRef)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// CanReachRemote tests reachability of a remote without mutating local state.
func (c *Client) CanReachRemote(remote string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.QuickOperationTimeout)
	defer cancel()

	_, err := c.runWithContext(ctx, "ls-remote", "--exit-code", remote, "HEAD")
	return err == nil
}

// FetchRemote fetches from remote with tags, bounded by DefaultFetchTimeout.
// Non-mutating to local branches (spec.md §4.5: "non-mutating to local
// branches").
func (c *Client) FetchRemote(remote string) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultFetchTimeout)
	defer cancel()

	_, err := c.runWithContext(ctx, "fetch", remote, "--tags")
	return err
}

// HasUpstream reports whether branch has a configured upstream tracking ref.
func (c *Client) HasUpstream(branch string) bool {
	_, err := c.run("rev-parse", "--abbrev-ref", branch+"@{upstream}")
	return err == nil
}

// Upstream returns the "<remote>/<branch>" upstream ref for branch.
func (c *Client) Upstream(branch string) (string, error) {
	return c.run("rev-parse", "--abbrev-ref", branch+"@{upstream}")
}

// RebaseOntoUpstream rebases the current branch onto upstreamRef. On
// conflict, it aborts the rebase and returns the original error so the
// repository is left exactly as it was (spec.md §4.5 step 4).
func (c *Client) RebaseOntoUpstream(upstreamRef string) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultFetchTimeout)
	defer cancel()

	_, err := c.runWithContext(ctx, "rebase", upstreamRef)
	if err != nil {
		_, _ = c.runWithContext(ctx, "rebase", "--abort")
		return err
	}
	return nil
}

// IsRebaseInProgress detects a half-finished rebase, used defensively before
// starting a new one.
func (c *Client) IsRebaseInProgress() bool {
	_, err := c.run("rev-parse", "--verify", "-q", "REBASE_HEAD")
	return err == nil
}

// AbortRebase aborts an in-progress rebase, restoring the pre-rebase state.
func (c *Client) AbortRebase() error {
	_, err := c.run("rebase", "--abort")
	return err
}

// GetCommit returns the commit SHA a ref resolves to.
func (c *Client) GetCommit(ref string) (string, error) {
	output, err := c.run("rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}
