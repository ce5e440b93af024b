// Package remoteplatform checks whether a docs branch is protected on its
// hosting platform before the Sync Engine attempts a rebase and push
// (SPEC_FULL.md supplemented feature: a rebase-then-push against a
// protected branch with required status checks would otherwise fail late,
// mid-sync, instead of being reported up front).
//
// Grounded on the teacher's internal/remote.Platform interface and its
// GitHub implementation (internal/remote/github), trimmed to the one check
// this engine needs: branch protection. Repository-creation, default-branch
// mutation, and permission-escalation methods from the teacher's Platform
// interface have no place in a document sync engine that never creates or
// reconfigures repositories, so only the read-only protection query
// survives.
package remoteplatform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v58/github"
	"golang.org/x/oauth2"
)

// ProtectionRules mirrors the teacher's remote.ProtectionRules.
type ProtectionRules struct {
	Enabled             bool
	RequireReviews      bool
	RequireStatusChecks bool
	EnforceAdmins       bool
}

// Checker queries GitHub branch protection for one repository.
type Checker struct {
	client *github.Client
	owner  string
	repo   string
}

// NewChecker builds a Checker from a GitHub remote URL (SSH or HTTPS form),
// authenticating with a token resolved from GITHUB_TOKEN, then GH_TOKEN.
func NewChecker(remoteURL string) (*Checker, error) {
	owner, repo, err := parseGitHubURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub URL: %w", err)
	}

	token, err := resolveToken()
	if err != nil {
		return nil, fmt.Errorf("GitHub authentication required: %w", err)
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &Checker{client: github.NewClient(tc), owner: owner, repo: repo}, nil
}

func resolveToken() (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("no GitHub token found; set GITHUB_TOKEN or GH_TOKEN")
}

func parseGitHubURL(remoteURL string) (owner, repo string, err error) {
	if strings.HasPrefix(remoteURL, "git@github.com:") {
		parts := strings.TrimPrefix(remoteURL, "git@github.com:")
		parts = strings.TrimSuffix(parts, ".git")
		split := strings.Split(parts, "/")
		if len(split) != 2 {
			return "", "", fmt.Errorf("invalid SSH URL format")
		}
		return split[0], split[1], nil
	}

	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", "", err
	}
	if u.Host != "github.com" {
		return "", "", fmt.Errorf("not a GitHub URL: %s", u.Host)
	}

	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid GitHub path: %s", path)
	}
	return parts[0], parts[1], nil
}

// IsBranchProtected reports whether branch has any protection rule
// configured at all.
func (c *Checker) IsBranchProtected(ctx context.Context, branch string) (bool, error) {
	_, resp, err := c.client.Repositories.GetBranchProtection(ctx, c.owner, c.repo, branch)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check branch protection: %w", err)
	}
	return true, nil
}

// GetBranchProtection returns the full set of protection rules for branch.
func (c *Checker) GetBranchProtection(ctx context.Context, branch string) (ProtectionRules, error) {
	protection, resp, err := c.client.Repositories.GetBranchProtection(ctx, c.owner, c.repo, branch)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ProtectionRules{Enabled: false}, nil
		}
		return ProtectionRules{}, fmt.Errorf("failed to get branch protection: %w", err)
	}

	return ProtectionRules{
		Enabled:             true,
		RequireReviews:      protection.GetRequiredPullRequestReviews() != nil,
		RequireStatusChecks: protection.GetRequiredStatusChecks() != nil,
		EnforceAdmins:       protection.GetEnforceAdmins().Enabled,
	}, nil
}

// defaultCheckTimeout bounds how long a pre-sync protection check may take
// before the Sync Engine proceeds without it.
const defaultCheckTimeout = 5 * time.Second

// WarnIfRebaseRisky checks whether branch enforces required status checks
// or admin enforcement that a bare rebase-then-push could run afoul of, and
// returns a human-readable warning if so. It never blocks a sync — only
// informs the caller — since this engine does not special-case every
// possible branch protection policy.
func (c *Checker) WarnIfRebaseRisky(branch string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCheckTimeout)
	defer cancel()

	rules, err := c.GetBranchProtection(ctx, branch)
	if err != nil {
		return "", err
	}
	if !rules.Enabled {
		return "", nil
	}
	if rules.RequireStatusChecks || rules.EnforceAdmins {
		return fmt.Sprintf("branch %q is protected with required status checks or enforced admin rules; a rebase and push may be rejected by the platform even after a successful local rebase", branch), nil
	}
	return "", nil
}
