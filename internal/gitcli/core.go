package gitcli

import (
	"fmt"
	"os"
	"path/filepath"
)

// core.go holds the basic git plumbing operations: Init, Add, Commit
// (with identity), Push, Fetch, Config. Grounded on the teacher's
// internal/git/cli_core.go.

// Init initializes a git repository at the client's workdir.
func (c *Client) Init(bare bool) error {
	args := []string{"init"}
	if bare {
		args = append(args, "--bare")
	}
	_, err := c.run(args...)
	return err
}

// Add stages files.
func (c *Client) Add(files ...string) error {
	args := append([]string{"add"}, files...)
	_, err := c.run(args...)
	return err
}

// Identity is the author/committer identity attached to a commit
// (spec.md §4.4 step 7).
type Identity struct {
	Name  string
	Email string
}

// DefaultIdentity is used when no repository-level identity is configured
// (spec.md §4.4: "a deterministic default identifier distinguishable from
// human commits").
var DefaultIdentity = Identity{
	Name:  "docengine",
	Email: "docengine@localhost",
}

// CommitWithIdentity creates a commit authored and committed as identity.
func (c *Client) CommitWithIdentity(message string, identity Identity) (string, error) {
	args := []string{
		"-c", "user.name=" + identity.Name,
		"-c", "user.email=" + identity.Email,
		"commit", "-m", message,
	}
	if _, err := c.run(args...); err != nil {
		return "", err
	}
	return c.run("rev-parse", "HEAD")
}

// Commit creates a commit using whatever identity is already configured.
func (c *Client) Commit(message string) error {
	_, err := c.run("commit", "-m", message)
	return err
}

// Push pushes refspec to remote.
func (c *Client) Push(remote, refspec string) error {
	args := []string{"push"}
	if remote != "" {
		args = append(args, remote)
	}
	if refspec != "" {
		args = append(args, refspec)
	}
	_, err := c.run(args...)
	return err
}

// PushSetUpstream pushes branch to remote and records it as the upstream.
func (c *Client) PushSetUpstream(remote, branch string) error {
	_, err := c.run("push", "-u", remote, branch)
	return err
}

// Fetch fetches from remote.
func (c *Client) Fetch(remote string) error {
	_, err := c.run("fetch", remote)
	return err
}

// ConfigSet sets a git config value.
func (c *Client) ConfigSet(key, value string) error {
	_, err := c.run("config", key, value)
	return err
}

// ConfigGet reads a git config value.
func (c *Client) ConfigGet(key string) (string, error) {
	return c.run("config", "--get", key)
}

// SetSSHCommand configures core.sshCommand to use a specific identity file,
// used when internal/vault supplies a per-repository deploy key.
func (c *Client) SetSSHCommand(keyPath string) error {
	sshCmd := fmt.Sprintf("ssh -i %s -o IdentitiesOnly=yes", keyPath)
	return c.ConfigSet("core.sshCommand", sshCmd)
}

// GetRevList returns commits reachable from ref2 but not ref1.
func (c *Client) GetRevList(ref1, ref2 string) ([]string, error) {
	output, err := c.run("rev-list", fmt.Sprintf("%s..%s", ref1, ref2))
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return splitNonEmpty(output), nil
}

// InitBareRepo creates a bare repository at path, used by tests to stand up
// an upstream remote.
func InitBareRepo(path string) error {
	parentDir := filepath.Dir(path)
	if _, err := os.Stat(parentDir); os.IsNotExist(err) {
		return fmt.Errorf("parent directory does not exist: %s", parentDir)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create bare repo directory: %w", err)
	}
	client := NewClient(path)
	return client.Init(true)
}

func splitNonEmpty(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
