package gitcli

import "strings"

// remote.go contains single-remote configuration operations, trimmed down
// from the teacher's dual-push-oriented internal/git/cli_remote.go: this
// engine's Sync Status (spec.md §3) models exactly one upstream per docs
// branch, so only the primitives needed to point that one remote at a URL
// survive.

// AddRemote adds a remote.
func (c *Client) AddRemote(name, url string) error {
	_, err := c.run("remote", "add", name, url)
	return err
}

// RemoveRemote removes a remote.
func (c *Client) RemoveRemote(name string) error {
	_, err := c.run("remote", "remove", name)
	return err
}

// SetURL sets the fetch URL for a remote.
func (c *Client) SetURL(remote, url string) error {
	_, err := c.run("remote", "set-url", remote, url)
	return err
}

// GetRemoteURL gets the fetch URL for a remote.
func (c *Client) GetRemoteURL(remote string) (string, error) {
	return c.run("remote", "get-url", remote)
}

// ListRemotes lists configured remote names.
func (c *Client) ListRemotes() ([]string, error) {
	output, err := c.run("remote")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}
