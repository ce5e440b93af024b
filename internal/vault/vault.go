// Package vault retrieves per-repository push credentials (SSH deploy keys
// and personal access tokens) and project settings from HashiCorp Vault.
//
// Grounded on the teacher's internal/vault.Client, trimmed to the secret
// kinds this engine actually needs to push to a single upstream:
// the GitHub-config and repo-creation secrets the teacher reads
// (github_username, auto_create_github, ...) have no home in a document
// engine that never creates repositories, so only SSHKey/PAT and project
// settings retrieval survives.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

// SSHKey is a deploy key pair for pushing to a project's upstream.
type SSHKey struct {
	PrivateKey string
	PublicKey  string
}

// Client wraps the Vault API client, scoped to the secret paths this engine
// reads: "docengine/<project>/ssh", "docengine/<project>/pat", and
// "docengine/<project>/settings", falling back to "docengine/default_ssh",
// "docengine/default_pat", and "docengine/default_settings".
type Client struct {
	client *vaultapi.Client
	ctx    context.Context
}

// NewClient creates a Client using the standard VAULT_ADDR/VAULT_TOKEN
// environment configuration.
func NewClient(ctx context.Context) (*Client, error) {
	config := vaultapi.DefaultConfig()
	if config == nil {
		return nil, fmt.Errorf("failed to create default vault config")
	}

	raw, err := vaultapi.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	return &Client{client: raw, ctx: ctx}, nil
}

// IsReachable checks whether the Vault server responds to a health check.
func (c *Client) IsReachable() bool {
	ctx, cancel := context.WithTimeout(c.ctx, 2*time.Second)
	defer cancel()

	_, err := c.client.Sys().HealthWithContext(ctx)
	return err == nil
}

func (c *Client) getSecret(path string) (map[string]interface{}, error) {
	secret, err := c.client.KVv2("secret").Get(c.ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret at %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no data found at %s", path)
	}
	return secret.Data, nil
}

// ProjectSettings is the subset of per-project configuration this engine
// stores in Vault alongside credentials (docs branch name, upstream remote,
// commit identity).
type ProjectSettings struct {
	DocsBranch     string
	UpstreamRemote string
	IdentityName   string
	IdentityEmail  string
}

// GetProjectSettings reads projectID's settings, falling back to
// "docengine/default_settings" for any field Vault returns no value for.
func (c *Client) GetProjectSettings(projectID string) (ProjectSettings, error) {
	var settings ProjectSettings

	defaults, defaultsErr := c.getSecret("docengine/default_settings")

	var data map[string]interface{}
	if projectID != "" {
		if d, err := c.getSecret(fmt.Sprintf("docengine/%s/settings", projectID)); err == nil {
			data = d
		}
	}
	if data == nil {
		if defaultsErr != nil {
			return settings, fmt.Errorf("no settings found (tried project-specific and default): %w", defaultsErr)
		}
		data = defaults
	}

	if v, ok := data["docs_branch"].(string); ok {
		settings.DocsBranch = v
	} else if defaults != nil {
		if v, ok := defaults["docs_branch"].(string); ok {
			settings.DocsBranch = v
		}
	}
	if v, ok := data["upstream_remote"].(string); ok {
		settings.UpstreamRemote = v
	} else if defaults != nil {
		if v, ok := defaults["upstream_remote"].(string); ok {
			settings.UpstreamRemote = v
		}
	}
	if v, ok := data["identity_name"].(string); ok {
		settings.IdentityName = v
	} else if defaults != nil {
		if v, ok := defaults["identity_name"].(string); ok {
			settings.IdentityName = v
		}
	}
	if v, ok := data["identity_email"].(string); ok {
		settings.IdentityEmail = v
	} else if defaults != nil {
		if v, ok := defaults["identity_email"].(string); ok {
			settings.IdentityEmail = v
		}
	}

	return settings, nil
}

// GetSSHKey retrieves a deploy key for projectID, falling back to the
// default key when no repository-specific one is configured.
func (c *Client) GetSSHKey(projectID string) (*SSHKey, error) {
	if projectID != "" {
		data, err := c.getSecret(fmt.Sprintf("docengine/%s/ssh", projectID))
		if err == nil {
			return parseSSHKey(data)
		}
	}

	data, err := c.getSecret("docengine/default_ssh")
	if err != nil {
		return nil, fmt.Errorf("no SSH key found (tried project-specific and default): %w", err)
	}
	return parseSSHKey(data)
}

// GetPAT retrieves a personal access token for projectID, falling back to
// the default token.
func (c *Client) GetPAT(projectID string) (string, error) {
	if projectID != "" {
		data, err := c.getSecret(fmt.Sprintf("docengine/%s/pat", projectID))
		if err == nil {
			if token, ok := data["token"].(string); ok {
				return token, nil
			}
		}
	}

	data, err := c.getSecret("docengine/default_pat")
	if err != nil {
		return "", fmt.Errorf("no PAT found (tried project-specific and default): %w", err)
	}
	if token, ok := data["token"].(string); ok {
		return token, nil
	}
	return "", fmt.Errorf("PAT data missing 'token' field")
}

// DownloadSSHKey retrieves projectID's deploy key and writes the private
// (and, if present, public) key to destDir, returning the private key's
// path for use with gitcli.Client.SetSSHCommand.
func (c *Client) DownloadSSHKey(projectID, destDir string) (string, error) {
	sshKey, err := c.GetSSHKey(projectID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create SSH directory: %w", err)
	}

	keyName := "docengine_default"
	if projectID != "" {
		keyName = fmt.Sprintf("docengine_%s", projectID)
	}

	privateKeyPath := filepath.Join(destDir, keyName)
	if err := os.WriteFile(privateKeyPath, []byte(sshKey.PrivateKey), 0600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}

	if sshKey.PublicKey != "" {
		publicKeyPath := filepath.Join(destDir, keyName+".pub")
		_ = os.WriteFile(publicKeyPath, []byte(sshKey.PublicKey), 0644)
	}

	return privateKeyPath, nil
}

func parseSSHKey(data map[string]interface{}) (*SSHKey, error) {
	privateKey, ok := data["private_key"].(string)
	if !ok {
		return nil, fmt.Errorf("SSH key data missing 'private_key' field")
	}
	key := &SSHKey{PrivateKey: privateKey}
	if publicKey, ok := data["public_key"].(string); ok {
		key.PublicKey = publicKey
	}
	return key, nil
}
