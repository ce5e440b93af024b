// Package config supplies per-project engine configuration (docs branch
// name, upstream remote, commit identity) and push credentials, backed by
// HashiCorp Vault with a local disk cache for resilience to Vault outages.
//
// Grounded on the teacher's internal/config.Manager (Vault-first,
// disk-cache-fallback, TTL-gated staleness): project settings are cached for
// at most constants.StatusCacheTTL (they gate sync correctness, so staleness
// must track spec.md §5's 5-second bound). Credentials are not cached: every
// GetSSHKey/GetPAT call reads Vault, and fails when Vault is unreachable.
// The Manager stores constants.CredentialCacheTTL but does not consult it.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lcgerke/docengine/internal/constants"
	"github.com/lcgerke/docengine/internal/vault"
)

// ProjectSettings is the per-project configuration this engine reads from
// Vault (spec.md §3 "Repository" attributes the operator can override).
type ProjectSettings struct {
	DocsBranch     string `json:"docs_branch"`
	UpstreamRemote string `json:"upstream_remote"`
	IdentityName   string `json:"identity_name"`
	IdentityEmail  string `json:"identity_email"`
}

// cachedSettings is ProjectSettings plus the time it was fetched, persisted
// to disk so a Vault outage still leaves usable (if possibly stale)
// configuration.
type cachedSettings struct {
	Settings  ProjectSettings `json:"settings"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Manager reads ProjectSettings and credentials from Vault, caching the
// settings (not the credentials) to cacheDir on disk.
type Manager struct {
	vaultClient *vault.Client
	cacheDir    string
	settingsTTL time.Duration
	credTTL     time.Duration
}

// NewManager creates a Manager. cacheDir defaults to
// "$HOME/.docengine/cache" when empty.
func NewManager(ctx context.Context, cacheDir string) (*Manager, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".docengine", "cache")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	vaultClient, err := vault.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	return &Manager{
		vaultClient: vaultClient,
		cacheDir:    cacheDir,
		settingsTTL: constants.StatusCacheTTL,
		credTTL:     constants.CredentialCacheTTL,
	}, nil
}

// GetProjectSettings retrieves settings for projectID from Vault, falling
// back to the on-disk cache (subject to settingsTTL) if Vault is
// unreachable. The bool return is true when the value came from cache.
func (m *Manager) GetProjectSettings(projectID string) (ProjectSettings, bool, error) {
	if m.vaultClient.IsReachable() {
		settings, err := m.fetchSettings(projectID)
		if err == nil {
			_ = m.cacheSettings(projectID, settings)
			return settings, false, nil
		}
	}

	cached, err := m.loadCachedSettings(projectID)
	if err != nil {
		return ProjectSettings{}, false, fmt.Errorf("vault unreachable and no valid cache for %s: %w", projectID, err)
	}

	age := time.Since(cached.FetchedAt)
	if age > m.settingsTTL {
		return cached.Settings, true, fmt.Errorf("cached settings for %s are stale (%s old, TTL is %s)", projectID, age, m.settingsTTL)
	}
	return cached.Settings, true, nil
}

// GetSSHKey retrieves a deploy key for projectID. Never served from cache:
// a stale key either works (harmless) or fails loudly at push time, and
// this engine prefers loud failure to a silently outdated credential.
func (m *Manager) GetSSHKey(projectID string) (*vault.SSHKey, error) {
	if !m.vaultClient.IsReachable() {
		return nil, fmt.Errorf("vault unreachable (SSH keys are never cached)")
	}
	return m.vaultClient.GetSSHKey(projectID)
}

// GetPAT retrieves a personal access token for projectID, never cached.
func (m *Manager) GetPAT(projectID string) (string, error) {
	if !m.vaultClient.IsReachable() {
		return "", fmt.Errorf("vault unreachable (PATs are never cached)")
	}
	return m.vaultClient.GetPAT(projectID)
}

// IsVaultReachable reports Vault server health.
func (m *Manager) IsVaultReachable() bool {
	return m.vaultClient.IsReachable()
}

func (m *Manager) fetchSettings(projectID string) (ProjectSettings, error) {
	settings, err := m.vaultClient.GetProjectSettings(projectID)
	if err != nil {
		return ProjectSettings{}, err
	}
	return ProjectSettings{
		DocsBranch:     settings.DocsBranch,
		UpstreamRemote: settings.UpstreamRemote,
		IdentityName:   settings.IdentityName,
		IdentityEmail:  settings.IdentityEmail,
	}, nil
}

func (m *Manager) cacheSettings(projectID string, settings ProjectSettings) error {
	cached := cachedSettings{Settings: settings, FetchedAt: time.Now()}
	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return os.WriteFile(m.settingsCachePath(projectID), data, 0644)
}

func (m *Manager) loadCachedSettings(projectID string) (cachedSettings, error) {
	data, err := os.ReadFile(m.settingsCachePath(projectID))
	if err != nil {
		return cachedSettings{}, fmt.Errorf("failed to read cache: %w", err)
	}
	var cached cachedSettings
	if err := json.Unmarshal(data, &cached); err != nil {
		return cachedSettings{}, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	return cached, nil
}

func (m *Manager) settingsCachePath(projectID string) string {
	return filepath.Join(m.cacheDir, fmt.Sprintf("settings-%s.json", projectID))
}
