package config

import (
	"testing"
	"time"

	"github.com/lcgerke/docengine/internal/constants"
)

// newTestManager builds a Manager with only the disk-cache fields
// populated, since exercising the Vault-reachable path requires a live
// Vault server; GetProjectSettings's Vault branch is covered by the
// teacher's analogous config.Manager tests, not reproduced here.
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{
		cacheDir:    t.TempDir(),
		settingsTTL: constants.StatusCacheTTL,
		credTTL:     constants.CredentialCacheTTL,
	}
}

func TestCacheSettings_RoundTrip(t *testing.T) {
	mgr := newTestManager(t)

	settings := ProjectSettings{
		DocsBranch:     "docs",
		UpstreamRemote: "origin",
		IdentityName:   "docengine",
		IdentityEmail:  "docengine@localhost",
	}

	if err := mgr.cacheSettings("proj-1", settings); err != nil {
		t.Fatalf("cacheSettings: %v", err)
	}

	cached, err := mgr.loadCachedSettings("proj-1")
	if err != nil {
		t.Fatalf("loadCachedSettings: %v", err)
	}
	if cached.Settings != settings {
		t.Errorf("cached settings = %+v, want %+v", cached.Settings, settings)
	}
	if time.Since(cached.FetchedAt) > time.Second {
		t.Errorf("FetchedAt too old: %v", cached.FetchedAt)
	}
}

func TestLoadCachedSettings_MissingFile(t *testing.T) {
	mgr := newTestManager(t)

	if _, err := mgr.loadCachedSettings("never-cached"); err == nil {
		t.Fatal("expected an error loading a nonexistent cache entry")
	}
}

func TestSettingsCachePath_IsolatedPerProject(t *testing.T) {
	mgr := newTestManager(t)

	pathA := mgr.settingsCachePath("proj-a")
	pathB := mgr.settingsCachePath("proj-b")
	if pathA == pathB {
		t.Errorf("expected distinct cache paths, got %q for both", pathA)
	}
}

func TestTTLs_MatchSpecBounds(t *testing.T) {
	mgr := newTestManager(t)
	if mgr.settingsTTL != constants.StatusCacheTTL {
		t.Errorf("settingsTTL = %v, want %v", mgr.settingsTTL, constants.StatusCacheTTL)
	}
	if mgr.credTTL != constants.CredentialCacheTTL {
		t.Errorf("credTTL = %v, want %v", mgr.credTTL, constants.CredentialCacheTTL)
	}
}
