// Package reporegistry maps project identifiers to the Repository records
// the engine needs to operate on them (spec.md §3 "Repository"): worktree
// path, upstream remote URL, docs branch name, and the last known sync
// outcome. It is the durable side of engine state — everything else
// (branch status, ahead/behind counts) is recomputed from Git on demand.
//
// Grounded on the teacher's internal/state.Manager (YAML file under a lock,
// load-mutate-save), generalized from "one Git remote's sync status" to
// "this engine's per-project Repository record".
package reporegistry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lcgerke/docengine/internal/docerrors"
)

const defaultRegistryFile = "repositories.yaml"

// SyncStatus summarizes the last observed sync outcome for a repository,
// cached purely for display: the authoritative value is always recomputed
// via internal/docsync.Status.
type SyncStatus string

const (
	SyncStatusUnknown  SyncStatus = "unknown"
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusAhead    SyncStatus = "ahead"
	SyncStatusBehind   SyncStatus = "behind"
	SyncStatusDiverged SyncStatus = "diverged"
	SyncStatusError    SyncStatus = "error"
)

// Repository is one project's registry entry.
type Repository struct {
	ProjectID      string     `yaml:"project_id"`
	WorktreePath   string     `yaml:"worktree_path"`
	UpstreamURL    string     `yaml:"upstream_url"`
	UpstreamRemote string     `yaml:"upstream_remote"`
	DocsBranch     string     `yaml:"docs_branch"`
	Created        time.Time  `yaml:"created"`
	LastSync       SyncStatus `yaml:"last_sync,omitempty"`
	LastSyncAt     time.Time  `yaml:"last_sync_at,omitempty"`
	LastError      string     `yaml:"last_error,omitempty"`
}

type registryFile struct {
	Repositories map[string]*Repository `yaml:"repositories"`
}

// Registry is a YAML-file-backed, mutex-guarded store of Repository
// records.
type Registry struct {
	path string
	mu   sync.RWMutex
}

// New creates a Registry persisting to registryDir/repositories.yaml.
// registryDir defaults to "$HOME/.docengine" when empty.
func New(registryDir string) (*Registry, error) {
	if registryDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		registryDir = filepath.Join(home, ".docengine")
	}
	if err := os.MkdirAll(registryDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	return &Registry{path: filepath.Join(registryDir, defaultRegistryFile)}, nil
}

func (r *Registry) load() (*registryFile, error) {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		return &registryFile{Repositories: make(map[string]*Repository)}, nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
	}
	if file.Repositories == nil {
		file.Repositories = make(map[string]*Repository)
	}
	return &file, nil
}

func (r *Registry) save(file *registryFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	return os.WriteFile(r.path, data, 0644)
}

// Register adds or replaces a project's Repository record.
func (r *Registry) Register(repo Repository) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	if repo.Created.IsZero() {
		repo.Created = time.Now()
	}
	entry := repo
	file.Repositories[repo.ProjectID] = &entry
	return r.save(file)
}

// Get retrieves a project's Repository record.
func (r *Registry) Get(projectID string) (Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.load()
	if err != nil {
		return Repository{}, err
	}
	repo, ok := file.Repositories[projectID]
	if !ok {
		return Repository{}, docerrors.WithPath(docerrors.New(docerrors.KindRepositoryMissing, "no registered repository for this project"), projectID)
	}
	return *repo, nil
}

// List returns every registered Repository.
func (r *Registry) List() ([]Repository, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]Repository, 0, len(file.Repositories))
	for _, repo := range file.Repositories {
		out = append(out, *repo)
	}
	return out, nil
}

// Deregister removes a project's Repository record.
func (r *Registry) Deregister(projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	delete(file.Repositories, projectID)
	return r.save(file)
}

// UpdateSyncStatus records the outcome of the most recent sync attempt.
func (r *Registry) UpdateSyncStatus(projectID string, status SyncStatus, lastErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.load()
	if err != nil {
		return err
	}
	repo, ok := file.Repositories[projectID]
	if !ok {
		return docerrors.WithPath(docerrors.New(docerrors.KindRepositoryMissing, "no registered repository for this project"), projectID)
	}

	repo.LastSync = status
	repo.LastSyncAt = time.Now()
	repo.LastError = lastErr
	return r.save(file)
}
