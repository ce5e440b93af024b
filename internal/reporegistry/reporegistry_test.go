package reporegistry

import (
	"testing"

	"github.com/lcgerke/docengine/internal/docerrors"
)

func TestRegisterAndGet(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	repo := Repository{
		ProjectID:      "proj-1",
		WorktreePath:   "/repos/proj-1",
		UpstreamURL:    "git@example.com:org/proj-1.git",
		UpstreamRemote: "origin",
		DocsBranch:     "main",
	}
	if err := reg.Register(repo); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := reg.Get("proj-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.WorktreePath != repo.WorktreePath || got.DocsBranch != repo.DocsBranch {
		t.Errorf("got = %+v, want %+v", got, repo)
	}
	if got.Created.IsZero() {
		t.Error("expected Created to be set")
	}
}

func TestGet_Missing(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = reg.Get("does-not-exist")
	if err == nil {
		t.Fatal("expected an error for an unregistered project")
	}
	kind, ok := docerrors.KindOf(err)
	if !ok || kind != docerrors.KindRepositoryMissing {
		t.Errorf("kind = %v, want RepositoryMissing", kind)
	}
}

func TestList_ReturnsAllRegistered(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, id := range []string{"proj-a", "proj-b", "proj-c"} {
		if err := reg.Register(Repository{ProjectID: id}); err != nil {
			t.Fatalf("Register %s: %v", id, err)
		}
	}

	repos, err := reg.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(repos) != 3 {
		t.Fatalf("got %d repositories, want 3", len(repos))
	}
}

func TestDeregister_RemovesEntry(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := reg.Register(Repository{ProjectID: "proj-1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Deregister("proj-1"); err != nil {
		t.Fatalf("Deregister: %v", err)
	}

	if _, err := reg.Get("proj-1"); err == nil {
		t.Fatal("expected an error after deregistration")
	}
}

func TestUpdateSyncStatus(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := reg.Register(Repository{ProjectID: "proj-1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := reg.UpdateSyncStatus("proj-1", SyncStatusBehind, ""); err != nil {
		t.Fatalf("UpdateSyncStatus: %v", err)
	}

	got, err := reg.Get("proj-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastSync != SyncStatusBehind {
		t.Errorf("LastSync = %v, want Behind", got.LastSync)
	}
	if got.LastSyncAt.IsZero() {
		t.Error("expected LastSyncAt to be set")
	}
}

func TestUpdateSyncStatus_MissingProject(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = reg.UpdateSyncStatus("missing", SyncStatusError, "boom")
	if err == nil {
		t.Fatal("expected an error updating a missing project")
	}
}
