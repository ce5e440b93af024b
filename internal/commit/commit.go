// Package commit implements the Commit Engine (spec.md §4.4, component C4):
// the sole path by which a document's bytes reach the working tree and are
// durably recorded as a Git commit. It always writes via a temp-file-then-
// rename, stages exactly the affected path, and commits under the identity
// the Engine was constructed with and a canonical message, returning
// NoChange rather than an empty commit when content is byte-identical to
// what is committed at HEAD.
package commit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lcgerke/docengine/internal/branch"
	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/gitcli"
	"github.com/lcgerke/docengine/internal/pathpolicy"
)

// Verb distinguishes the two canonical message forms of spec.md §4.4.
type Verb string

const (
	VerbAdd    Verb = "add"
	VerbUpdate Verb = "update"
)

// Result describes the outcome of a successful Write.
type Result struct {
	// CommitHash is empty when NoChange is true.
	CommitHash string
	// NoChange is true when the write produced no diff against HEAD and no
	// commit was created (spec.md §4.4 edge case).
	NoChange bool
	Verb     Verb
}

// Engine performs atomic document writes and commits for a single worktree.
type Engine struct {
	client   *gitcli.Client
	worktree string
	identity gitcli.Identity
	coord    *branch.Coordinator
}

// New creates an Engine rooted at worktree, committing under identity, and
// enforcing coord's docs branch (spec.md §4.4 step 1: writes are only
// accepted while HEAD is on the docs branch). Pass gitcli.DefaultIdentity
// when no repository-specific identity is configured.
func New(client *gitcli.Client, worktree string, identity gitcli.Identity, coord *branch.Coordinator) *Engine {
	return &Engine{client: client, worktree: worktree, identity: identity, coord: coord}
}

// Write validates relativePath, writes content atomically, stages it, and
// commits with the canonical message "docs: add <path>" or "docs: update
// <path>" depending on whether the file previously existed. If the staged
// diff is empty (content is byte-identical to what's already committed),
// Write returns a Result with NoChange true and performs no commit
// (spec.md §4.4 step 8, at-most-once semantics). Write fails with
// docerrors.KindWrongBranch, without touching the filesystem, when the
// worktree's current branch is not the configured docs branch (spec.md §4.4
// step 1, testable property 3, scenario S3).
func (e *Engine) Write(relativePath string, content []byte) (Result, error) {
	onDocsBranch, err := e.coord.IsDocsBranch()
	if err != nil {
		return Result{}, err
	}
	if !onDocsBranch {
		return Result{}, docerrors.New(docerrors.KindWrongBranch, "current branch is not the docs branch")
	}

	normalized, err := pathpolicy.Check(relativePath)
	if err != nil {
		return Result{}, err
	}

	absPath := filepath.Join(e.worktree, filepath.FromSlash(normalized.RelativePath))
	_, statErr := os.Stat(absPath)
	existed := statErr == nil

	if err := atomicWrite(absPath, content); err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to write document", err)
	}

	if err := e.client.Add(normalized.RelativePath); err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to stage document", err)
	}

	staged, err := e.client.StagedFiles()
	if err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to inspect staged files", err)
	}
	if !contains(staged, normalized.RelativePath) {
		// Content is byte-identical to the current index/HEAD entry: `git
		// add` staged nothing, so there is nothing to commit.
		return Result{NoChange: true}, nil
	}

	verb := VerbUpdate
	if !existed {
		verb = VerbAdd
	}
	message := fmt.Sprintf("docs: %s %s", verb, normalized.RelativePath)

	hash, err := e.client.CommitWithIdentity(message, e.identity)
	if err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to commit document", err)
	}

	return Result{CommitHash: hash, Verb: verb}, nil
}

// CreateFile is Write constrained to the creation case (spec.md §6
// "create_file"): it fails with docerrors.KindAlreadyExists, without
// touching the filesystem, if relativePath already names a document.
// Otherwise it behaves exactly like Write, including the WrongBranch check.
func (e *Engine) CreateFile(relativePath string, initialContent []byte) (Result, error) {
	onDocsBranch, err := e.coord.IsDocsBranch()
	if err != nil {
		return Result{}, err
	}
	if !onDocsBranch {
		return Result{}, docerrors.New(docerrors.KindWrongBranch, "current branch is not the docs branch")
	}

	normalized, err := pathpolicy.Check(relativePath)
	if err != nil {
		return Result{}, err
	}

	absPath := filepath.Join(e.worktree, filepath.FromSlash(normalized.RelativePath))
	if _, statErr := os.Stat(absPath); statErr == nil {
		return Result{}, docerrors.WithPath(docerrors.New(docerrors.KindAlreadyExists, "document already exists"), normalized.RelativePath)
	}

	return e.Write(relativePath, initialContent)
}

// atomicWrite writes content to path via a temp file in the same directory
// followed by an atomic rename, so a crash mid-write never leaves a
// partially-written document visible (spec.md §4.4 step 1-2).
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docengine-write-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename into place: %w", err)
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
