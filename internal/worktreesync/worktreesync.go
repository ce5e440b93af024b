// Package worktreesync implements the Worktree Propagator (spec.md §4.6,
// component C6): copying the current document set from the docs branch into
// a sibling task worktree and committing it there, so work happening on an
// unrelated branch sees the latest documents without switching away from
// that branch.
//
// Grounded on the tree-copy idea in the retrieval pack's worktree manager
// (_examples/other_examples, design-docs-worktree-manager.go) but
// reimplemented on top of internal/gitcli's shell-out client rather than
// go-git (see SPEC_FULL.md's rejection of go-git for the reasoning).
package worktreesync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/docindex"
	"github.com/lcgerke/docengine/internal/gitcli"
	"github.com/lcgerke/docengine/internal/repohealth"
)

// Result reports what a Propagate call did.
type Result struct {
	FilesSynced int
	CommitHash  string
	NoChange    bool
}

// Propagator copies documents from a source worktree (checked out to the
// docs branch) into a destination worktree (checked out to some other,
// unrelated branch) and commits the result there.
type Propagator struct {
	sourceWorktree string
	destClient     *gitcli.Client
	destWorktree   string
	docsBranch     string
	identity       gitcli.Identity
	ignoreDirs     map[string]bool
}

// New creates a Propagator. sourceWorktree must already be checked out to
// docsBranch; destClient operates on destWorktree, which may be checked out
// to any branch (spec.md §4.6: "the destination branch is never switched").
func New(sourceWorktree string, destClient *gitcli.Client, destWorktree, docsBranch string, identity gitcli.Identity) *Propagator {
	return &Propagator{
		sourceWorktree: sourceWorktree,
		destClient:     destClient,
		destWorktree:   destWorktree,
		docsBranch:     docsBranch,
		identity:       identity,
		ignoreDirs:     map[string]bool{},
	}
}

// Propagate enumerates the documents reachable from the source worktree,
// mirrors them into the destination worktree (creating, updating, and
// removing files as needed to match exactly), stages the result, and
// commits with the canonical message "docs: sync from <docsBranch>". If the
// destination's working tree already matches, no commit is made
// (spec.md §9 Open Question: the commit message is fixed, not
// parameterized).
func (p *Propagator) Propagate() (Result, error) {
	if err := repohealth.CheckWorktree(p.destWorktree); err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "destination worktree failed health check", err)
	}

	entries, err := docindex.Build(p.sourceWorktree, p.ignoreDirs)
	if err != nil {
		return Result{}, err
	}

	wanted := make(map[string]bool, len(entries))
	for _, entry := range entries {
		wanted[entry.RelativePath] = true

		content, err := docindex.ReadContent(p.sourceWorktree, entry.RelativePath)
		if err != nil {
			return Result{}, err
		}
		if err := copyIntoWorktree(p.destWorktree, entry.RelativePath, []byte(content)); err != nil {
			return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to copy document into destination worktree", err)
		}
	}

	destEntries, err := docindex.Build(p.destWorktree, p.ignoreDirs)
	if err != nil {
		return Result{}, err
	}
	for _, entry := range destEntries {
		if wanted[entry.RelativePath] {
			continue
		}
		full := filepath.Join(p.destWorktree, filepath.FromSlash(entry.RelativePath))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to remove stale document", err)
		}
	}

	if err := p.destClient.Add("."); err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to stage synced documents", err)
	}

	staged, err := p.destClient.StagedFiles()
	if err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to inspect staged files", err)
	}
	if len(staged) == 0 {
		return Result{FilesSynced: len(entries), NoChange: true}, nil
	}

	message := fmt.Sprintf("docs: sync from %s", p.docsBranch)
	hash, err := p.destClient.CommitWithIdentity(message, p.identity)
	if err != nil {
		return Result{}, docerrors.Wrap(docerrors.KindIoFailure, "failed to commit synced documents", err)
	}

	return Result{FilesSynced: len(entries), CommitHash: hash}, nil
}

func copyIntoWorktree(worktreeRoot, relativePath string, content []byte) error {
	full := filepath.Join(worktreeRoot, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".docengine-sync-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, full)
}
