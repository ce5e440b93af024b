// Package branch implements the Branch Coordinator (spec.md §4.3, component
// C3): enumerating branches, detecting the docs branch, and performing safe
// checkouts. It is built on internal/gitcli and never creates, renames, or
// deletes branches (spec.md §4.3 invariants).
package branch

import (
	"sort"

	"github.com/lcgerke/docengine/internal/docerrors"
	"github.com/lcgerke/docengine/internal/gitcli"
)

// Descriptor is a Branch Descriptor (spec.md §3): (name, is_current, is_remote).
type Descriptor struct {
	Name      string
	IsCurrent bool
	IsRemote  bool
}

// Coordinator wraps a gitcli.Client with the docs-branch-aware operations of
// spec.md §4.3.
type Coordinator struct {
	client     *gitcli.Client
	docsBranch string
}

// New creates a Coordinator over client, with docsBranch as the
// designated canonical documents branch (spec.md §3, "Docs Branch").
func New(client *gitcli.Client, docsBranch string) *Coordinator {
	return &Coordinator{client: client, docsBranch: docsBranch}
}

// DocsBranch returns the configured docs branch name.
func (co *Coordinator) DocsBranch() string {
	return co.docsBranch
}

// ListBranches returns all Branch Descriptors: local branches in
// alphabetical order first, then remote-tracking branches in alphabetical
// order (spec.md §4.3).
func (co *Coordinator) ListBranches() ([]Descriptor, error) {
	local, remote, err := co.client.ListBranches()
	if err != nil {
		return nil, docerrors.Wrap(docerrors.KindIoFailure, "failed to list branches", err)
	}

	current, err := co.CurrentBranch()
	currentName := ""
	if err == nil {
		currentName = current
	}

	sort.Strings(local)
	sort.Strings(remote)

	descriptors := make([]Descriptor, 0, len(local)+len(remote))
	for _, name := range local {
		descriptors = append(descriptors, Descriptor{
			Name:      name,
			IsCurrent: name == currentName,
			IsRemote:  false,
		})
	}
	for _, name := range remote {
		descriptors = append(descriptors, Descriptor{
			Name:      name,
			IsCurrent: false,
			IsRemote:  true,
		})
	}
	return descriptors, nil
}

// CurrentBranch returns the current branch name, or KindDetachedHead if HEAD
// is not a branch ref.
func (co *Coordinator) CurrentBranch() (string, error) {
	detached, err := co.client.IsDetachedHead()
	if err != nil {
		return "", docerrors.Wrap(docerrors.KindIoFailure, "failed to inspect HEAD", err)
	}
	if detached {
		return "", docerrors.New(docerrors.KindDetachedHead, "HEAD is not on a branch")
	}

	name, err := co.client.CurrentBranch()
	if err != nil {
		return "", docerrors.Wrap(docerrors.KindIoFailure, "failed to read current branch", err)
	}
	return name, nil
}

// IsDocsBranch reports whether the current branch equals the configured docs
// branch.
func (co *Coordinator) IsDocsBranch() (bool, error) {
	current, err := co.CurrentBranch()
	if err != nil {
		return false, err
	}
	return current == co.docsBranch, nil
}

// SwitchBranch transitions HEAD to name. A switch to the already-current
// branch is a no-op success (spec.md §9 Open Question, resolved in favor of
// no-op success). Fails with UncommittedChanges if the working tree or
// index is dirty, or UnknownBranch if name does not exist locally.
func (co *Coordinator) SwitchBranch(name string) error {
	current, err := co.CurrentBranch()
	if err == nil && current == name {
		return nil
	}
	// A DetachedHead current state is not itself fatal to switching away
	// from it; only dirtiness blocks the switch.

	if !co.client.BranchExists(name) {
		return docerrors.WithPath(docerrors.New(docerrors.KindUnknownBranch, "branch does not exist"), name)
	}

	clean, err := co.client.IsWorkingTreeClean()
	if err != nil {
		return docerrors.Wrap(docerrors.KindIoFailure, "failed to inspect working tree", err)
	}
	if !clean {
		return docerrors.New(docerrors.KindUncommittedChanges, "working tree or index has uncommitted changes")
	}

	if err := co.client.Checkout(name); err != nil {
		return docerrors.Wrap(docerrors.KindIoFailure, "checkout failed", err)
	}
	return nil
}
