// Package remediation maps docerrors.Kind values to human-readable
// remediation hints (spec.md §4.8, part of component C8): what a caller can
// do about a failed operation.
//
// Grounded on the teacher's internal/scenarios Fix/ScenarioTable pattern
// (a lookup table of {id, description, command, priority}), trimmed sharply
// from that package's 41-scenario, five-dimension repository classifier
// down to a flat table keyed by this engine's docerrors.Kind taxonomy —
// there is no analogous multi-dimensional state here, just one error per
// failed operation.
package remediation

import "github.com/lcgerke/docengine/internal/docerrors"

// Hint is a suggested remediation for a failed operation (teacher's Fix,
// minus the AutoFixable/Operation machinery — this engine has no auto-fix
// executor, only advisory hints surfaced to the caller).
type Hint struct {
	Description string
	Command     string
	Priority    int // 1 = critical, 5 = informational
}

var table = map[docerrors.Kind]Hint{
	docerrors.KindInvalidPath: {
		Description: "the document path is empty, absolute, contains '..', or otherwise fails path policy",
		Command:     "use a relative path without '.', '..', or a leading '/'",
		Priority:    2,
	},
	docerrors.KindUnsupportedType: {
		Description: "only .md, .markdown, and .json documents are managed by this engine",
		Command:     "rename the file with a supported extension, or store it outside the managed tree",
		Priority:    3,
	},
	docerrors.KindNotFound: {
		Description: "the requested document does not exist at that path on the current branch",
		Command:     "list documents first to confirm the exact relative path",
		Priority:    2,
	},
	docerrors.KindAlreadyExists: {
		Description: "create_file was called for a path that already has a document",
		Command:     "use the update operation instead, or choose a different path",
		Priority:    2,
	},
	docerrors.KindDetachedHead: {
		Description: "the repository's HEAD is not on a branch",
		Command:     "git checkout <branch>",
		Priority:    1,
	},
	docerrors.KindUnknownBranch: {
		Description: "the named branch does not exist locally",
		Command:     "list branches to see available names; this engine never creates branches",
		Priority:    2,
	},
	docerrors.KindUncommittedChanges: {
		Description: "the working tree or index has changes that would be lost by switching branches",
		Command:     "commit or discard local changes before switching",
		Priority:    2,
	},
	docerrors.KindWrongBranch: {
		Description: "the requested operation requires being on the docs branch",
		Command:     "switch to the docs branch first",
		Priority:    2,
	},
	docerrors.KindBusy: {
		Description: "another operation is holding the repository lock",
		Command:     "retry after the in-flight operation completes, or increase the lock timeout",
		Priority:    3,
	},
	docerrors.KindLockNotHeld: {
		Description: "an operation that requires the repository lock was attempted without holding it",
		Command:     "acquire the lock via the concurrency arbiter before mutating the repository",
		Priority:    1,
	},
	docerrors.KindCanceled: {
		Description: "the calling context was canceled before the lock could be acquired",
		Command:     "retry with a context that outlives the expected wait",
		Priority:    4,
	},
	docerrors.KindSyncPreconditionFailed: {
		Description: "the branch has no configured or resolvable upstream, the working tree or index has uncommitted changes, or HEAD is not on the docs branch",
		Command:     "commit or discard local changes, switch to the docs branch, and set an upstream (git push -u) before syncing",
		Priority:    2,
	},
	docerrors.KindRebaseRequired: {
		Description: "the upstream has commits the local branch lacks, so a plain push would be rejected",
		Command:     "retry sync with allow_rebase=true",
		Priority:    2,
	},
	docerrors.KindRebaseConflict: {
		Description: "the rebase onto the upstream failed and was aborted; the branch is unchanged",
		Command:     "resolve the conflicting documents manually, or out of band of this engine",
		Priority:    1,
	},
	docerrors.KindRemoteUnreachable: {
		Description: "the upstream remote could not be fetched from or pushed to",
		Command:     "verify network connectivity and remote credentials",
		Priority:    2,
	},
	docerrors.KindIoFailure: {
		Description: "a local filesystem or git operation failed unexpectedly",
		Command:     "check disk space and repository permissions",
		Priority:    1,
	},
	docerrors.KindGitObjectCorrupt: {
		Description: "the git object database reports corruption",
		Command:     "run git fsck in the affected repository",
		Priority:    1,
	},
	docerrors.KindEncodingNotUtf8: {
		Description: "the document's bytes are not valid UTF-8 and cannot be indexed or read as text",
		Command:     "re-save the document as UTF-8, or exclude it from the managed tree",
		Priority:    3,
	},
	docerrors.KindRepositoryMissing: {
		Description: "the configured repository path is not a git working tree",
		Command:     "verify the repository registry entry points at a valid clone",
		Priority:    1,
	},
}

// For returns the remediation hint for kind, if one is known.
func For(kind docerrors.Kind) (Hint, bool) {
	hint, ok := table[kind]
	return hint, ok
}

// ForError extracts the error's Kind via docerrors.KindOf and returns its
// hint, if any.
func ForError(err error) (Hint, bool) {
	kind, ok := docerrors.KindOf(err)
	if !ok {
		return Hint{}, false
	}
	return For(kind)
}
