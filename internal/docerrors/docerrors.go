// Package docerrors defines the document engine's error taxonomy (spec.md §7).
//
// Every exported engine failure is returned as a *Error so callers can
// switch on Kind without parsing strings. This mirrors the teacher's
// internal/errors.GitHelperError, generalized from a free-form Type string
// to the closed Kind enum spec.md §7 requires, plus an optional Path.
package docerrors

import "fmt"

// Kind is a stable, machine-readable error classification.
type Kind string

// Path errors
const (
	KindInvalidPath     Kind = "InvalidPath"
	KindUnsupportedType Kind = "UnsupportedType"
	KindNotFound        Kind = "NotFound"
	KindAlreadyExists   Kind = "AlreadyExists"
)

// Branch errors
const (
	KindDetachedHead      Kind = "DetachedHead"
	KindUnknownBranch     Kind = "UnknownBranch"
	KindUncommittedChanges Kind = "UncommittedChanges"
	KindWrongBranch       Kind = "WrongBranch"
)

// Concurrency errors
const (
	KindBusy        Kind = "Busy"
	KindLockNotHeld Kind = "LockNotHeld"
	KindCanceled    Kind = "Canceled"
)

// Sync errors
const (
	KindSyncPreconditionFailed Kind = "SyncPreconditionFailed"
	KindRebaseRequired         Kind = "RebaseRequired"
	KindRebaseConflict         Kind = "RebaseConflict"
	KindRemoteUnreachable      Kind = "RemoteUnreachable"
)

// Integrity errors
const (
	KindIoFailure        Kind = "IoFailure"
	KindGitObjectCorrupt Kind = "GitObjectCorrupt"
	KindEncodingNotUtf8  Kind = "EncodingNotUtf8"
)

// Repository errors (host-level, not in spec.md §7 but needed to satisfy
// the `list` operation's documented RepositoryMissing error, spec.md §6).
const (
	KindRepositoryMissing Kind = "RepositoryMissing"
)

// Error is a structured, typed engine failure.
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Message, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error around an existing cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithPath attaches the offending path to an error.
func WithPath(err *Error, path string) *Error {
	err.Path = path
	return err
}

// WithHint attaches a remediation hint to an error.
func WithHint(err *Error, hint string) *Error {
	err.Hint = hint
	return err
}

// UserFacingMessage renders the message plus hint, for consumers that want
// a single string (spec.md §7: "renderers live in the consumer" — this is
// the minimal building block a renderer can use, not a renderer itself).
func (e *Error) UserFacingMessage() string {
	if e.Hint == "" {
		return e.Message
	}
	return e.Message + "\n\nSuggestion: " + e.Hint
}

// Is supports errors.Is comparisons keyed on Kind, so callers can write
// errors.Is(err, docerrors.New(docerrors.KindBusy, "")) in tests without
// matching the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, and the
// ok=false zero value otherwise.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if err == nil {
		return "", false
	}
	if e, ok := err.(*Error); ok {
		de = e
	} else if u, ok := err.(interface{ Unwrap() error }); ok {
		return KindOf(u.Unwrap())
	}
	if de == nil {
		return "", false
	}
	return de.Kind, true
}
