// Package arbiter implements the Concurrency Arbiter (spec.md §4.7,
// component C7): a per-repository lock serializing mutating operations
// while letting reads proceed unlocked.
//
// Grounded on the channel-as-semaphore pattern from the retrieval pack's
// worktree lock helper (_examples/other_examples,
// internal-worktree-lock.go): a buffered channel of capacity 1 acts as a
// mutex that supports context-based timeout on acquisition, registered per
// canonical repository path. spec.md §9 asks for this to be an explicit
// engine handle rather than a package-level singleton, so here it is a
// constructed *Arbiter with its own registry instead of a package var.
package arbiter

import (
	"context"
	"sync"
	"time"

	"github.com/lcgerke/docengine/internal/docerrors"
)

// Arbiter serializes mutating operations per project identifier.
type Arbiter struct {
	mu    sync.Mutex
	locks map[string]*repoLock
}

// New creates an empty Arbiter.
func New() *Arbiter {
	return &Arbiter{locks: make(map[string]*repoLock)}
}

type repoLock struct {
	sem chan struct{}
}

func newRepoLock() *repoLock {
	return &repoLock{sem: make(chan struct{}, 1)}
}

func (a *Arbiter) lockFor(projectID string) *repoLock {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[projectID]
	if !ok {
		l = newRepoLock()
		a.locks[projectID] = l
	}
	return l
}

// Release ends a held lock.
type Release func()

// Acquire blocks until the lock for projectID is held, ctx is canceled, or
// timeout elapses, whichever comes first. On success it returns a Release
// function that MUST be called exactly once. On failure it returns
// docerrors.KindBusy (timeout) or docerrors.KindCanceled (context
// cancellation) — spec.md §4.7 and §7.
//
// Cancellation before acquisition releases any queued position without side
// effects (spec.md §4.7): the select below simply never sends on sem.
func (a *Arbiter) Acquire(ctx context.Context, projectID string, timeout time.Duration) (Release, error) {
	l := a.lockFor(projectID)

	acquireCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-acquireCtx.Done():
		if ctx.Err() != nil && ctx.Err() != context.DeadlineExceeded {
			return nil, docerrors.Wrap(docerrors.KindCanceled, "lock acquisition canceled", ctx.Err())
		}
		return nil, docerrors.Wrap(docerrors.KindBusy, "timed out waiting for repository lock", acquireCtx.Err())
	}
}

// TryAcquire attempts to acquire the lock without blocking, returning
// (nil, false) if it is already held.
func (a *Arbiter) TryAcquire(projectID string) (Release, bool) {
	l := a.lockFor(projectID)
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, true
	default:
		return nil, false
	}
}

// Forget removes a project's lock registration, e.g. once a repository is
// deregistered from internal/reporegistry. It must only be called when the
// lock is not held; callers are expected to hold it briefly via Acquire to
// verify nothing is in flight before calling Forget.
func (a *Arbiter) Forget(projectID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.locks, projectID)
}
