// Package eventlog implements the structured operation event log of
// spec.md §4.8 (part of component C8): each operation passed to Track or
// Record is recorded as a typed Event, retained in-memory, and fanned out
// to live subscribers. Operations that are not passed in are not recorded.
//
// Grounded on the teacher's internal/remote.Logger/LogOperation pattern
// (timed operation wrapper logging Starting/Completed/Failed), generalized
// from "remote API calls" to "any engine operation" and from ad hoc log
// lines to a typed, queryable, subscribable Event.
package eventlog

import (
	"log"
	"sync"
	"time"
)

// Outcome is the terminal state of a logged operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one recorded operation (spec.md §4.8:
// "(timestamp, repository_id, operation, outcome, duration_ms,
// affected_paths)").
type Event struct {
	Timestamp     time.Time
	RepositoryID  string
	Operation     string
	Outcome       Outcome
	DurationMS    int64
	AffectedPaths []string
	Err           error
}

// Log is an in-memory, subscribable record of engine Events. The zero value
// is not usable; construct with New.
type Log struct {
	mu          sync.Mutex
	events      []Event
	maxRetained int
	subscribers map[int]chan Event
	nextSubID   int
	stdlog      bool
}

// New creates a Log retaining at most maxRetained events (oldest evicted
// first). When stdlog is true, each event is also mirrored to the standard
// logger, matching the teacher's GITHELPER_LOG-gated behavior; when it is
// false, nothing is logged.
func New(maxRetained int, stdlog bool) *Log {
	if maxRetained <= 0 {
		maxRetained = 1000
	}
	return &Log{
		maxRetained: maxRetained,
		subscribers: make(map[int]chan Event),
		stdlog:      stdlog,
	}
}

// Record appends event to the log and notifies subscribers. Subscribers
// that are not ready to receive (a full channel buffer)
// simply miss the event rather than blocking the recording caller.
func (l *Log) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	if len(l.events) > l.maxRetained {
		l.events = l.events[len(l.events)-l.maxRetained:]
	}
	subs := make([]chan Event, 0, len(l.subscribers))
	for _, ch := range l.subscribers {
		subs = append(subs, ch)
	}
	l.mu.Unlock()

	if l.stdlog {
		if event.Outcome == OutcomeFailure {
			log.Printf("[docengine] %s repo=%s op=%s FAILED (%dms): %v",
				event.Timestamp.Format(time.RFC3339), event.RepositoryID, event.Operation, event.DurationMS, event.Err)
		} else {
			log.Printf("[docengine] %s repo=%s op=%s ok (%dms)",
				event.Timestamp.Format(time.RFC3339), event.RepositoryID, event.Operation, event.DurationMS)
		}
	}

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Track wraps fn, timing it and recording an Event on completion. It
// returns fn's error unchanged, so callers compose it transparently:
//
//	err := eventLog.Track("proj-1", "sync", []string{}, func() error {
//	    _, err := engine.Sync(ctx, branch, false, timeout)
//	    return err
//	})
func (l *Log) Track(repositoryID, operation string, affectedPaths []string, fn func() error) error {
	start := time.Now()
	err := fn()
	l.Record(Event{
		Timestamp:     start,
		RepositoryID:  repositoryID,
		Operation:     operation,
		Outcome:       outcomeOf(err),
		DurationMS:    time.Since(start).Milliseconds(),
		AffectedPaths: affectedPaths,
		Err:           err,
	})
	return err
}

func outcomeOf(err error) Outcome {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// Recent returns up to n of the most recently recorded events, oldest
// first.
func (l *Log) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}
	out := make([]Event, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

// ForRepository filters retained events by repository ID.
func (l *Log) ForRepository(repositoryID string) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Event
	for _, e := range l.events {
		if e.RepositoryID == repositoryID {
			out = append(out, e)
		}
	}
	return out
}

// Subscription is a live feed of Events as they are recorded.
type Subscription struct {
	Events <-chan Event
	cancel func()
}

// Close stops delivery to this subscription.
func (s *Subscription) Close() { s.cancel() }

// Subscribe returns a Subscription delivering every Event recorded after
// this call, buffered up to 32 events; under sustained backpressure,
// excess events are dropped rather than blocking Record.
func (l *Log) Subscribe() *Subscription {
	l.mu.Lock()
	id := l.nextSubID
	l.nextSubID++
	ch := make(chan Event, 32)
	l.subscribers[id] = ch
	l.mu.Unlock()

	return &Subscription{
		Events: ch,
		cancel: func() {
			l.mu.Lock()
			delete(l.subscribers, id)
			l.mu.Unlock()
		},
	}
}
