package client

import (
	"context"
	"sync"

	"github.com/kreqo/mytasks/internal/services"
)

// Entry is one row of the reconciled view. A pending entry is a synthetic
// placeholder for a create that has not confirmed: it has no id and no
// owner, and the UI renders it disabled.
type Entry struct {
	Task    services.Task
	Pending bool
}

// Snapshot is the display-ready state: the merged entry list plus the most
// recent error, surfaced alongside (never instead of) the last-known-good
// list.
type Snapshot struct {
	Entries []Entry
	Err     error
}

// View maintains the reconciled task list. It refetches the authoritative
// list edge-triggered on the dispatcher's list version, never on a timer,
// and overlays optimistic toggles locally and immediately.
type View struct {
	api        TaskAPI
	dispatcher *Dispatcher

	mu        sync.Mutex
	confirmed []services.Task
	lastErr   error

	seenListVersion uint64

	sub  chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewView creates a View subscribed to the dispatcher and starts its
// observation loop.
func NewView(api TaskAPI, dispatcher *Dispatcher) *View {
	v := &View{
		api:        api,
		dispatcher: dispatcher,
		sub:        dispatcher.Subscribe(),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go v.loop()
	return v
}

func (v *View) loop() {
	defer close(v.done)
	for {
		select {
		case <-v.sub:
			v.observe()
		case <-v.stop:
			return
		}
	}
}

// observe runs once per dispatcher notification. A failed mutation is
// surfaced; the list is refetched only when the list version actually
// advanced since the last fetch, so toggle confirmations do not trigger
// round trips.
func (v *View) observe() {
	if err := v.dispatcher.TakeFailure(); err != nil {
		v.mu.Lock()
		v.lastErr = err
		v.mu.Unlock()
	}

	current := v.dispatcher.ListVersion()
	v.mu.Lock()
	stale := current != v.seenListVersion
	v.mu.Unlock()
	if stale {
		v.refetch(current)
	}
}

// refetch replaces the confirmed list with the authoritative one. On
// failure the last-known-good list is kept and the error surfaced; a
// transient read failure must not blank the UI. The version is recorded
// either way so a failed refetch is retried on the next edge, not in a
// loop.
func (v *View) refetch(version uint64) {
	tasks, err := v.api.List(context.Background())

	v.mu.Lock()
	defer v.mu.Unlock()
	v.seenListVersion = version
	if err != nil {
		v.lastErr = err
		return
	}
	v.confirmed = tasks
	v.lastErr = nil
}

// Refresh fetches the authoritative list immediately. Used for the initial
// load, before any mutation has bumped a version.
func (v *View) Refresh(ctx context.Context) error {
	tasks, err := v.api.List(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.lastErr = err
		return err
	}
	v.confirmed = tasks
	v.lastErr = nil
	return nil
}

// ApplyToggle flips the completed flag of the matching confirmed entry
// locally and immediately, independent of the refetch cycle. There is no
// rollback on failure: the server state wins on the next refetch.
func (v *View) ApplyToggle(id uint64, completed bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.confirmed {
		if v.confirmed[i].ID == id {
			v.confirmed[i].Completed = completed
			return
		}
	}
}

// Snapshot returns the merged, duplicate-free view: the confirmed list in
// storage order followed by one synthetic entry per still-pending create.
// Pending entries are never matched to confirmed rows by title; they leave
// the view only when their mutation leaves Pending, so a confirmed row and
// its pending placeholder may coexist momentarily until the next refetch.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	entries := make([]Entry, 0, len(v.confirmed))
	for _, t := range v.confirmed {
		entries = append(entries, Entry{Task: t})
	}
	err := v.lastErr
	v.mu.Unlock()

	for _, m := range v.dispatcher.PendingCreates() {
		entries = append(entries, Entry{
			Task:    services.Task{Title: m.Title},
			Pending: true,
		})
	}

	return Snapshot{Entries: entries, Err: err}
}

// Close stops the observation loop and detaches from the dispatcher.
func (v *View) Close() {
	close(v.stop)
	<-v.done
	v.dispatcher.Unsubscribe(v.sub)
}
