package client

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher turns user intents into tracked mutations. Submission returns
// immediately; each mutation runs on its own goroutine to exactly one
// terminal state. Two version counters gate the view model's refetching:
// list-affecting mutations (create, delete) bump the list version, toggles
// bump their own counter and are instead applied optimistically by the
// view. Failures are reported, never retried.
type Dispatcher struct {
	api TaskAPI

	// Counters are atomic so two mutations confirming simultaneously both
	// land their increment.
	listVersion   atomic.Uint64
	toggleVersion atomic.Uint64

	mu             sync.Mutex
	pendingCreates []*Mutation
	lastFailure    error
	subs           map[chan struct{}]struct{}

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher submitting against api.
func NewDispatcher(api TaskAPI) *Dispatcher {
	return &Dispatcher{
		api:  api,
		subs: make(map[chan struct{}]struct{}),
	}
}

// SubmitCreate dispatches a create mutation and returns its handle.
func (d *Dispatcher) SubmitCreate(title string) *Mutation {
	m := newMutation(MutationCreate)
	m.Title = title

	d.mu.Lock()
	d.pendingCreates = append(d.pendingCreates, m)
	d.mu.Unlock()

	d.run(m, &d.listVersion, func(ctx context.Context) error {
		return d.api.Create(ctx, title)
	})
	return m
}

// SubmitToggle dispatches a completion toggle. Toggles confirm best-effort:
// they do not gate a list refetch because the caller has already applied
// the flip optimistically.
func (d *Dispatcher) SubmitToggle(id uint64, completed bool) *Mutation {
	m := newMutation(MutationToggle)
	m.TaskID = id
	m.Completed = completed

	d.run(m, &d.toggleVersion, func(ctx context.Context) error {
		return d.api.SetCompleted(ctx, id, completed)
	})
	return m
}

// SubmitDelete dispatches a delete mutation.
func (d *Dispatcher) SubmitDelete(id uint64) *Mutation {
	m := newMutation(MutationDelete)
	m.TaskID = id

	d.run(m, &d.listVersion, func(ctx context.Context) error {
		return d.api.Delete(ctx, id)
	})
	return m
}

// run executes the mutation to its terminal state. The version bump happens
// together with the terminal transition, before subscribers are notified,
// so an observer woken by the notification always sees the new version.
func (d *Dispatcher) run(m *Mutation, version *atomic.Uint64, call func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// Mutations are never cancelled once submitted.
		err := call(context.Background())
		m.finish(err)
		version.Add(1)

		d.mu.Lock()
		if err != nil {
			d.lastFailure = err
		}
		if m.Kind == MutationCreate {
			d.pruneCreatesLocked()
		}
		for ch := range d.subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		d.mu.Unlock()
	}()
}

func (d *Dispatcher) pruneCreatesLocked() {
	kept := d.pendingCreates[:0]
	for _, m := range d.pendingCreates {
		if m.State() == StatePending {
			kept = append(kept, m)
		}
	}
	d.pendingCreates = kept
}

// PendingCreates returns the still-pending create mutations in submission
// order.
func (d *Dispatcher) PendingCreates() []*Mutation {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Mutation, 0, len(d.pendingCreates))
	for _, m := range d.pendingCreates {
		if m.State() == StatePending {
			out = append(out, m)
		}
	}
	return out
}

// ListVersion returns the counter bumped by create/delete terminal
// transitions.
func (d *Dispatcher) ListVersion() uint64 {
	return d.listVersion.Load()
}

// ToggleVersion returns the counter bumped by toggle terminal transitions.
func (d *Dispatcher) ToggleVersion() uint64 {
	return d.toggleVersion.Load()
}

// TakeFailure returns and clears the most recent mutation failure, so the
// view can surface it once alongside the last-known-good list.
func (d *Dispatcher) TakeFailure() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.lastFailure
	d.lastFailure = nil
	return err
}

// Subscribe returns a channel signalled after every terminal transition.
// Notifications coalesce: a slow receiver sees at least one signal for any
// burst of transitions, which is sufficient because observers compare
// version counters rather than counting signals.
func (d *Dispatcher) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel.
func (d *Dispatcher) Unsubscribe(ch chan struct{}) {
	d.mu.Lock()
	delete(d.subs, ch)
	d.mu.Unlock()
}

// Wait blocks until every submitted mutation has reached a terminal state.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
