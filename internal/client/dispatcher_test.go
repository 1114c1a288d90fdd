package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kreqo/mytasks/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory TaskAPI with controllable failure and latency.
type fakeAPI struct {
	mu        sync.Mutex
	tasks     []services.Task
	nextID    uint64
	listCalls int

	listErr   error
	createErr error
	toggleErr error
	deleteErr error

	// When set, Create blocks until the channel is closed.
	createGate chan struct{}
}

func newFakeAPI(seedTitles ...string) *fakeAPI {
	f := &fakeAPI{}
	for _, title := range seedTitles {
		f.nextID++
		f.tasks = append(f.tasks, services.Task{
			ID:        f.nextID,
			Title:     title,
			CreatedAt: "2026-01-01 00:00:00",
		})
	}
	return f
}

func (f *fakeAPI) List(context.Context) ([]services.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]services.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeAPI) Create(_ context.Context, title string) error {
	f.mu.Lock()
	gate := f.createGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	f.tasks = append(f.tasks, services.Task{
		ID:        f.nextID,
		Title:     title,
		CreatedAt: "2026-01-01 00:00:00",
	})
	return nil
}

func (f *fakeAPI) SetCompleted(_ context.Context, id uint64, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return f.toggleErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = completed
			return nil
		}
	}
	return services.ErrTaskNotFound
}

func (f *fakeAPI) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tasks = kept
	return nil
}

func (f *fakeAPI) snapshot() []services.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]services.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *fakeAPI) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

var _ TaskAPI = (*fakeAPI)(nil)

func TestDispatcher_SubmitReturnsImmediately(t *testing.T) {
	api := newFakeAPI()
	api.createGate = make(chan struct{})
	d := NewDispatcher(api)

	start := time.Now()
	m := d.SubmitCreate("Buy milk")
	require.Less(t, time.Since(start), 100*time.Millisecond)

	assert.Equal(t, StatePending, m.State())
	assert.Equal(t, uint64(0), d.ListVersion())

	close(api.createGate)
	<-m.Done()
	assert.Equal(t, StateConfirmed, m.State())
	assert.NoError(t, m.Err())
}

func TestDispatcher_ExactlyOneTerminalTransition(t *testing.T) {
	api := newFakeAPI()
	d := NewDispatcher(api)

	m := d.SubmitCreate("Buy milk")
	<-m.Done()

	// finish is idempotent: a second call must not re-close Done or
	// overwrite the state.
	m.finish(errors.New("late failure"))
	assert.Equal(t, StateConfirmed, m.State())
	assert.NoError(t, m.Err())
}

func TestDispatcher_FailureMapsToFailedState(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errors.New("store down")
	d := NewDispatcher(api)

	m := d.SubmitCreate("Buy milk")
	<-m.Done()
	d.Wait()

	assert.Equal(t, StateFailed, m.State())
	assert.EqualError(t, m.Err(), "store down")

	// The failure still counts as a terminal transition.
	assert.Equal(t, uint64(1), d.ListVersion())

	// TakeFailure surfaces the error once.
	assert.EqualError(t, d.TakeFailure(), "store down")
	assert.NoError(t, d.TakeFailure())
}

func TestDispatcher_VersionCounterAsymmetry(t *testing.T) {
	api := newFakeAPI("seeded")
	d := NewDispatcher(api)

	m := d.SubmitToggle(1, true)
	<-m.Done()
	d.Wait()

	assert.Equal(t, uint64(0), d.ListVersion(), "toggles must not gate the list refetch")
	assert.Equal(t, uint64(1), d.ToggleVersion())

	m = d.SubmitDelete(1)
	<-m.Done()
	d.Wait()

	assert.Equal(t, uint64(1), d.ListVersion())
	assert.Equal(t, uint64(1), d.ToggleVersion())
}

func TestDispatcher_PendingCreatesInSubmissionOrder(t *testing.T) {
	api := newFakeAPI()
	api.createGate = make(chan struct{})
	d := NewDispatcher(api)

	d.SubmitCreate("first")
	d.SubmitCreate("second")
	d.SubmitCreate("third")

	pending := d.PendingCreates()
	require.Len(t, pending, 3)
	assert.Equal(t, "first", pending[0].Title)
	assert.Equal(t, "second", pending[1].Title)
	assert.Equal(t, "third", pending[2].Title)

	close(api.createGate)
	d.Wait()

	assert.Empty(t, d.PendingCreates())
}

func TestDispatcher_NoLostVersionIncrements(t *testing.T) {
	const mutations = 32

	api := newFakeAPI()
	d := NewDispatcher(api)

	var wg sync.WaitGroup
	for i := 0; i < mutations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.SubmitCreate("concurrent")
		}()
	}
	wg.Wait()
	d.Wait()

	// Two mutations confirming simultaneously must both land their bump.
	assert.Equal(t, uint64(mutations), d.ListVersion())
	assert.Len(t, api.snapshot(), mutations)
}

func TestDispatcher_SubscriberNotifiedOnTerminal(t *testing.T) {
	api := newFakeAPI()
	d := NewDispatcher(api)

	ch := d.Subscribe()
	defer d.Unsubscribe(ch)

	m := d.SubmitCreate("Buy milk")
	<-m.Done()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified of the terminal transition")
	}
	assert.Equal(t, uint64(1), d.ListVersion())
}
