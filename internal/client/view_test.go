package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, api TaskAPI) *Client {
	t.Helper()
	c := New(api)
	t.Cleanup(c.Close)
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func TestView_PendingCreateNoRegression(t *testing.T) {
	api := newFakeAPI("existing one", "existing two")
	api.createGate = make(chan struct{})
	c := newTestClient(t, api)

	c.SubmitCreate("Buy milk")

	// While the create is pending the visible list is authoritative + 1,
	// with the synthetic entry appended last.
	snapshot := c.ReconciledView()
	require.Len(t, snapshot.Entries, 3)
	assert.False(t, snapshot.Entries[0].Pending)
	assert.False(t, snapshot.Entries[1].Pending)
	assert.True(t, snapshot.Entries[2].Pending)
	assert.Equal(t, "Buy milk", snapshot.Entries[2].Task.Title)
	assert.Zero(t, snapshot.Entries[2].Task.ID, "pending entries have no id yet")
	assert.Nil(t, snapshot.Entries[2].Task.Owner)

	close(api.createGate)
	c.Wait()

	// After confirmation and the triggered refetch the list returns to
	// authoritative length, no duplicate for the created title.
	require.Eventually(t, func() bool {
		s := c.ReconciledView()
		if len(s.Entries) != 3 {
			return false
		}
		for _, e := range s.Entries {
			if e.Pending {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	snapshot = c.ReconciledView()
	count := 0
	for _, e := range snapshot.Entries {
		if e.Task.Title == "Buy milk" {
			count++
			assert.NotZero(t, e.Task.ID)
		}
	}
	assert.Equal(t, 1, count)
}

func TestView_RefetchIsEdgeTriggeredNotPolled(t *testing.T) {
	api := newFakeAPI("seeded")
	_ = newTestClient(t, api)

	calls := api.listCallCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, calls, api.listCallCount(), "no mutations, no refetches")
}

func TestView_ToggleIsOptimisticAndDoesNotRefetch(t *testing.T) {
	api := newFakeAPI("toggle me")
	c := newTestClient(t, api)

	calls := api.listCallCount()
	c.SubmitToggle(1, true)

	// The flip is visible immediately, before the server confirms.
	snapshot := c.ReconciledView()
	require.Len(t, snapshot.Entries, 1)
	assert.True(t, snapshot.Entries[0].Task.Completed)

	c.Wait()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, api.listCallCount(), "toggle terminals must not trigger refetches")

	// Server agrees once confirmed.
	assert.True(t, api.snapshot()[0].Completed)
}

func TestView_ToggleFailureSurfacedWithoutRollback(t *testing.T) {
	api := newFakeAPI("toggle me")
	api.toggleErr = errors.New("store down")
	c := newTestClient(t, api)

	c.SubmitToggle(1, true)
	c.Wait()

	require.Eventually(t, func() bool {
		return c.ReconciledView().Err != nil
	}, 2*time.Second, 10*time.Millisecond)

	snapshot := c.ReconciledView()
	assert.EqualError(t, snapshot.Err, "store down")
	// Inherited behavior: the optimistic flip is not rolled back.
	require.Len(t, snapshot.Entries, 1)
	assert.True(t, snapshot.Entries[0].Task.Completed)
}

func TestView_FailedRefetchKeepsLastKnownGood(t *testing.T) {
	api := newFakeAPI("keep me", "and me")
	c := newTestClient(t, api)

	api.mu.Lock()
	api.listErr = errors.New("read failure")
	api.mu.Unlock()

	m := c.SubmitDelete(1)
	<-m.Done()

	require.Eventually(t, func() bool {
		return c.ReconciledView().Err != nil
	}, 2*time.Second, 10*time.Millisecond)

	// A transient read failure must not blank the UI: the stale list stays
	// visible alongside the error.
	snapshot := c.ReconciledView()
	require.Len(t, snapshot.Entries, 2)
	assert.EqualError(t, snapshot.Err, "read failure")

	api.mu.Lock()
	api.listErr = nil
	api.mu.Unlock()

	// The next edge recovers.
	m = c.SubmitDelete(2)
	<-m.Done()
	require.Eventually(t, func() bool {
		s := c.ReconciledView()
		return s.Err == nil && len(s.Entries) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestView_ConvergenceAfterMixedMutations(t *testing.T) {
	api := newFakeAPI("one", "two", "three")
	c := newTestClient(t, api)

	c.SubmitCreate("four")
	c.SubmitToggle(2, true)
	c.SubmitDelete(1)
	c.SubmitCreate("five")
	c.Wait()

	// After every mutation is terminal and one refetch lands, the view
	// equals the store exactly: no residual pending entries, no phantoms.
	require.NoError(t, c.Refresh(context.Background()))

	snapshot := c.ReconciledView()
	authoritative := api.snapshot()
	require.Len(t, snapshot.Entries, len(authoritative))
	for i, entry := range snapshot.Entries {
		assert.False(t, entry.Pending)
		assert.Equal(t, authoritative[i].ID, entry.Task.ID)
		assert.Equal(t, authoritative[i].Title, entry.Task.Title)
		assert.Equal(t, authoritative[i].Completed, entry.Task.Completed)
	}
}

func TestView_PendingEntryNeverMergedByTitle(t *testing.T) {
	api := newFakeAPI("Buy milk")
	api.createGate = make(chan struct{})
	defer close(api.createGate)
	c := newTestClient(t, api)

	// A pending create with a title that already exists in the confirmed
	// list still renders as its own entry.
	c.SubmitCreate("Buy milk")

	snapshot := c.ReconciledView()
	require.Len(t, snapshot.Entries, 2)
	assert.False(t, snapshot.Entries[0].Pending)
	assert.True(t, snapshot.Entries[1].Pending)
}
