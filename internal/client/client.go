package client

import "context"

// Client ties a dispatcher and a view model to one task API. It is the
// surface the presentation layer consumes: submit mutations, read the
// reconciled view.
type Client struct {
	dispatcher *Dispatcher
	view       *View
}

// New creates a Client over api.
func New(api TaskAPI) *Client {
	d := NewDispatcher(api)
	return &Client{
		dispatcher: d,
		view:       NewView(api, d),
	}
}

// Refresh loads the authoritative list. Call once after construction.
func (c *Client) Refresh(ctx context.Context) error {
	return c.view.Refresh(ctx)
}

// SubmitCreate submits a create mutation. The new task appears in the
// reconciled view as a pending entry until the create confirms and the
// following refetch lands.
func (c *Client) SubmitCreate(title string) *Mutation {
	return c.dispatcher.SubmitCreate(title)
}

// SubmitToggle applies the completion flip to the view optimistically and
// submits the confirming mutation best-effort.
func (c *Client) SubmitToggle(id uint64, completed bool) *Mutation {
	c.view.ApplyToggle(id, completed)
	return c.dispatcher.SubmitToggle(id, completed)
}

// SubmitDelete submits a delete mutation.
func (c *Client) SubmitDelete(id uint64) *Mutation {
	return c.dispatcher.SubmitDelete(id)
}

// ReconciledView returns the current merged snapshot.
func (c *Client) ReconciledView() Snapshot {
	return c.view.Snapshot()
}

// Wait blocks until all submitted mutations are terminal. Test and demo
// affordance.
func (c *Client) Wait() {
	c.dispatcher.Wait()
}

// Close stops the view's observation loop.
func (c *Client) Close() {
	c.view.Close()
}
