// Package client implements the optimistic side of the task protocol: a
// mutation dispatcher that tracks every submitted mutation to a terminal
// state, and a reconciled view model that merges the last-confirmed task
// list with still-pending creates so the UI never appears to regress.
package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kreqo/mytasks/internal/services"
)

// TaskAPI is the server contract the client dispatches against.
// *services.TaskService satisfies it; tests substitute fakes.
type TaskAPI interface {
	List(ctx context.Context) ([]services.Task, error)
	Create(ctx context.Context, title string) error
	SetCompleted(ctx context.Context, id uint64, completed bool) error
	Delete(ctx context.Context, id uint64) error
}

// MutationKind identifies what a mutation does.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationToggle MutationKind = "toggle"
	MutationDelete MutationKind = "delete"
)

// MutationState is a mutation's lifecycle position. Every mutation starts
// Pending and reaches exactly one terminal state; there is no cancellation.
type MutationState int

const (
	StatePending MutationState = iota
	StateConfirmed
	StateFailed
)

func (s MutationState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mutation is one tracked unit of user intent. It is ephemeral client
// state, never persisted.
type Mutation struct {
	ID   uuid.UUID
	Kind MutationKind

	// Payload fields; which ones are set depends on Kind.
	Title     string
	TaskID    uint64
	Completed bool

	mu    sync.Mutex
	state MutationState
	err   error
	done  chan struct{}
}

func newMutation(kind MutationKind) *Mutation {
	return &Mutation{
		ID:    uuid.New(),
		Kind:  kind,
		state: StatePending,
		done:  make(chan struct{}),
	}
}

// State returns the mutation's current lifecycle state.
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the failure reason for a Failed mutation, nil otherwise.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done is closed once the mutation reaches a terminal state.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// finish records the terminal transition. It is called exactly once per
// mutation, by the dispatcher goroutine that ran it.
func (m *Mutation) finish(err error) {
	m.mu.Lock()
	if m.state != StatePending {
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.state = StateFailed
		m.err = err
	} else {
		m.state = StateConfirmed
	}
	m.mu.Unlock()
	close(m.done)
}
