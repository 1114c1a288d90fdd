// Package identity resolves who is acting. The task service receives a
// Gateway explicitly instead of reading session state from ambient globals,
// which keeps the core testable without the HTTP layer.
package identity

import (
	"context"
	"errors"

	"github.com/kreqo/mytasks/internal/constants"
	"github.com/kreqo/mytasks/internal/repository"
	"gorm.io/gorm"
)

// ErrUnavailable is returned when the identity backend cannot be reached.
var ErrUnavailable = errors.New("identity backend unavailable")

// Identity is the display identity attached to tasks and sessions.
type Identity struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// Gateway exposes the two identity operations the core consumes.
type Gateway interface {
	// CurrentIdentity returns the identity bound to ctx, or nil when the
	// caller is anonymous. Fails with ErrUnavailable if the user store
	// cannot be reached.
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// ResolveIdentity resolves a stored numeric owner reference. It never
	// fails: a miss (including the anonymous sentinel) returns nil.
	ResolveIdentity(ref int64) *Identity
}

// SessionGateway resolves identities against the user repository using the
// user id carried on the request context by the session middleware.
type SessionGateway struct {
	users repository.UserRepository
}

// NewSessionGateway creates a Gateway backed by the user repository.
func NewSessionGateway(users repository.UserRepository) *SessionGateway {
	return &SessionGateway{users: users}
}

func (g *SessionGateway) CurrentIdentity(ctx context.Context) (*Identity, error) {
	userID, ok := UserIDFrom(ctx)
	if !ok {
		return nil, nil
	}

	user, err := g.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Stale session pointing at a deleted user: treat as anonymous.
			return nil, nil
		}
		return nil, ErrUnavailable
	}

	return &Identity{ID: user.ID, Username: user.Username}, nil
}

func (g *SessionGateway) ResolveIdentity(ref int64) *Identity {
	if ref == constants.AnonymousOwnerID || ref < 0 {
		return nil
	}

	user, err := g.users.FindByID(uint64(ref))
	if err != nil {
		return nil
	}

	return &Identity{ID: user.ID, Username: user.Username}
}
