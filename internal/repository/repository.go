package repository

import (
	"context"

	"github.com/kreqo/mytasks/internal/models"
)

// TaskRepository defines the interface for task data access. It mirrors the
// store contract the task service is built on: a durable, orderable table
// of task rows with row-level write serialization provided by the database.
type TaskRepository interface {
	// Insert writes a new task row and returns its assigned id.
	Insert(ctx context.Context, title string, ownerRef int64) (uint64, error)

	// SelectAll returns every task row in creation order.
	SelectAll(ctx context.Context) ([]models.Task, error)

	// UpdateCompleted sets the completed flag and returns the affected row count.
	UpdateCompleted(ctx context.Context, id uint64, completed bool) (int64, error)

	// Delete removes a task row and returns the affected row count.
	Delete(ctx context.Context, id uint64) (int64, error)

	// FindByID finds a task row by id.
	FindByID(ctx context.Context, id uint64) (*models.Task, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
