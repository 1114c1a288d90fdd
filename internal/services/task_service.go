package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kreqo/mytasks/internal/constants"
	"github.com/kreqo/mytasks/internal/identity"
	"github.com/kreqo/mytasks/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrNotTaskOwner = errors.New("only the owner can modify this task")
)

// ownerResolveConcurrency caps how many owner lookups run at once when
// assembling a task list.
const ownerResolveConcurrency = 8

// createdAtFormat renders a task's creation time the way the UI displays it.
const createdAtFormat = "2006-01-02 15:04:05"

// Task is the assembled, display-ready form of a task row: the stored owner
// reference has been resolved against the identity gateway. A nil Owner
// means the task is anonymous or its owner no longer exists.
type Task struct {
	ID        uint64
	Owner     *identity.Identity
	Title     string
	CreatedAt string
	Completed bool
}

// TaskServiceOptions carries the policy knobs for a TaskService.
type TaskServiceOptions struct {
	// CreateDelay is an artificial latency applied before each insert so
	// the client's pending state is observable. Zero disables it.
	CreateDelay time.Duration

	// EnforceOwnership requires the acting identity to own a task before
	// toggling or deleting it. Off by default: the reference behavior lets
	// any caller mutate any task.
	EnforceOwnership bool
}

// TaskService mediates between the identity gateway and the task store. It
// is the single write path for tasks: every mutation resolves the acting
// identity explicitly and goes through the repository.
type TaskService struct {
	taskRepo         repository.TaskRepository
	gateway          identity.Gateway
	createDelay      time.Duration
	enforceOwnership bool
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, gateway identity.Gateway, opts TaskServiceOptions) *TaskService {
	return &TaskService{
		taskRepo:         taskRepo,
		gateway:          gateway,
		createDelay:      opts.CreateDelay,
		enforceOwnership: opts.EnforceOwnership,
	}
}

// List returns every task in creation order with owners resolved. Owner
// lookups are independent point reads, so they run concurrently; the
// assembled slice preserves the original row order. Resolution misses never
// fail the read: the entry simply has no owner.
func (s *TaskService) List(ctx context.Context) ([]Task, error) {
	rows, err := s.taskRepo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]Task, len(rows))
	g := new(errgroup.Group)
	g.SetLimit(ownerResolveConcurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			tasks[i] = Task{
				ID:        row.ID,
				Owner:     s.gateway.ResolveIdentity(row.OwnerID),
				Title:     row.Title,
				CreatedAt: row.CreatedAt.Format(createdAtFormat),
				Completed: row.Completed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Create writes a new, uncompleted task owned by the acting identity, or by
// the anonymous sentinel when no session is active.
func (s *TaskService) Create(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}

	ident, err := s.gateway.CurrentIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve acting identity: %w", err)
	}

	ownerRef := constants.AnonymousOwnerID
	if ident != nil {
		ownerRef = int64(ident.ID)
	}

	if s.createDelay > 0 {
		select {
		case <-time.After(s.createDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if _, err := s.taskRepo.Insert(ctx, title, ownerRef); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// SetCompleted sets the completed flag on a task. The flag is
// server-authoritative; clients treat their local flips as previews until
// this returns. Fails with ErrTaskNotFound when the id does not exist.
func (s *TaskService) SetCompleted(ctx context.Context, id uint64, completed bool) error {
	if s.enforceOwnership {
		found, err := s.ensureOwner(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return ErrTaskNotFound
		}
	}

	affected, err := s.taskRepo.UpdateCompleted(ctx, id, completed)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// Delete removes a task. Deletion is idempotent: an id that no longer
// exists is treated as success, matching the store's affected-rows
// semantics, so repeated deletes of the same task converge on the same
// state without surfacing an error.
func (s *TaskService) Delete(ctx context.Context, id uint64) error {
	if s.enforceOwnership {
		found, err := s.ensureOwner(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
	}

	if _, err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ensureOwner verifies that the acting identity owns the task. Tasks owned
// by the anonymous sentinel stay open to everyone. Returns found=false when
// the task does not exist so callers can apply their own missing-row policy.
func (s *TaskService) ensureOwner(ctx context.Context, id uint64) (bool, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find task: %w", err)
	}

	if task.OwnerID == constants.AnonymousOwnerID {
		return true, nil
	}

	ident, err := s.gateway.CurrentIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to resolve acting identity: %w", err)
	}
	if ident == nil || int64(ident.ID) != task.OwnerID {
		return false, ErrNotTaskOwner
	}

	return true, nil
}
