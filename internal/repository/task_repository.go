package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kreqo/mytasks/internal/models"
	"gorm.io/gorm"
)

// ErrStore wraps any underlying persistence failure so callers can match it
// without depending on driver error types.
var ErrStore = errors.New("task repository: store failure")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Insert writes a new task row. The database assigns a unique id, so
// concurrent inserts never collide.
func (r *GormTaskRepository) Insert(ctx context.Context, title string, ownerRef int64) (uint64, error) {
	task := models.Task{
		Title:   title,
		OwnerID: ownerRef,
	}
	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return task.ID, nil
}

// SelectAll returns every task row ordered by id, which matches creation
// order because ids are assigned monotonically on insert.
func (r *GormTaskRepository) SelectAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return tasks, nil
}

// UpdateCompleted sets the completed flag on a row. A zero affected count
// means the id does not exist.
func (r *GormTaskRepository) UpdateCompleted(ctx context.Context, id uint64, completed bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Update("completed", completed)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrStore, result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a task row. Deleting an id that no longer exists is not an
// error; the affected count is simply zero.
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrStore, result.Error)
	}
	return result.RowsAffected, nil
}

// FindByID finds a task row by id
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &task, nil
}
