package dto

import (
	"github.com/kreqo/mytasks/internal/constants"
	"github.com/kreqo/mytasks/internal/identity"
	"github.com/kreqo/mytasks/internal/models"
	"github.com/kreqo/mytasks/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TaskDTO represents an assembled task in API responses. Owner is always
// present; unresolved owners render as the guest identity.
type TaskDTO struct {
	ID        uint64  `json:"id"`
	Owner     UserDTO `json:"owner"`
	Title     string  `json:"title"`
	CreatedAt string  `json:"created_at"`
	Completed bool    `json:"completed"`
}

// TaskListResponse wraps the task list in API responses
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToTaskDTO converts an assembled task to TaskDTO
func ToTaskDTO(task services.Task) TaskDTO {
	owner := UserDTO{Username: constants.GuestUsername}
	if task.Owner != nil {
		owner = ownerDTO(task.Owner)
	}
	return TaskDTO{
		ID:        task.ID,
		Owner:     owner,
		Title:     task.Title,
		CreatedAt: task.CreatedAt,
		Completed: task.Completed,
	}
}

// ToTaskListResponse converts a slice of assembled tasks to TaskListResponse
func ToTaskListResponse(tasks []services.Task) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{Tasks: items}
}

func ownerDTO(ident *identity.Identity) UserDTO {
	return UserDTO{
		ID:       ident.ID,
		Username: ident.Username,
	}
}
