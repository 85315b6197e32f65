package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest defines the payload for the logout endpoint.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserResponse is the public projection of an account. The password
// hash is never part of any response.
type UserResponse struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// NewUserResponse builds a UserResponse from a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// AuthResponse defines the successful response for login and register.
type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Title            string              `json:"title"            validate:"required,min=1,max=200"`
	Description      string              `json:"description"      validate:"max=2000"`
	DueDate          time.Time           `json:"dueDate"          validate:"required"`
	Status           domain.TaskStatus   `json:"status"           validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority         domain.TaskPriority `json:"priority"         validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	IsPrivate        bool                `json:"isPrivate"`
	AssignedToUserID *uuid.UUID          `json:"assignedToUserId"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title            *string              `json:"title"            validate:"omitempty,min=1,max=200"`
	Description      *string              `json:"description"      validate:"omitempty,max=2000"`
	DueDate          *time.Time           `json:"dueDate"`
	Status           *domain.TaskStatus   `json:"status"           validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority         *domain.TaskPriority `json:"priority"         validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	IsPrivate        *bool                `json:"isPrivate"`
	AssignedToUserID *uuid.UUID           `json:"assignedToUserId"`
}

// ReorderTaskRequest defines the payload for the sort-order endpoint.
// At most one of OverTaskID and ColumnLastTaskID may be present.
type ReorderTaskRequest struct {
	ActiveTaskID     uuid.UUID         `json:"activeTaskId"     validate:"required"`
	OverTaskID       *uuid.UUID        `json:"overTaskId"`
	ColumnLastTaskID *uuid.UUID        `json:"columnLastTaskId"`
	NewStatus        domain.TaskStatus `json:"newStatus"        validate:"required,oneof=TODO IN_PROGRESS DONE"`
}

// TaskResponse is the wire representation of a task.
type TaskResponse struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description,omitempty"`
	DueDate          time.Time           `json:"dueDate"`
	Status           domain.TaskStatus   `json:"status"`
	Priority         domain.TaskPriority `json:"priority"`
	SortOrder        float64             `json:"sortOrder"`
	IsPrivate        bool                `json:"isPrivate"`
	IsArchived       bool                `json:"isArchived"`
	AssignedToUserID uuid.UUID           `json:"assignedToUserId"`
	CreatedByUserID  uuid.UUID           `json:"createdByUserId"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// NewTaskResponse builds a TaskResponse from a task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		DueDate:          task.DueDate,
		Status:           task.Status,
		Priority:         task.Priority,
		SortOrder:        task.SortOrder,
		IsPrivate:        task.IsPrivate,
		IsArchived:       task.IsArchived,
		AssignedToUserID: task.AssignedToUserID,
		CreatedByUserID:  task.CreatedByUserID,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

// NewTaskListResponse builds the wire form of a task listing.
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, NewTaskResponse(t))
	}
	return responses
}
