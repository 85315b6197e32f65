// Package taskpolicy holds the pure authorization rules for tasks.
// Every decision is a function over the actor's identity/role and four
// task fields (assignee, creator, private, archived); no I/O and no
// storage knowledge, so the rules are testable in isolation and the
// SQL visibility scope in the store mirrors List below.
package taskpolicy

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kavinrs01/task-manager-server/internal/domain"
)

// Policy violations. All wrap ErrForbidden so callers can classify any
// denial with a single errors.Is check.
var (
	// ErrForbidden is the root of every policy denial.
	ErrForbidden = errors.New("forbidden")

	// ErrSelfAssignOnly is returned when a USER tries to assign a task
	// to someone else at creation.
	ErrSelfAssignOnly = wrap("users can only assign tasks to themselves")

	// ErrPrivateOnly is returned when a USER tries to create a public
	// task.
	ErrPrivateOnly = wrap("users can only create private tasks")

	// ErrNotAssignee is returned when a USER touches a task assigned to
	// someone else.
	ErrNotAssignee = wrap("you can only access your own tasks")

	// ErrPrivateTask is returned when an ADMIN touches another user's
	// private task.
	ErrPrivateTask = wrap("not authorized to access others' private tasks")
)

func wrap(msg string) error {
	return &policyError{msg: msg}
}

type policyError struct {
	msg string
}

func (e *policyError) Error() string { return e.msg }

func (e *policyError) Unwrap() error { return ErrForbidden }

// Actor is the authenticated principal a decision is made for.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// IsAdmin reports whether the actor has the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Create decides whether the actor may create a task with the given
// assignee and privacy flag. USER actors may only self-assign and may
// only create private tasks; ADMIN actors are unrestricted.
// assignedTo may be uuid.Nil, meaning "default to the actor".
func Create(actor Actor, assignedTo uuid.UUID, isPrivate bool) error {
	if actor.IsAdmin() {
		return nil
	}
	if assignedTo != uuid.Nil && assignedTo != actor.ID {
		return ErrSelfAssignOnly
	}
	if !isPrivate {
		return ErrPrivateOnly
	}
	return nil
}

// Modify decides whether the actor may read, update, archive or
// reorder the given existing task. USER actors must be the assignee.
// ADMIN actors may touch any task except another user's private one.
func Modify(actor Actor, task *domain.Task) error {
	if actor.IsAdmin() {
		if task.IsPrivate && task.AssignedToUserID != actor.ID {
			return ErrPrivateTask
		}
		return nil
	}
	if task.AssignedToUserID != actor.ID {
		return ErrNotAssignee
	}
	return nil
}

// CanView reports whether the task is visible to the actor in list
// results. The store's list query must build WHERE clauses equivalent
// to this predicate (archived tasks are excluded separately).
func CanView(actor Actor, task *domain.Task) bool {
	if task.IsArchived {
		return false
	}
	if actor.IsAdmin() {
		return !(task.IsPrivate && task.AssignedToUserID != actor.ID)
	}
	return task.AssignedToUserID == actor.ID
}
