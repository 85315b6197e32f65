package taskpolicy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavinrs01/task-manager-server/internal/domain"
)

func TestCreate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	otherID := uuid.New()
	user := Actor{ID: userID, Role: domain.RoleUser}
	admin := Actor{ID: userID, Role: domain.RoleAdmin}

	tests := []struct {
		name       string
		actor      Actor
		assignedTo uuid.UUID
		isPrivate  bool
		wantErr    error
	}{
		{name: "user creates private task for self", actor: user, assignedTo: userID, isPrivate: true},
		{name: "user creates private task with default assignee", actor: user, assignedTo: uuid.Nil, isPrivate: true},
		{name: "user assigns to someone else", actor: user, assignedTo: otherID, isPrivate: true, wantErr: ErrSelfAssignOnly},
		{name: "user creates public task", actor: user, assignedTo: userID, isPrivate: false, wantErr: ErrPrivateOnly},
		{name: "admin assigns to anyone", actor: admin, assignedTo: otherID, isPrivate: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Create(tt.actor, tt.assignedTo, tt.isPrivate)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrForbidden)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestModify(t *testing.T) {
	t.Parallel()

	ownID := uuid.New()
	otherID := uuid.New()

	task := func(assignee uuid.UUID, private bool) *domain.Task {
		return &domain.Task{AssignedToUserID: assignee, IsPrivate: private}
	}

	tests := []struct {
		name    string
		actor   Actor
		task    *domain.Task
		wantErr error
	}{
		{
			name:  "user touches own task",
			actor: Actor{ID: ownID, Role: domain.RoleUser},
			task:  task(ownID, true),
		},
		{
			name:    "user touches someone else's task",
			actor:   Actor{ID: ownID, Role: domain.RoleUser},
			task:    task(otherID, false),
			wantErr: ErrNotAssignee,
		},
		{
			name:  "admin touches any public task",
			actor: Actor{ID: ownID, Role: domain.RoleAdmin},
			task:  task(otherID, false),
		},
		{
			name:  "admin touches own private task",
			actor: Actor{ID: ownID, Role: domain.RoleAdmin},
			task:  task(ownID, true),
		},
		{
			name:    "admin touches another user's private task",
			actor:   Actor{ID: ownID, Role: domain.RoleAdmin},
			task:    task(otherID, true),
			wantErr: ErrPrivateTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Modify(tt.actor, tt.task)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrForbidden)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCanView(t *testing.T) {
	t.Parallel()

	ownID := uuid.New()
	otherID := uuid.New()
	user := Actor{ID: ownID, Role: domain.RoleUser}
	admin := Actor{ID: ownID, Role: domain.RoleAdmin}

	tests := []struct {
		name  string
		actor Actor
		task  domain.Task
		want  bool
	}{
		{name: "user sees own task", actor: user, task: domain.Task{AssignedToUserID: ownID}, want: true},
		{name: "user cannot see others' tasks", actor: user, task: domain.Task{AssignedToUserID: otherID}, want: false},
		{name: "archived tasks are invisible", actor: user, task: domain.Task{AssignedToUserID: ownID, IsArchived: true}, want: false},
		{name: "admin sees others' public tasks", actor: admin, task: domain.Task{AssignedToUserID: otherID}, want: true},
		{name: "admin sees own private task", actor: admin, task: domain.Task{AssignedToUserID: ownID, IsPrivate: true}, want: true},
		{name: "admin cannot see others' private tasks", actor: admin, task: domain.Task{AssignedToUserID: otherID, IsPrivate: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanView(tt.actor, &tt.task))
		})
	}
}
