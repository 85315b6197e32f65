package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/domain/taskpolicy"
	"github.com/kavinrs01/task-manager-server/internal/service"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// fakeAuthService returns canned results for handler tests.
type fakeAuthService struct {
	result *service.AuthResult
	user   *domain.User
	team   []domain.PublicUser
	err    error

	logoutCalled bool
}

func (f *fakeAuthService) Register(ctx context.Context, name, email, password string) (*service.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	f.logoutCalled = true
	return f.err
}

func (f *fakeAuthService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeAuthService) TeamMembers(ctx context.Context) ([]domain.PublicUser, error) {
	return f.team, f.err
}

// fakeTaskService returns canned results and records the inputs it saw.
type fakeTaskService struct {
	task  *domain.Task
	tasks []*domain.Task
	err   error

	gotActor   taskpolicy.Actor
	gotID      uuid.UUID
	gotCreate  service.CreateTaskInput
	gotUpdate  service.UpdateTaskInput
	gotReorder service.ReorderTaskInput
	gotFilter  store.TaskFilter
	gotPage    store.TaskPage
}

func (f *fakeTaskService) Create(ctx context.Context, actor taskpolicy.Actor, input service.CreateTaskInput) (*domain.Task, error) {
	f.gotActor = actor
	f.gotCreate = input
	return f.task, f.err
}

func (f *fakeTaskService) List(ctx context.Context, actor taskpolicy.Actor, filter store.TaskFilter, page store.TaskPage) ([]*domain.Task, error) {
	f.gotActor = actor
	f.gotFilter = filter
	f.gotPage = page
	return f.tasks, f.err
}

func (f *fakeTaskService) FindOne(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	f.gotID = id
	return f.task, f.err
}

func (f *fakeTaskService) GetSubscribed(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID) (*domain.Task, error) {
	f.gotActor = actor
	f.gotID = id
	return f.task, f.err
}

func (f *fakeTaskService) Update(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error) {
	f.gotActor = actor
	f.gotID = id
	f.gotUpdate = input
	return f.task, f.err
}

func (f *fakeTaskService) Archive(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID) (*domain.Task, error) {
	f.gotActor = actor
	f.gotID = id
	return f.task, f.err
}

func (f *fakeTaskService) Reorder(ctx context.Context, actor taskpolicy.Actor, id uuid.UUID, input service.ReorderTaskInput) (*domain.Task, error) {
	f.gotActor = actor
	f.gotID = id
	f.gotReorder = input
	return f.task, f.err
}
