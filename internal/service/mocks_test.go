package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/domain/taskpolicy"
	"github.com/kavinrs01/task-manager-server/internal/events"
	"github.com/kavinrs01/task-manager-server/internal/service/auth"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// passthroughTx runs the transaction body directly, without a database.
// The fakes below ignore the nil *sql.Tx their WithTx receives.
func passthroughTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*domain.User, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

// fakeTokenStore is an in-memory store.RefreshTokenStore.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*domain.RefreshToken)}
}

func (f *fakeTokenStore) Create(ctx context.Context, token *domain.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.Token]; ok {
		return store.ErrDuplicate
	}
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeTokenStore) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, store.ErrRefreshTokenNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token]; !ok {
		return store.ErrRefreshTokenNotFound
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var n int64
	for k, t := range f.tokens {
		if t.Expired(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) WithTx(tx *sql.Tx) store.RefreshTokenStore { return f }

func (f *fakeTokenStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

// fakeTaskStore is an in-memory store.TaskStore whose ordering and
// neighbor queries mirror the SQL implementation.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTaskStore) List(ctx context.Context, actor taskpolicy.Actor, filter store.TaskFilter, page store.TaskPage) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var visible []*domain.Task
	for _, t := range f.tasks {
		if !taskpolicy.CanView(actor, t) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		copied := *t
		visible = append(visible, &copied)
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].SortOrder != visible[j].SortOrder {
			return visible[i].SortOrder > visible[j].SortOrder
		}
		return visible[i].ID.String() < visible[j].ID.String()
	})

	if page.Cursor != nil {
		for i, t := range visible {
			if t.ID == *page.Cursor {
				visible = visible[i+1:]
				break
			}
		}
	}
	take := page.Take
	if take <= 0 {
		take = 10
	}
	if len(visible) > take {
		visible = visible[:take]
	}
	return visible, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) MaxSortOrder(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0.0
	for _, t := range f.tasks {
		if !t.IsArchived && t.SortOrder > max {
			max = t.SortOrder
		}
	}
	return max, nil
}

func (f *fakeTaskStore) NextAbove(ctx context.Context, sortOrder float64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *domain.Task
	for _, t := range f.tasks {
		if t.IsArchived || t.SortOrder <= sortOrder {
			continue
		}
		if best == nil || t.SortOrder < best.SortOrder {
			best = t
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (f *fakeTaskStore) NextBelow(ctx context.Context, sortOrder float64) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *domain.Task
	for _, t := range f.tasks {
		if t.IsArchived || t.SortOrder >= sortOrder {
			continue
		}
		if best == nil || t.SortOrder > best.SortOrder {
			best = t
		}
	}
	if best == nil {
		return nil, nil
	}
	copied := *best
	return &copied, nil
}

func (f *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return f }

// recordingEmitter collects emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskMutationEvent
}

func (r *recordingEmitter) EmitEvent(ctx context.Context, event *events.TaskMutationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEmitter) all() []*events.TaskMutationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.TaskMutationEvent(nil), r.events...)
}

// stubJWTService issues predictable, unique token strings.
type stubJWTService struct {
	mu      sync.Mutex
	counter int
	expiry  time.Time
}

func newStubJWTService() *stubJWTService {
	return &stubJWTService{expiry: time.Now().Add(24 * time.Hour)}
}

func (s *stubJWTService) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("access-%s-%d", user.ID, s.counter), nil
}

func (s *stubJWTService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("refresh-%s-%d", user.ID, s.counter), s.expiry, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func (s *stubJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	// The stored record is authoritative in these tests; signature
	// checks always pass for non-empty tokens.
	if token == "" {
		return nil, auth.ErrInvalidRefreshToken
	}
	return &auth.Claims{TokenType: "refresh"}, nil
}

// stubHasher is a transparent password hasher for tests.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return ErrInvalidCredentials
	}
	return nil
}
