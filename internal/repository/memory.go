package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
)

// Memory is a mutex-guarded in-process store for tests and local development.
// Like the MySQL repositories it hands out copies, never its own records.
type Memory struct {
	mu sync.RWMutex

	users      map[int64]*model.User
	byUsername map[string]int64
	todos      map[int64]*model.Todo

	nextUserID int64
	nextTodoID int64
	now        func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int64]*model.User),
		byUsername: make(map[string]int64),
		todos:      make(map[int64]*model.Todo),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m: m} }

// Todos returns the to-do repository view of the store.
func (m *Memory) Todos() *MemoryTodos { return &MemoryTodos{m: m} }

// MemoryUsers implements the user repository methods over Memory.
type MemoryUsers struct{ m *Memory }

func (r *MemoryUsers) Create(_ context.Context, user *model.User) error {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUsername[user.Username]; exists {
		return ErrDuplicateUsername
	}
	m.nextUserID++
	now := m.now()
	user.ID = m.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	m.users[cp.ID] = &cp
	m.byUsername[cp.Username] = cp.ID
	return nil
}

func (r *MemoryUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// MemoryTodos implements the to-do repository methods over Memory.
type MemoryTodos struct{ m *Memory }

func (r *MemoryTodos) Create(_ context.Context, todo *model.Todo) error {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.users[todo.UserID]
	if !ok {
		return ErrUserNotFound
	}
	m.nextTodoID++
	now := m.now()
	todo.ID = m.nextTodoID
	todo.Owner = owner.Username
	todo.CreatedAt = now
	todo.UpdatedAt = now

	cp := *todo
	m.todos[cp.ID] = &cp
	return nil
}

func (r *MemoryTodos) GetByID(_ context.Context, id int64) (*model.Todo, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.todos[id]
	if !ok {
		return nil, ErrTodoNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTodos) ListByUser(_ context.Context, userID int64, filter model.TodoFilter) ([]model.Todo, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Todo
	for _, t := range m.todos {
		if t.UserID != userID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryTodos) Update(_ context.Context, todo *model.Todo) error {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.todos[todo.ID]
	if !ok || current.UserID != todo.UserID {
		return ErrTodoNotFound
	}
	current.Title = todo.Title
	current.Description = todo.Description
	current.Completed = todo.Completed
	current.UpdatedAt = m.now()

	*todo = *current
	return nil
}

func (r *MemoryTodos) Delete(_ context.Context, id, userID int64) error {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.todos[id]
	if !ok || current.UserID != userID {
		return ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}
