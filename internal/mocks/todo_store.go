package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
)

// MockTodoStore implements store.TodoStore for testing. Without function
// fields it behaves like an in-memory list.
type MockTodoStore struct {
	// Function fields for customizable behavior
	ListFn            func(ctx context.Context) ([]domain.Task, error)
	CreateFn          func(ctx context.Context, task *domain.Task) error
	GetFn             func(ctx context.Context, id string) (*domain.Task, error)
	ToggleFn          func(ctx context.Context, id string) (*domain.Task, error)
	DeleteFn          func(ctx context.Context, id string) error
	DeleteCompletedFn func(ctx context.Context) (int, error)
	ReorderFn         func(ctx context.Context, ids []string) error

	mu    sync.Mutex
	Tasks []domain.Task
}

// NewMockTodoStore creates a store holding tasks.
func NewMockTodoStore(tasks ...domain.Task) *MockTodoStore {
	return &MockTodoStore{Tasks: append([]domain.Task(nil), tasks...)}
}

var _ store.TodoStore = (*MockTodoStore)(nil)

func (m *MockTodoStore) index(id string) int {
	for i, t := range m.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// List implements store.TodoStore
func (m *MockTodoStore) List(ctx context.Context) ([]domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Task{}, m.Tasks...), nil
}

// Create implements store.TodoStore
func (m *MockTodoStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(task.ID) >= 0 {
		return store.ErrTodoExists
	}
	m.Tasks = append(m.Tasks, *task)
	return nil
}

// Get implements store.TodoStore
func (m *MockTodoStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, store.ErrTodoNotFound
	}
	t := m.Tasks[i]
	return &t, nil
}

// Toggle implements store.TodoStore
func (m *MockTodoStore) Toggle(ctx context.Context, id string) (*domain.Task, error) {
	if m.ToggleFn != nil {
		return m.ToggleFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return nil, store.ErrTodoNotFound
	}
	m.Tasks[i].Completed = !m.Tasks[i].Completed
	t := m.Tasks[i]
	return &t, nil
}

// Delete implements store.TodoStore
func (m *MockTodoStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return store.ErrTodoNotFound
	}
	m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
	return nil
}

// DeleteCompleted implements store.TodoStore
func (m *MockTodoStore) DeleteCompleted(ctx context.Context) (int, error) {
	if m.DeleteCompletedFn != nil {
		return m.DeleteCompletedFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := domain.FilterTasks(m.Tasks, domain.FilterActive)
	n := len(m.Tasks) - len(kept)
	m.Tasks = kept
	return n, nil
}

// Reorder implements store.TodoStore
func (m *MockTodoStore) Reorder(ctx context.Context, ids []string) error {
	if m.ReorderFn != nil {
		return m.ReorderFn(ctx, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ordered, err := domain.ReorderTasks(m.Tasks, ids)
	if err != nil {
		return err
	}
	m.Tasks = ordered
	return nil
}

// MockPreferenceStore implements store.PreferenceStore for testing
type MockPreferenceStore struct {
	GetThemeFn func(ctx context.Context) (domain.Theme, error)
	SetThemeFn func(ctx context.Context, theme domain.Theme) error

	mu    sync.Mutex
	Theme domain.Theme
}

var _ store.PreferenceStore = (*MockPreferenceStore)(nil)

// GetTheme implements store.PreferenceStore
func (m *MockPreferenceStore) GetTheme(ctx context.Context) (domain.Theme, error) {
	if m.GetThemeFn != nil {
		return m.GetThemeFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Theme == "" {
		return "", store.ErrPreferenceNotFound
	}
	return m.Theme, nil
}

// SetTheme implements store.PreferenceStore
func (m *MockPreferenceStore) SetTheme(ctx context.Context, theme domain.Theme) error {
	if m.SetThemeFn != nil {
		return m.SetThemeFn(ctx, theme)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Theme = theme
	return nil
}
