package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
)

// Keys under which values are persisted.
const (
	KeyTodos = "todos"
	KeyTheme = "theme"
)

// Store keeps the todo list and preferences as whole values under fixed
// keys in a diskv directory.
type Store struct {
	d      *diskv.Diskv
	mu     sync.Mutex
	logger *slog.Logger
}

// Open creates a store rooted at path, creating the directory if needed.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	d := diskv.New(diskv.Options{
		BasePath:     path,
		Transform:    func(string) []string { return nil },
		CacheSizeMax: 1024 * 1024, // 1MB
	})

	return &Store{d: d, logger: logger.With("component", "localstore")}, nil
}

func (s *Store) readTodos() ([]domain.Task, error) {
	val, err := s.d.Read(KeyTodos)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Task{}, nil
		}
		return nil, err
	}

	var tasks []domain.Task
	if err := json.Unmarshal(val, &tasks); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", KeyTodos, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *Store) writeTodos(tasks []domain.Task) error {
	val, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return s.d.Write(KeyTodos, val)
}

// update loads the list, applies fn and writes the result back.
func (s *Store) update(operation string, fn func([]domain.Task) ([]domain.Task, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTodos()
	if err != nil {
		return store.NewStoreError("todo", operation, "failed to read todos", err)
	}
	next, err := fn(tasks)
	if err != nil {
		return err
	}
	if err := s.writeTodos(next); err != nil {
		return store.NewStoreError("todo", operation, "failed to write todos", err)
	}
	return nil
}

// List implements store.TodoStore.
func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTodos()
	if err != nil {
		return nil, store.NewStoreError("todo", "list", "failed to read todos", err)
	}
	return tasks, nil
}

// Create implements store.TodoStore.
func (s *Store) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" || task.Text == "" {
		return store.NewStoreError("todo", "create", "todo needs an id and text", store.ErrInvalidEntity)
	}

	return s.update("create", func(tasks []domain.Task) ([]domain.Task, error) {
		for _, t := range tasks {
			if t.ID == task.ID {
				return nil, store.ErrTodoExists
			}
		}
		return append(tasks, *task), nil
	})
}

// Get implements store.TodoStore.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, store.ErrTodoNotFound
}

// Toggle implements store.TodoStore.
func (s *Store) Toggle(ctx context.Context, id string) (*domain.Task, error) {
	var toggled domain.Task
	err := s.update("toggle", func(tasks []domain.Task) ([]domain.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Completed = !tasks[i].Completed
				toggled = tasks[i]
				return tasks, nil
			}
		}
		return nil, store.ErrTodoNotFound
	})
	if err != nil {
		return nil, err
	}
	return &toggled, nil
}

// Delete implements store.TodoStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.update("delete", func(tasks []domain.Task) ([]domain.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				return append(tasks[:i], tasks[i+1:]...), nil
			}
		}
		return nil, store.ErrTodoNotFound
	})
}

// DeleteCompleted implements store.TodoStore.
func (s *Store) DeleteCompleted(ctx context.Context) (int, error) {
	removed := 0
	err := s.update("delete_completed", func(tasks []domain.Task) ([]domain.Task, error) {
		kept := domain.FilterTasks(tasks, domain.FilterActive)
		removed = len(tasks) - len(kept)
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "cleared completed todos", "count", removed)
	}
	return removed, nil
}

// Reorder implements store.TodoStore.
func (s *Store) Reorder(ctx context.Context, ids []string) error {
	return s.update("reorder", func(tasks []domain.Task) ([]domain.Task, error) {
		ordered, err := domain.ReorderTasks(tasks, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		return ordered, nil
	})
}

// GetTheme implements store.PreferenceStore.
func (s *Store) GetTheme(ctx context.Context) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, err := s.d.Read(KeyTheme)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", store.ErrPreferenceNotFound
		}
		return "", store.NewStoreError("preference", "get", "failed to read theme", err)
	}
	theme, err := domain.ParseTheme(string(val))
	if err != nil {
		return "", store.NewStoreError("preference", "get", "stored theme is invalid", err)
	}
	return theme, nil
}

// SetTheme implements store.PreferenceStore.
func (s *Store) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.d.Write(KeyTheme, []byte(theme)); err != nil {
		return store.NewStoreError("preference", "set", "failed to write theme", err)
	}
	return nil
}

var (
	_ store.TodoStore       = (*Store)(nil)
	_ store.PreferenceStore = (*Store)(nil)
)
