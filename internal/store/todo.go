package store

import (
	"context"

	"github.com/phrazzld/remind-api/internal/domain"
)

// TodoStore persists the todo list in display order.
type TodoStore interface {
	// List returns every todo in display order.
	List(ctx context.Context) ([]domain.Task, error)

	// Create appends a todo to the end of the list.
	// Returns ErrTodoExists if a todo with the same id is stored.
	Create(ctx context.Context, task *domain.Task) error

	// Get returns a single todo.
	// Returns ErrTodoNotFound if the todo does not exist.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// Toggle flips the completed flag and returns the updated todo.
	// Returns ErrTodoNotFound if the todo does not exist.
	Toggle(ctx context.Context, id string) (*domain.Task, error)

	// Delete removes a todo.
	// Returns ErrTodoNotFound if the todo does not exist.
	Delete(ctx context.Context, id string) error

	// DeleteCompleted removes every completed todo and returns how many
	// were removed.
	DeleteCompleted(ctx context.Context) (int, error)

	// Reorder sets the display order. ids must name every todo once;
	// otherwise the error wraps ErrInvalidEntity.
	Reorder(ctx context.Context, ids []string) error
}

// PreferenceStore persists user interface preferences.
type PreferenceStore interface {
	// GetTheme returns the stored theme.
	// Returns ErrPreferenceNotFound if no theme was ever stored.
	GetTheme(ctx context.Context) (domain.Theme, error)

	// SetTheme stores the theme.
	SetTheme(ctx context.Context, theme domain.Theme) error
}
