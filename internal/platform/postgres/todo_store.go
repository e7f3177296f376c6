package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
)

// PostgresTodoStore implements store.TodoStore on the todos table.
type PostgresTodoStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTodoStore creates a todo store. If logger is nil, a default
// logger will be used.
func NewPostgresTodoStore(db *sql.DB, logger *slog.Logger) *PostgresTodoStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTodoStore{
		db:     db,
		logger: logger.With(slog.String("component", "todo_store")),
	}
}

var _ store.TodoStore = (*PostgresTodoStore)(nil)

const todoColumns = `id, text, completed, created_at`

func scanTodo(row interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// List implements store.TodoStore.List
func (s *PostgresTodoStore) List(ctx context.Context) ([]domain.Task, error) {
	return s.list(ctx, s.db)
}

func (s *PostgresTodoStore) list(ctx context.Context, db store.DBTX) ([]domain.Task, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY position, created_at`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// Create implements store.TodoStore.Create
// The todo is placed after every existing todo.
func (s *PostgresTodoStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if task == nil || task.ID == "" || task.Text == "" {
		return store.NewStoreError("todo", "create", "todo needs an id and text", store.ErrInvalidEntity)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (id, text, completed, position, created_at)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM todos), $4)
	`, task.ID, task.Text, task.Completed, task.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", store.ErrTodoExists, err)
		}
		log.Error("failed to create todo", slog.String("todo_id", task.ID), slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("todo created", slog.String("todo_id", task.ID))
	return nil
}

// Get implements store.TodoStore.Get
func (s *PostgresTodoStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTodoNotFound
		}
		return nil, MapError(err)
	}
	return t, nil
}

// Toggle implements store.TodoStore.Toggle
func (s *PostgresTodoStore) Toggle(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE todos SET completed = NOT completed WHERE id = $1 RETURNING `+todoColumns, id)
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTodoNotFound
		}
		return nil, MapError(err)
	}
	return t, nil
}

// Delete implements store.TodoStore.Delete
func (s *PostgresTodoStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTodoNotFound)
}

// DeleteCompleted implements store.TodoStore.DeleteCompleted
func (s *PostgresTodoStore) DeleteCompleted(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE completed`)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// Reorder implements store.TodoStore.Reorder
// Positions are rewritten in one transaction.
func (s *PostgresTodoStore) Reorder(ctx context.Context, ids []string) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.list(ctx, tx)
		if err != nil {
			return err
		}
		ordered, err := domain.ReorderTasks(current, ids)
		if err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}

		for i, t := range ordered {
			if _, err := tx.ExecContext(ctx,
				`UPDATE todos SET position = $1 WHERE id = $2`, i+1, t.ID); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
}
