package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/store"
)

const themeKey = "theme"

// PostgresPreferenceStore implements store.PreferenceStore on the
// preferences table.
type PostgresPreferenceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPreferenceStore creates a preference store.
func NewPostgresPreferenceStore(db store.DBTX, logger *slog.Logger) *PostgresPreferenceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPreferenceStore{
		db:     db,
		logger: logger.With(slog.String("component", "preference_store")),
	}
}

var _ store.PreferenceStore = (*PostgresPreferenceStore)(nil)

// GetTheme implements store.PreferenceStore.GetTheme
func (s *PostgresPreferenceStore) GetTheme(ctx context.Context) (domain.Theme, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = $1`, themeKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrPreferenceNotFound
		}
		return "", MapError(err)
	}

	theme, err := domain.ParseTheme(value)
	if err != nil {
		return "", store.NewStoreError("preference", "get", "stored theme is invalid", err)
	}
	return theme, nil
}

// SetTheme implements store.PreferenceStore.SetTheme
func (s *PostgresPreferenceStore) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, themeKey, string(theme))
	return MapError(err)
}
