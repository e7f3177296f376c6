//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/remind-api/internal/domain"
	"github.com/phrazzld/remind-api/internal/platform/logger"
	"github.com/phrazzld/remind-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: DATABASE_URL=postgres://... go test -tags=integration ./internal/platform/postgres
func TestStoresAgainstDatabase(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Open(ctx, url)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	log := logger.Discard()
	require.NoError(t, Migrate(ctx, db, MigrateReset, log))
	require.NoError(t, Migrate(ctx, db, MigrateUp, log))

	todos := NewPostgresTodoStore(db, log)
	now := time.Now().UTC().Truncate(time.Millisecond)

	a, err := domain.NewTask("first", now)
	require.NoError(t, err)
	b, err := domain.NewTask("second", now.Add(time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, todos.Create(ctx, a))
	require.NoError(t, todos.Create(ctx, b))
	assert.ErrorIs(t, todos.Create(ctx, a), store.ErrTodoExists)

	require.NoError(t, todos.Reorder(ctx, []string{b.ID, a.ID}))
	list, err := todos.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	_, err = todos.Toggle(ctx, a.ID)
	require.NoError(t, err)
	n, err := todos.DeleteCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	prefs := NewPostgresPreferenceStore(db, log)
	require.NoError(t, prefs.SetTheme(ctx, domain.ThemeLight))
	require.NoError(t, prefs.SetTheme(ctx, domain.ThemeDark))
	theme, err := prefs.GetTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, theme)
}
