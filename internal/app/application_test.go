package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickpoll/internal/config"
	"quickpoll/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")
	return cfg
}

func TestNewApplicationSeedsDemoRoom(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApplication(cfg)
	require.NoError(t, err)
	defer func() { _ = app.store.Close() }()

	require.True(t, app.suite.HasRoom("demo"))
	room, _ := app.suite.Room("demo")
	layout := room.TeacherLayout()
	assert.Equal(t, "system", layout.Author)
	require.Len(t, layout.Widgets, 3)
	assert.Equal(t, "choice", layout.Widgets[0].Type)
	assert.Equal(t, "text", layout.Widgets[1].Type)
	assert.Equal(t, "choice", layout.Widgets[2].Type)
	require.NotNil(t, layout.Widgets[2].Multiple)
	assert.True(t, *layout.Widgets[2].Multiple)

	// The seeded room is persisted, so a second boot loads it instead of
	// re-seeding.
	loaded, err := app.store.LoadRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "demo", loaded[0].ID())
}

func TestNewApplicationSkipsSeedWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDemoRoom = false

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	defer func() { _ = app.store.Close() }()

	assert.False(t, app.suite.HasRoom("demo"))
}

func TestNewApplicationLoadsPersistedRooms(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDemoRoom = false

	first, err := NewApplication(cfg)
	require.NoError(t, err)
	room, err := first.suite.AddRoom("persisted", "Persisted", "teach", "")
	require.NoError(t, err)
	require.NoError(t, first.store.UpsertRoom(context.Background(), room))
	require.NoError(t, first.store.Close())

	second, err := NewApplication(cfg)
	require.NoError(t, err)
	defer func() { _ = second.store.Close() }()

	assert.True(t, second.suite.HasRoom("persisted"))
}

func TestNewApplicationRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Port = -1

	_, err := NewApplication(cfg)
	assert.Error(t, err)
}

func TestNewApplicationAbortsOnBrokenRoomData(t *testing.T) {
	cfg := testConfig(t)

	manager, err := store.NewManager(cfg.Database.Path, cfg.Database.Timeout)
	require.NoError(t, err)
	_, err = manager.DB().Exec(
		"INSERT INTO rooms (id, name, description, author, layout) VALUES (?, ?, ?, ?, ?)",
		"broken", "Broken", "", "teach", "not json",
	)
	require.NoError(t, err)
	require.NoError(t, manager.Close())

	_, err = NewApplication(cfg)
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Port = 18473
	cfg.HTTP.Host = "127.0.0.1"

	app, err := NewApplication(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	assert.Equal(t, "127.0.0.1:18473", app.Addr())

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, app.Stop(stopCtx))
}
