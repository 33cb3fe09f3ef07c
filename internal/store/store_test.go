package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickpoll/internal/poll"
	"quickpoll/pkg/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(filepath.Join(t.TempDir(), "test.db"), 5*time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func TestHealthCheck(t *testing.T) {
	manager := newTestManager(t)
	assert.NoError(t, manager.HealthCheck(context.Background()))
}

func TestUpsertAndLoadRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	room := poll.NewRoom("demo", "Demo", "teacher1", "a demo room")
	text := poll.NewTextWidget("Feedback")
	text.SetDescription("free text")
	text.SetVisible(true)
	room.AddWidget(text)
	room.AddWidget(poll.NewChoiceWidget("Pick", true, []*poll.Choice{
		poll.NewChoice("a"), poll.NewChoice("b"),
	}))

	require.NoError(t, manager.UpsertRoom(ctx, room))

	loaded, err := manager.LoadRooms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, "demo", got.ID())
	assert.Equal(t, "Demo", got.Name())
	assert.Equal(t, "teacher1", got.Author())
	assert.Equal(t, "a demo room", got.Description())

	layout := got.TeacherLayout()
	require.Len(t, layout.Widgets, 2)
	assert.Equal(t, poll.TypeText, layout.Widgets[0].Type)
	assert.Equal(t, "Feedback", layout.Widgets[0].Name)
	assert.Equal(t, "free text", layout.Widgets[0].Description)
	assert.True(t, layout.Widgets[0].Visible)
	assert.Equal(t, poll.TypeChoice, layout.Widgets[1].Type)
	require.NotNil(t, layout.Widgets[1].Multiple)
	assert.True(t, *layout.Widgets[1].Multiple)
	require.Len(t, layout.Widgets[1].Choices, 2)
	assert.Equal(t, "a", layout.Widgets[1].Choices[0].Text)
}

func TestLoadReassignsWidgetIDs(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	room := poll.NewRoom("demo", "Demo", "teacher1", "")
	room.AddWidget(poll.NewTextWidget("one"))
	room.AddWidget(poll.NewTextWidget("two"))
	room.DeleteWidget(1)
	require.Equal(t, []int{2}, room.WidgetIDs())

	require.NoError(t, manager.UpsertRoom(ctx, room))

	loaded, err := manager.LoadRooms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	// Persisted ids are not kept; ids restart from 1 in stored order.
	assert.Equal(t, []int{1}, loaded[0].WidgetIDs())
}

func TestUpsertIsIdempotent(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	room := poll.NewRoom("demo", "Demo", "teacher1", "")
	room.AddWidget(poll.NewTextWidget("one"))
	require.NoError(t, manager.UpsertRoom(ctx, room))

	room.SetName("Renamed")
	require.NoError(t, manager.UpsertRoom(ctx, room))

	loaded, err := manager.LoadRooms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Renamed", loaded[0].Name())
}

func TestLoadRoomsUnknownWidgetTypeIsFatal(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	_, err := manager.DB().ExecContext(ctx,
		"INSERT INTO rooms (id, name, description, author, layout) VALUES (?, ?, ?, ?, ?)",
		"broken", "Broken", "", "teacher1",
		`[{"id":1,"name":"x","description":"","visible":true,"type":"slider"}]`,
	)
	require.NoError(t, err)

	_, err = manager.LoadRooms(ctx)
	assert.ErrorIs(t, err, ErrUnknownWidgetType)
}

func TestDeleteRoom(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	room := poll.NewRoom("demo", "Demo", "teacher1", "")
	require.NoError(t, manager.UpsertRoom(ctx, room))
	require.NoError(t, manager.DeleteRoom(ctx, "demo"))

	loaded, err := manager.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Absent id is a no-op.
	assert.NoError(t, manager.DeleteRoom(ctx, "demo"))
}

func TestLookupMemberInfo(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	_, err := manager.DB().ExecContext(ctx,
		"INSERT INTO people (login, name, uco) VALUES (?, ?, ?), (?, ?, ?)",
		"alice", "Alice Example", 123456,
		"teach", "Terry Teacher", 654321,
	)
	require.NoError(t, err)
	_, err = manager.DB().ExecContext(ctx, "INSERT INTO teachers (login) VALUES (?)", "teach")
	require.NoError(t, err)

	info, err := manager.LookupMemberInfo(ctx,
		[]string{"alice", "teach", "ghost"},
		map[string]bool{"alice": true},
	)
	require.NoError(t, err)
	require.Len(t, info, 3)

	assert.Equal(t, types.MemberInfo{
		DisplayName:  "Alice Example",
		UniversityID: 123456,
		IsTeacher:    false,
		IsActive:     true,
	}, info["alice"])

	assert.Equal(t, types.MemberInfo{
		DisplayName:  "Terry Teacher",
		UniversityID: 654321,
		IsTeacher:    true,
		IsActive:     false,
	}, info["teach"])

	// Unknown logins still appear, with empty directory fields.
	assert.Equal(t, types.MemberInfo{}, info["ghost"])
}

func TestLookupMemberInfoEmptyInput(t *testing.T) {
	manager := newTestManager(t)

	info, err := manager.LookupMemberInfo(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, info)
}

func TestCloseRejectsWrites(t *testing.T) {
	manager, err := NewManager(filepath.Join(t.TempDir(), "test.db"), 5*time.Minute)
	require.NoError(t, err)
	require.NoError(t, manager.Close())

	room := poll.NewRoom("demo", "Demo", "teacher1", "")
	err = manager.UpsertRoom(context.Background(), room)
	assert.ErrorIs(t, err, ErrManagerClosed)

	// Close is idempotent.
	assert.NoError(t, manager.Close())
}
