package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"quickpoll/internal/poll"
	"quickpoll/pkg/types"
)

// LoadRooms hydrates every persisted room at startup. A stored layout with
// an unrecognized widget type aborts the whole load.
func (m *Manager) LoadRooms(ctx context.Context) ([]*poll.Room, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT id, name, description, author, layout FROM rooms")
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []*poll.Room
	for rows.Next() {
		var id, name, description, author, layoutJSON string
		if err := rows.Scan(&id, &name, &description, &author, &layoutJSON); err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}

		room, err := buildRoom(id, name, author, description, layoutJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild room %s: %w", id, err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room rows: %w", err)
	}
	return rooms, nil
}

// buildRoom reconstructs a room from its persisted widget tree. Widget and
// choice ids are reassigned sequentially in stored order, so a reloaded room
// restarts its id counters exactly one past its last widget.
func buildRoom(id, name, author, description, layoutJSON string) (*poll.Room, error) {
	var widgetLayouts []types.WidgetLayout
	if err := json.Unmarshal([]byte(layoutJSON), &widgetLayouts); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}

	room := poll.NewRoom(id, name, author, description)
	for _, wl := range widgetLayouts {
		widget, err := buildWidget(wl)
		if err != nil {
			return nil, err
		}
		room.AddWidget(widget)
	}
	return room, nil
}

func buildWidget(wl types.WidgetLayout) (poll.Widget, error) {
	switch wl.Type {
	case poll.TypeText:
		widget := poll.NewTextWidget(wl.Name)
		widget.SetDescription(wl.Description)
		widget.SetVisible(wl.Visible)
		return widget, nil

	case poll.TypeChoice:
		choices := make([]*poll.Choice, 0, len(wl.Choices))
		for _, cl := range wl.Choices {
			choices = append(choices, poll.NewChoice(cl.Text))
		}
		multiple := wl.Multiple != nil && *wl.Multiple
		widget := poll.NewChoiceWidget(wl.Name, multiple, choices)
		widget.SetDescription(wl.Description)
		widget.SetVisible(wl.Visible)
		return widget, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidgetType, wl.Type)
	}
}

// UpsertRoom persists the room's structural fields plus the full widget tree
// as a JSON blob. Idempotent on repeated identical calls.
func (m *Manager) UpsertRoom(ctx context.Context, room *poll.Room) error {
	layout := room.TeacherLayout()
	layoutJSON, err := json.Marshal(layout.Widgets)
	if err != nil {
		return fmt.Errorf("failed to marshal room layout: %w", err)
	}

	return m.executeWrite(func(db *sql.DB) error {
		query := `
			INSERT INTO rooms (id, name, description, author, layout)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE
			SET name = excluded.name,
			    description = excluded.description,
			    author = excluded.author,
			    layout = excluded.layout
		`
		if _, err := db.ExecContext(ctx, query,
			layout.ID, layout.Name, layout.Description, layout.Author, string(layoutJSON),
		); err != nil {
			return fmt.Errorf("failed to upsert room %s: %w", layout.ID, err)
		}
		return nil
	})
}

// DeleteRoom removes the persisted row. Absent ids are a no-op.
func (m *Manager) DeleteRoom(ctx context.Context, roomID string) error {
	return m.executeWrite(func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", roomID); err != nil {
			return fmt.Errorf("failed to delete room %s: %w", roomID, err)
		}
		return nil
	})
}
