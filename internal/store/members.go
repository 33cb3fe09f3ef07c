package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"quickpoll/pkg/types"
)

// LookupMemberInfo resolves directory records for a set of logins. The
// result maps every requested login; logins missing from the directory get
// an empty display name. A login is active when it appears in activeLogins.
// Empty input yields an empty result without touching the database.
func (m *Manager) LookupMemberInfo(ctx context.Context, logins []string, activeLogins map[string]bool) (map[string]types.MemberInfo, error) {
	result := make(map[string]types.MemberInfo)
	if len(logins) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(logins))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(logins))
	for i, login := range logins {
		args[i] = login
	}

	type personRow struct {
		name string
		uco  int
	}
	people := make(map[string]personRow)

	query := fmt.Sprintf("SELECT login, name, uco FROM people WHERE login IN (%s)", placeholders)
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var login, name string
		var uco sql.NullInt64
		if err := rows.Scan(&login, &name, &uco); err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		people[login] = personRow{name: name, uco: int(uco.Int64)}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", err)
	}

	teacherLogins := make(map[string]bool)
	query = fmt.Sprintf("SELECT login FROM teachers WHERE login IN (%s)", placeholders)
	teacherRows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer func() { _ = teacherRows.Close() }()

	for teacherRows.Next() {
		var login string
		if err := teacherRows.Scan(&login); err != nil {
			return nil, fmt.Errorf("failed to scan teacher row: %w", err)
		}
		teacherLogins[login] = true
	}
	if err := teacherRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teacher rows: %w", err)
	}

	for _, login := range logins {
		person := people[login]
		result[login] = types.MemberInfo{
			DisplayName:  person.name,
			UniversityID: person.uco,
			IsTeacher:    teacherLogins[login],
			IsActive:     activeLogins[login],
		}
	}
	return result, nil
}
