package poll

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRoomGeneratesUniqueIDs(t *testing.T) {
	suite := NewSuite()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := suite.AddRoom("", "", "teacher1", "")
		require.NoError(t, err)
		assert.False(t, seen[room.ID()])
		seen[room.ID()] = true
	}
}

func TestGeneratedIDFormat(t *testing.T) {
	suite := NewSuite()
	room, err := suite.AddRoom("", "", "teacher1", "")
	require.NoError(t, err)

	id := room.ID()
	require.NotEmpty(t, id)
	// Three concatenated capitalized words: letters only, starts uppercase.
	caps := 0
	for _, r := range id {
		require.True(t, unicode.IsLetter(r))
		if unicode.IsUpper(r) {
			caps++
		}
	}
	assert.Equal(t, 3, caps)
}

func TestAddRoomWithExplicitID(t *testing.T) {
	suite := NewSuite()
	room, err := suite.AddRoom("demo", "Demo", "system", "a demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", room.ID())

	got, ok := suite.Room("demo")
	require.True(t, ok)
	assert.Same(t, room, got)
	assert.True(t, suite.HasRoom("demo"))
}

func TestDeleteRoom(t *testing.T) {
	suite := NewSuite()
	_, err := suite.AddRoom("demo", "Demo", "system", "")
	require.NoError(t, err)

	suite.DeleteRoom("demo")
	assert.False(t, suite.HasRoom("demo"))

	// Unknown id is a no-op.
	suite.DeleteRoom("demo")
}

func TestAddExistingRoom(t *testing.T) {
	suite := NewSuite()
	room := NewRoom("Loaded", "Loaded room", "teacher1", "")
	suite.AddExistingRoom(room)

	got, ok := suite.Room("Loaded")
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestSuiteLeaveFansOut(t *testing.T) {
	suite := NewSuite()
	first, err := suite.AddRoom("first", "", "teacher1", "")
	require.NoError(t, err)
	second, err := suite.AddRoom("second", "", "teacher1", "")
	require.NoError(t, err)
	third, err := suite.AddRoom("third", "", "teacher1", "")
	require.NoError(t, err)

	first.Join("alice", "session-1")
	second.Join("alice", "session-1")
	third.Join("bob", "session-2")

	var notified []string
	suite.Leave("session-1", func(room *Room) {
		notified = append(notified, room.ID())
	})

	assert.ElementsMatch(t, []string{"first", "second"}, notified)
	assert.Equal(t, 0, first.ActiveMemberCount())
	assert.Equal(t, 0, second.ActiveMemberCount())
	assert.Equal(t, 1, third.ActiveMemberCount())
}

func TestOverview(t *testing.T) {
	suite := NewSuite()
	room, err := suite.AddRoom("demo", "Demo", "teacher1", "")
	require.NoError(t, err)
	room.Join("alice", "session-1")
	room.Join("bob", "session-2")

	overview := suite.Overview()
	require.Len(t, overview, 1)
	assert.Equal(t, "demo", overview[0].ID)
	assert.Equal(t, "Demo", overview[0].Name)
	assert.Equal(t, "teacher1", overview[0].Author)
	assert.Equal(t, 2, overview[0].ActiveMembers)
}
