package live

import (
	"log"

	"quickpoll/internal/poll"
	"quickpoll/pkg/types"
)

// Broadcaster turns room mutations into the right set of outbound pushes:
// the full overview list to the global teacher group, the teacher projection
// to a room's detail group, and the student projection to each joined
// member's own connection. Send failures are logged and skipped; a dead
// connection is cleaned up by its own read loop.
type Broadcaster struct {
	registry *Registry
	suite    *poll.Suite
}

// NewBroadcaster creates a broadcaster over the given registry and suite.
func NewBroadcaster(registry *Registry, suite *poll.Suite) *Broadcaster {
	return &Broadcaster{registry: registry, suite: suite}
}

// TeacherRoomState builds the teacher-facing projection of a room: the full
// layout plus every joined member's current answers.
func TeacherRoomState(room *poll.Room) types.RoomState {
	layout := room.TeacherLayout()
	return types.RoomState{
		Status:     types.StatusSuccess,
		RoomLayout: &layout,
		Answers:    room.MembersAnswers(),
	}
}

// StudentRoomState builds the student-facing projection for one member:
// visible widgets only plus that member's own answers, never anyone else's.
func StudentRoomState(room *poll.Room, username string) types.RoomState {
	layout := room.StudentLayout()
	return types.RoomState{
		Status:     types.StatusSuccess,
		RoomLayout: &layout,
		Answers:    room.MemberAnswers(username),
	}
}

func roomNotFoundState() types.RoomState {
	return types.RoomState{Status: types.StatusError, Reason: types.ReasonNoSuchRoom}
}

// RoomsOverview pushes the current room list to every overview subscriber.
func (b *Broadcaster) RoomsOverview() {
	overview := b.suite.Overview()
	for _, client := range b.registry.OverviewSubscribers() {
		b.send(client, types.ServerMessage{Event: types.EventRooms, Data: overview})
	}
}

// RoomDetail refreshes a room's teacher detail group. Used when membership
// or answers changed but the layout did not; students are not re-pushed
// because their own view is unchanged.
func (b *Broadcaster) RoomDetail(room *poll.Room) {
	state := TeacherRoomState(room)
	for _, client := range b.registry.RoomSubscribers(room.ID()) {
		b.send(client, types.ServerMessage{Event: types.EventRoom, Data: state})
	}
}

// RoomLayout refreshes a room's teacher detail group and individually
// addresses every joined member with the student projection and their own
// pruned answers.
func (b *Broadcaster) RoomLayout(room *poll.Room) {
	b.RoomDetail(room)
	for username, sessionID := range room.MemberSessions() {
		client, ok := b.registry.Session(sessionID)
		if !ok {
			continue
		}
		b.send(client, types.ServerMessage{
			Event: types.EventRoomUpdate,
			Data:  StudentRoomState(room, username),
		})
	}
}

// RoomClosed delivers exactly one terminal not-found notice to the room's
// teacher subscribers and to every member session it still had, then the
// subscription group is gone. memberSessionIDs is the membership captured
// before the room was deregistered.
func (b *Broadcaster) RoomClosed(roomID string, memberSessionIDs []string) {
	state := roomNotFoundState()
	for _, client := range b.registry.CloseRoom(roomID) {
		b.send(client, types.ServerMessage{Event: types.EventRoom, Data: state})
	}
	for _, sessionID := range memberSessionIDs {
		client, ok := b.registry.Session(sessionID)
		if !ok {
			continue
		}
		b.send(client, types.ServerMessage{Event: types.EventRoomUpdate, Data: state})
	}
}

// Evicted tells a session it lost its membership to a forced join.
func (b *Broadcaster) Evicted(sessionID string) {
	client, ok := b.registry.Session(sessionID)
	if !ok {
		return
	}
	b.send(client, types.ServerMessage{
		Event: types.EventRoomUpdate,
		Data:  types.RoomState{Status: types.StatusError, Reason: types.ReasonAlreadyJoined},
	})
}

func (b *Broadcaster) send(client Client, message types.ServerMessage) {
	if err := client.Send(message); err != nil {
		log.Printf("Broadcast send failed: session=%s event=%s err=%v",
			client.SessionID(), message.Event, err)
	}
}
