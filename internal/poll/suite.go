package poll

import (
	"sync"

	"quickpoll/pkg/types"
)

// Id generation retries before giving up. Three words out of the embedded
// list give far more combinations than any realistic room count, so hitting
// the cap means something is seriously wrong.
const idRetryCap = 10000

// Suite is the registry of all rooms, keyed by room id. It exclusively owns
// the room set; rooms never mutate the registry themselves. Structural
// changes serialize through the suite lock, room content changes through
// each room's own lock.
type Suite struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewSuite creates an empty room registry.
func NewSuite() *Suite {
	return &Suite{rooms: make(map[string]*Room)}
}

// generateID builds a fresh human-memorable id from three capitalized
// dictionary words, retrying on collision up to the cap. Callers hold s.mu.
func (s *Suite) generateID() (string, error) {
	for i := 0; i < idRetryCap; i++ {
		id := randomWord() + randomWord() + randomWord()
		if _, exists := s.rooms[id]; !exists {
			return id, nil
		}
	}
	return "", ErrIDSpaceExhausted
}

// AddRoom constructs and registers a new empty room. When id is empty a
// fresh unique id is generated.
func (s *Suite) AddRoom(id, name, author, description string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		generated, err := s.generateID()
		if err != nil {
			return nil, err
		}
		id = generated
	}
	room := NewRoom(id, name, author, description)
	s.rooms[id] = room
	return room, nil
}

// AddExistingRoom registers a fully-built room, bypassing id generation.
// Used when hydrating persisted rooms at startup.
func (s *Suite) AddExistingRoom(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID()] = room
}

// HasRoom reports whether a room with the given id is registered.
func (s *Suite) HasRoom(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok
}

// Room returns the room with the given id.
func (s *Suite) Room(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// DeleteRoom removes the room from the registry. Unknown ids are a no-op.
func (s *Suite) DeleteRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Rooms returns a snapshot of all registered rooms.
func (s *Suite) Rooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Leave broadcasts a session departure to every registered room. For each
// room where the session was actually bound, onLeave is invoked with that
// room so the caller can refresh its subscribers. The whole sweep runs on a
// single registry snapshot so a disconnect is never half-applied.
func (s *Suite) Leave(sessionID string, onLeave func(*Room)) {
	for _, room := range s.Rooms() {
		if room.Leave(sessionID) && onLeave != nil {
			onLeave(room)
		}
	}
}

// Overview lists the identity, author and live member count of every room
// for the teacher rooms-overview channel.
func (s *Suite) Overview() []types.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	overview := make([]types.RoomSummary, 0, len(s.rooms))
	for id, room := range s.rooms {
		overview = append(overview, types.RoomSummary{
			ID:            id,
			Name:          room.Name(),
			Author:        room.Author(),
			ActiveMembers: room.ActiveMemberCount(),
		})
	}
	return overview
}
