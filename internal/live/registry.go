package live

import "sync"

// Registry tracks live connections and the two teacher subscription axes:
// the global rooms-overview group and per-room detail groups. Students are
// not subscribers; they are addressed individually through the session map
// using each room's membership.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]Client            // session id -> connection
	overview     map[string]Client            // session id -> subscribed teacher connection
	roomTeachers map[string]map[string]Client // room id -> session id -> connection
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]Client),
		overview:     make(map[string]Client),
		roomTeachers: make(map[string]map[string]Client),
	}
}

// AddSession registers a connection under its session id.
func (r *Registry) AddSession(client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[client.SessionID()] = client
}

// RemoveSession drops a connection and every subscription it held.
func (r *Registry) RemoveSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	delete(r.overview, sessionID)
	for roomID, subscribers := range r.roomTeachers {
		delete(subscribers, sessionID)
		if len(subscribers) == 0 {
			delete(r.roomTeachers, roomID)
		}
	}
}

// Session returns the connection bound to the session id.
func (r *Registry) Session(sessionID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.sessions[sessionID]
	return client, ok
}

// SessionCount returns the number of live connections.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SubscribeOverview adds a teacher connection to the rooms-overview group.
func (r *Registry) SubscribeOverview(client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overview[client.SessionID()] = client
}

// UnsubscribeOverview removes a session from the rooms-overview group.
func (r *Registry) UnsubscribeOverview(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overview, sessionID)
}

// OverviewSubscribers snapshots the rooms-overview group.
func (r *Registry) OverviewSubscribers() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subscribers := make([]Client, 0, len(r.overview))
	for _, client := range r.overview {
		subscribers = append(subscribers, client)
	}
	return subscribers
}

// SubscribeRoom adds a teacher connection to a room's detail group.
func (r *Registry) SubscribeRoom(roomID string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roomTeachers[roomID] == nil {
		r.roomTeachers[roomID] = make(map[string]Client)
	}
	r.roomTeachers[roomID][client.SessionID()] = client
}

// UnsubscribeRoom removes a session from a room's detail group.
func (r *Registry) UnsubscribeRoom(roomID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subscribers, ok := r.roomTeachers[roomID]; ok {
		delete(subscribers, sessionID)
		if len(subscribers) == 0 {
			delete(r.roomTeachers, roomID)
		}
	}
}

// RoomSubscribers snapshots a room's teacher detail group.
func (r *Registry) RoomSubscribers(roomID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subscribers := make([]Client, 0, len(r.roomTeachers[roomID]))
	for _, client := range r.roomTeachers[roomID] {
		subscribers = append(subscribers, client)
	}
	return subscribers
}

// CloseRoom tears down a room's teacher detail group and returns its last
// subscribers so the caller can deliver the terminal notice. No further
// broadcasts can target the group afterwards.
func (r *Registry) CloseRoom(roomID string) []Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	subscribers := make([]Client, 0, len(r.roomTeachers[roomID]))
	for _, client := range r.roomTeachers[roomID] {
		subscribers = append(subscribers, client)
	}
	delete(r.roomTeachers, roomID)
	return subscribers
}
