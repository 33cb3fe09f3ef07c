package poll

import (
	"strconv"
	"sync"

	"quickpoll/pkg/types"
)

// Room is one poll instance: an ordered widget set, the live membership map
// and the collected answers. All exported methods serialize through the
// room's own lock, preserving the single-writer discipline per room.
type Room struct {
	mu sync.RWMutex

	id          string
	name        string
	description string
	author      string

	widgets         []Widget
	widgetIDCounter int

	memberSessions map[string]string              // username -> session id
	memberAnswers  map[string]map[int]interface{} // username -> widget id -> value
}

// NewRoom creates an empty room with the given identity.
func NewRoom(id, name, author, description string) *Room {
	return &Room{
		id:             id,
		name:           name,
		description:    description,
		author:         author,
		memberSessions: make(map[string]string),
		memberAnswers:  make(map[string]map[int]interface{}),
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

func (r *Room) SetName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
}

func (r *Room) Description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.description
}

func (r *Room) SetDescription(description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.description = description
}

func (r *Room) Author() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.author
}

// AddWidget assigns the next widget id and appends the widget to the end of
// the order. Widget ids are strictly increasing and never reused within the
// room's lifetime, even across deletions.
func (r *Room) AddWidget(widget Widget) Widget {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.widgetIDCounter++
	widget.setID(r.widgetIDCounter)
	r.widgets = append(r.widgets, widget)
	return widget
}

// DeleteWidget removes the widget with the given id. Unknown ids are a no-op.
func (r *Room) DeleteWidget(widgetID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, widget := range r.widgets {
		if widget.ID() == widgetID {
			r.widgets = append(r.widgets[:i], r.widgets[i+1:]...)
			return
		}
	}
}

// ReorderWidgets replaces the widget order with the given permutation. The
// caller must have validated that the id sequence is a bijection onto the
// current widget ids; the rebuild itself only catches unknown ids.
func (r *Room) ReorderWidgets(widgetIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := make(map[int]Widget, len(r.widgets))
	for _, widget := range r.widgets {
		byID[widget.ID()] = widget
	}
	reordered := make([]Widget, 0, len(widgetIDs))
	for _, id := range widgetIDs {
		widget, ok := byID[id]
		if !ok {
			return ErrUnknownWidgetID
		}
		reordered = append(reordered, widget)
	}
	r.widgets = reordered
	return nil
}

// WidgetIDs returns the current widget ids in display order.
func (r *Room) WidgetIDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int, 0, len(r.widgets))
	for _, widget := range r.widgets {
		ids = append(ids, widget.ID())
	}
	return ids
}

// UpdateWidget runs fn on the widget with the given id under the room lock.
// It returns false without calling fn when the widget is absent.
func (r *Room) UpdateWidget(widgetID int, fn func(Widget)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	widget := r.widget(widgetID)
	if widget == nil {
		return false
	}
	fn(widget)
	return true
}

// UpdateChoiceWidget is UpdateWidget restricted to choice widgets.
func (r *Room) UpdateChoiceWidget(widgetID int, fn func(*ChoiceWidget) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	widget, ok := r.widget(widgetID).(*ChoiceWidget)
	if !ok {
		return false
	}
	return fn(widget)
}

// widget returns the widget with the given id or nil. Callers hold r.mu.
func (r *Room) widget(widgetID int) Widget {
	for _, widget := range r.widgets {
		if widget.ID() == widgetID {
			return widget
		}
	}
	return nil
}

// MemberSession returns the session currently bound to the username.
func (r *Room) MemberSession(username string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.memberSessions[username]
	return sessionID, ok
}

// MemberSessions returns a copy of the membership map.
func (r *Room) MemberSessions() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make(map[string]string, len(r.memberSessions))
	for username, sessionID := range r.memberSessions {
		members[username] = sessionID
	}
	return members
}

// ActiveMemberCount returns the number of currently bound sessions.
func (r *Room) ActiveMemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.memberSessions)
}

// Join unconditionally binds username to sessionID, overwriting any prior
// binding. The already-joined policy belongs to TryJoin and ForceJoin.
func (r *Room) Join(username, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberSessions[username] = sessionID
}

// TryJoin binds username to sessionID unless a different live session
// already holds the username, in which case ErrAlreadyJoined is returned and
// nothing changes. Re-joining with the same session is idempotent.
func (r *Room) TryJoin(username, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.memberSessions[username]; ok && existing != sessionID {
		return ErrAlreadyJoined
	}
	r.memberSessions[username] = sessionID
	return nil
}

// ForceJoin always binds username to sessionID. When a different session
// held the username it is evicted and its id returned so the caller can
// notify it.
func (r *Room) ForceJoin(username, sessionID string) (evicted string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.memberSessions[username]; ok && existing != sessionID {
		evicted = existing
	}
	r.memberSessions[username] = sessionID
	return evicted
}

// Leave removes the membership entry bound to sessionID, found by linear
// scan, and reports whether one existed.
func (r *Room) Leave(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, session := range r.memberSessions {
		if session == sessionID {
			delete(r.memberSessions, username)
			return true
		}
	}
	return false
}

// UpdateAnswers replaces the member's stored answers with the pruned result
// of validating rawAnswers, keyed by decimal widget id, against the widgets
// currently present in the room. Entries for missing widgets or with
// invalid-shaped values are silently dropped.
func (r *Room) UpdateAnswers(username string, rawAnswers map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberAnswers[username] = r.pruneAnswers(rawAnswers)
}

// pruneAnswers keeps only values for present widgets that pass the widget's
// validity predicate. Callers hold r.mu.
func (r *Room) pruneAnswers(rawAnswers map[string]interface{}) map[int]interface{} {
	pruned := make(map[int]interface{})
	for _, widget := range r.widgets {
		value, ok := rawAnswers[strconv.Itoa(widget.ID())]
		if !ok {
			continue
		}
		if widget.IsValidAnswer(value) {
			pruned[widget.ID()] = value
		}
	}
	return pruned
}

// MemberAnswers returns one member's answers filtered against the widgets
// currently in the room. Entries whose widget was deleted since submission,
// or whose value no longer fits the widget's shape, are dropped. Members
// without submissions yield an empty set, never an error.
func (r *Room) MemberAnswers(username string) map[int]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentAnswers(username)
}

// MembersAnswers returns the filtered answers of every currently joined
// member.
func (r *Room) MembersAnswers() map[string]map[int]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make(map[string]map[int]interface{}, len(r.memberSessions))
	for username := range r.memberSessions {
		all[username] = r.currentAnswers(username)
	}
	return all
}

// currentAnswers re-applies the pruning rule to a member's stored answers so
// layout mutations invalidate answers immediately, not at the member's next
// submission. Callers hold r.mu.
func (r *Room) currentAnswers(username string) map[int]interface{} {
	stored := r.memberAnswers[username]
	answers := make(map[int]interface{}, len(stored))
	for _, widget := range r.widgets {
		value, ok := stored[widget.ID()]
		if !ok {
			continue
		}
		if widget.IsValidAnswer(value) {
			answers[widget.ID()] = value
		}
	}
	return answers
}

// KnownLogins returns every username the room has seen, joined or with
// stored answers, plus the subset that is currently joined.
func (r *Room) KnownLogins() (logins []string, active map[string]bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(r.memberSessions)+len(r.memberAnswers))
	active = make(map[string]bool, len(r.memberSessions))
	for username := range r.memberSessions {
		seen[username] = true
		active[username] = true
	}
	for username := range r.memberAnswers {
		seen[username] = true
	}
	logins = make([]string, 0, len(seen))
	for username := range seen {
		logins = append(logins, username)
	}
	return logins, active
}

// StudentLayout projects the room for a student: only visible widgets, no
// author.
func (r *Room) StudentLayout() types.RoomLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	widgets := make([]types.WidgetLayout, 0, len(r.widgets))
	for _, widget := range r.widgets {
		if widget.Visible() {
			widgets = append(widgets, widget.Layout())
		}
	}
	return types.RoomLayout{
		ID:          r.id,
		Name:        r.name,
		Description: r.description,
		Widgets:     widgets,
	}
}

// TeacherLayout projects the room for a teacher: every widget regardless of
// visibility, author included.
func (r *Room) TeacherLayout() types.RoomLayout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	widgets := make([]types.WidgetLayout, 0, len(r.widgets))
	for _, widget := range r.widgets {
		widgets = append(widgets, widget.Layout())
	}
	return types.RoomLayout{
		ID:          r.id,
		Name:        r.name,
		Description: r.description,
		Author:      r.author,
		Widgets:     widgets,
	}
}
