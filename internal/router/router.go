package router

import (
	"context"
	"encoding/json"
	"log"

	"quickpoll/internal/live"
	"quickpoll/internal/poll"
	"quickpoll/pkg/types"
)

// Store is the slice of the persistence gateway the router mutates through.
type Store interface {
	UpsertRoom(ctx context.Context, room *poll.Room) error
	DeleteRoom(ctx context.Context, roomID string) error
	LookupMemberInfo(ctx context.Context, logins []string, activeLogins map[string]bool) (map[string]types.MemberInfo, error)
}

// Router maps inbound events onto suite/room operations, gates teacher-only
// actions against the configured allow-list, persists structural mutations
// and triggers the matching broadcasts. Every inbound event carries an
// already-authenticated username and session id; the router trusts both.
type Router struct {
	suite       *poll.Suite
	store       Store
	registry    *live.Registry
	broadcaster *live.Broadcaster
	teachers    map[string]bool
	limiter     *RateLimiter
}

// NewRouter creates an event router.
func NewRouter(suite *poll.Suite, store Store, registry *live.Registry, broadcaster *live.Broadcaster, teachers []string) *Router {
	teacherSet := make(map[string]bool, len(teachers))
	for _, login := range teachers {
		teacherSet[login] = true
	}
	return &Router{
		suite:       suite,
		store:       store,
		registry:    registry,
		broadcaster: broadcaster,
		teachers:    teacherSet,
		limiter:     NewRateLimiter(),
	}
}

func (r *Router) isTeacher(username string) bool {
	return r.teachers[username]
}

// Limiter exposes the rate limiter for periodic cleanup.
func (r *Router) Limiter() *RateLimiter {
	return r.limiter
}

// Connect registers a freshly established connection.
func (r *Router) Connect(client live.Client) {
	r.registry.AddSession(client)
	log.Printf("Connected: user=%s session=%s", client.Username(), client.SessionID())
}

// Disconnect processes a transport-level disconnect atomically against all
// rooms: the session is dropped from the registry and evicted from every
// room it occupied, with the affected teacher channels refreshed.
func (r *Router) Disconnect(client live.Client) {
	sessionID := client.SessionID()
	r.registry.RemoveSession(sessionID)
	r.suite.Leave(sessionID, func(room *poll.Room) {
		r.broadcaster.RoomDetail(room)
	})
	r.broadcaster.RoomsOverview()
	log.Printf("Disconnected: user=%s session=%s", client.Username(), sessionID)
}

// HandleEvent dispatches one inbound request and always acknowledges it.
// Structural requests that fail validation or authorization acknowledge with
// an empty payload; only joinRoom-family and subscribeRoom report explicit
// rejection reasons.
func (r *Router) HandleEvent(ctx context.Context, client live.Client, req *types.Request) {
	if !r.limiter.Allow(client.SessionID()) {
		log.Printf("Rate limit exceeded: session=%s event=%s", client.SessionID(), req.Event)
		r.respond(client, req, nil)
		return
	}

	switch req.Event {
	case "joinRoom":
		r.handleJoinRoom(client, req, false)
	case "forceJoinRoom":
		r.handleJoinRoom(client, req, true)
	case "answerUpdate":
		r.handleAnswerUpdate(client, req)
	case "subscribeRooms":
		r.handleSubscribeRooms(client, req)
	case "unsubscribeRooms":
		r.handleUnsubscribeRooms(client, req)
	case "subscribeRoom":
		r.handleSubscribeRoom(client, req)
	case "unsubscribeRoom":
		r.handleUnsubscribeRoom(client, req)
	case "createRoom":
		r.handleCreateRoom(ctx, client, req)
	case "deleteRoom":
		r.handleDeleteRoom(ctx, client, req)
	case "addWidget":
		r.handleAddWidget(ctx, client, req)
	case "deleteWidget":
		r.handleDeleteWidget(ctx, client, req)
	case "reorderWidgets":
		r.handleReorderWidgets(ctx, client, req)
	case "changeRoomName":
		r.handleChangeRoomText(ctx, client, req, (*poll.Room).SetName)
	case "changeRoomDescription":
		r.handleChangeRoomText(ctx, client, req, (*poll.Room).SetDescription)
	case "changeWidgetName":
		r.handleChangeWidgetText(ctx, client, req, poll.Widget.SetName)
	case "changeWidgetDescription":
		r.handleChangeWidgetText(ctx, client, req, poll.Widget.SetDescription)
	case "changeWidgetVisibility":
		r.handleChangeWidgetVisibility(ctx, client, req)
	case "changeWidgetMultipleChoice":
		r.handleChangeWidgetMultiple(ctx, client, req)
	case "addChoice":
		r.handleAddChoice(ctx, client, req)
	case "deleteChoice":
		r.handleDeleteChoice(ctx, client, req)
	case "changeChoice":
		r.handleChangeChoice(ctx, client, req)
	case "reorderChoices":
		r.handleReorderChoices(ctx, client, req)
	case "whoAmI":
		r.handleWhoAmI(client, req)
	case "memberInfo":
		r.handleMemberInfo(ctx, client, req)
	default:
		log.Printf("Unknown event: session=%s event=%s", client.SessionID(), req.Event)
		r.respond(client, req, nil)
	}
}

// respond acknowledges a request. Data is nil for silent no-ops.
func (r *Router) respond(client live.Client, req *types.Request, data interface{}) {
	id := req.ID
	message := types.ServerMessage{ID: &id, Event: types.EventResponse, Data: data}
	if err := client.Send(message); err != nil {
		log.Printf("Response send failed: session=%s event=%s err=%v",
			client.SessionID(), req.Event, err)
	}
}

func rejection(reason string) types.RoomState {
	return types.RoomState{Status: types.StatusError, Reason: reason}
}

func (r *Router) handleJoinRoom(client live.Client, req *types.Request, force bool) {
	var params types.RoomParams
	if err := json.Unmarshal(req.Data, &params); err != nil {
		r.respond(client, req, nil)
		return
	}

	room, ok := r.suite.Room(params.RoomID)
	if !ok {
		r.respond(client, req, rejection(types.ReasonNoSuchRoom))
		return
	}

	username := client.Username()
	sessionID := client.SessionID()

	if force {
		if evicted := room.ForceJoin(username, sessionID); evicted != "" {
			r.broadcaster.Evicted(evicted)
		}
	} else if err := room.TryJoin(username, sessionID); err != nil {
		r.respond(client, req, rejection(types.ReasonAlreadyJoined))
		return
	}

	r.broadcaster.RoomsOverview()
	r.broadcaster.RoomDetail(room)
	r.respond(client, req, live.StudentRoomState(room, username))
}

func (r *Router) handleAnswerUpdate(client live.Client, req *types.Request) {
	var params types.AnswerUpdateParams
	if err := json.Unmarshal(req.Data, &params); err != nil {
		r.respond(client, req, nil)
		return
	}

	room, ok := r.suite.Room(params.RoomID)
	if !ok {
		r.respond(client, req, nil)
		return
	}

	// Only the session currently holding the username may submit for it.
	if sessionID, joined := room.MemberSession(client.Username()); !joined || sessionID != client.SessionID() {
		r.respond(client, req, nil)
		return
	}

	room.UpdateAnswers(client.Username(), params.Answers)
	r.broadcaster.RoomDetail(room)
	r.respond(client, req, nil)
}

func (r *Router) handleSubscribeRooms(client live.Client, req *types.Request) {
	if !r.isTeacher(client.Username()) {
		r.respond(client, req, nil)
		return
	}
	r.registry.SubscribeOverview(client)
	r.respond(client, req, r.suite.Overview())
}

func (r *Router) handleUnsubscribeRooms(client live.Client, req *types.Request) {
	if !r.isTeacher(client.Username()) {
		r.respond(client, req, nil)
		return
	}
	r.registry.UnsubscribeOverview(client.SessionID())
	r.respond(client, req, nil)
}

func (r *Router) handleSubscribeRoom(client live.Client, req *types.Request) {
	var params types.RoomParams
	if !r.isTeacher(client.Username()) || json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room, ok := r.suite.Room(params.RoomID)
	if !ok {
		r.respond(client, req, rejection(types.ReasonNoSuchRoom))
		return
	}
	r.registry.SubscribeRoom(room.ID(), client)
	r.respond(client, req, live.TeacherRoomState(room))
}

func (r *Router) handleUnsubscribeRoom(client live.Client, req *types.Request) {
	var params types.RoomParams
	if !r.isTeacher(client.Username()) || json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	if r.suite.HasRoom(params.RoomID) {
		r.registry.UnsubscribeRoom(params.RoomID, client.SessionID())
	}
	r.respond(client, req, nil)
}

func (r *Router) handleCreateRoom(ctx context.Context, client live.Client, req *types.Request) {
	username := client.Username()
	if !r.isTeacher(username) {
		r.respond(client, req, nil)
		return
	}
	room, err := r.suite.AddRoom("", "", username, "")
	if err != nil {
		log.Printf("Room creation failed: user=%s err=%v", username, err)
		r.respond(client, req, nil)
		return
	}
	r.saveRoom(ctx, room)
	r.broadcaster.RoomsOverview()
	r.respond(client, req, room.ID())
}

func (r *Router) handleDeleteRoom(ctx context.Context, client live.Client, req *types.Request) {
	var params types.RoomParams
	if !r.isTeacher(client.Username()) || json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room, ok := r.suite.Room(params.RoomID)
	if !ok {
		r.respond(client, req, nil)
		return
	}

	// Capture the membership before deregistration so every still-connected
	// member gets its terminal notice.
	memberSessionIDs := make([]string, 0)
	for _, sessionID := range room.MemberSessions() {
		memberSessionIDs = append(memberSessionIDs, sessionID)
	}

	r.suite.DeleteRoom(params.RoomID)
	if err := r.store.DeleteRoom(ctx, params.RoomID); err != nil {
		log.Printf("Room delete persistence failed: room=%s err=%v", params.RoomID, err)
	}
	r.broadcaster.RoomClosed(params.RoomID, memberSessionIDs)
	r.broadcaster.RoomsOverview()
	r.respond(client, req, nil)
}

// teacherRoom resolves the teacher gate plus room lookup shared by every
// structural edit. A nil room means the request was already acknowledged as
// a silent no-op.
func (r *Router) teacherRoom(client live.Client, req *types.Request, roomID string) *poll.Room {
	if !r.isTeacher(client.Username()) {
		r.respond(client, req, nil)
		return nil
	}
	room, ok := r.suite.Room(roomID)
	if !ok {
		r.respond(client, req, nil)
		return nil
	}
	return room
}

// saveRoom persists a mutated room. The in-memory state is authoritative; a
// failed write leaves it ahead of storage until the next successful write.
func (r *Router) saveRoom(ctx context.Context, room *poll.Room) {
	if err := r.store.UpsertRoom(ctx, room); err != nil {
		log.Printf("Room persistence failed: room=%s err=%v", room.ID(), err)
	}
}

// finishLayoutChange is the common tail of every successful structural edit:
// persist, re-push both role projections, acknowledge with the teacher view.
func (r *Router) finishLayoutChange(ctx context.Context, client live.Client, req *types.Request, room *poll.Room) {
	r.saveRoom(ctx, room)
	r.broadcaster.RoomLayout(room)
	r.respond(client, req, live.TeacherRoomState(room))
}

func (r *Router) handleAddWidget(ctx context.Context, client live.Client, req *types.Request) {
	var params types.AddWidgetParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}

	switch params.Type {
	case poll.TypeText:
		room.AddWidget(poll.NewTextWidget("New text question"))
	case poll.TypeChoice:
		room.AddWidget(poll.NewChoiceWidget("New choice question", false, nil))
	default:
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleDeleteWidget(ctx context.Context, client live.Client, req *types.Request) {
	var params types.WidgetParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	room.DeleteWidget(params.WidgetID)
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleReorderWidgets(ctx context.Context, client live.Client, req *types.Request) {
	var params types.ReorderWidgetsParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}

	// The supplied ids must be a bijection onto the current widget ids; the
	// rebuild itself assumes it.
	if !isPermutation(params.WidgetIDs, room.WidgetIDs()) {
		r.respond(client, req, nil)
		return
	}
	if err := room.ReorderWidgets(params.WidgetIDs); err != nil {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

// isPermutation reports whether ids names exactly the elements of current.
func isPermutation(ids, current []int) bool {
	if len(ids) != len(current) {
		return false
	}
	remaining := make(map[int]int, len(current))
	for _, id := range current {
		remaining[id]++
	}
	for _, id := range ids {
		if remaining[id] == 0 {
			return false
		}
		remaining[id]--
	}
	return true
}

func (r *Router) handleChangeRoomText(ctx context.Context, client live.Client, req *types.Request, set func(*poll.Room, string)) {
	var params types.RoomTextParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	set(room, params.Value)
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleChangeWidgetText(ctx context.Context, client live.Client, req *types.Request, set func(poll.Widget, string)) {
	var params types.WidgetTextParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	if !room.UpdateWidget(params.WidgetID, func(w poll.Widget) { set(w, params.Value) }) {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleChangeWidgetVisibility(ctx context.Context, client live.Client, req *types.Request) {
	var params types.WidgetFlagParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	if !room.UpdateWidget(params.WidgetID, func(w poll.Widget) { w.SetVisible(params.Value) }) {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleChangeWidgetMultiple(ctx context.Context, client live.Client, req *types.Request) {
	var params types.WidgetFlagParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	ok := room.UpdateChoiceWidget(params.WidgetID, func(w *poll.ChoiceWidget) bool {
		w.SetMultiple(params.Value)
		return true
	})
	if !ok {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleAddChoice(ctx context.Context, client live.Client, req *types.Request) {
	var params types.WidgetParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	ok := room.UpdateChoiceWidget(params.WidgetID, func(w *poll.ChoiceWidget) bool {
		w.AddChoice(poll.NewChoice(""))
		return true
	})
	if !ok {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleDeleteChoice(ctx context.Context, client live.Client, req *types.Request) {
	var params types.ChoiceParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	ok := room.UpdateChoiceWidget(params.WidgetID, func(w *poll.ChoiceWidget) bool {
		if w.Choice(params.ChoiceID) == nil {
			return false
		}
		w.DeleteChoice(params.ChoiceID)
		return true
	})
	if !ok {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleChangeChoice(ctx context.Context, client live.Client, req *types.Request) {
	var params types.ChoiceTextParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	ok := room.UpdateChoiceWidget(params.WidgetID, func(w *poll.ChoiceWidget) bool {
		choice := w.Choice(params.ChoiceID)
		if choice == nil {
			return false
		}
		choice.SetText(params.Value)
		return true
	})
	if !ok {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleReorderChoices(ctx context.Context, client live.Client, req *types.Request) {
	var params types.ReorderChoicesParams
	if json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room := r.teacherRoom(client, req, params.RoomID)
	if room == nil {
		return
	}
	ok := room.UpdateChoiceWidget(params.WidgetID, func(w *poll.ChoiceWidget) bool {
		return w.ReorderChoices(params.ChoiceIDs) == nil
	})
	if !ok {
		r.respond(client, req, nil)
		return
	}
	r.finishLayoutChange(ctx, client, req, room)
}

func (r *Router) handleWhoAmI(client live.Client, req *types.Request) {
	roles := []string{"student"}
	if r.isTeacher(client.Username()) {
		roles = append(roles, "teacher")
	}
	r.respond(client, req, roles)
}

func (r *Router) handleMemberInfo(ctx context.Context, client live.Client, req *types.Request) {
	var params types.RoomParams
	if !r.isTeacher(client.Username()) || json.Unmarshal(req.Data, &params) != nil {
		r.respond(client, req, nil)
		return
	}
	room, ok := r.suite.Room(params.RoomID)
	if !ok {
		r.respond(client, req, rejection(types.ReasonNoSuchRoom))
		return
	}

	logins, activeLogins := room.KnownLogins()
	info, err := r.store.LookupMemberInfo(ctx, logins, activeLogins)
	if err != nil {
		log.Printf("Member info lookup failed: room=%s err=%v", params.RoomID, err)
		r.respond(client, req, nil)
		return
	}
	r.respond(client, req, info)
}
