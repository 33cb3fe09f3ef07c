package types

import "encoding/json"

// Server push events. "response" carries the request id of the message it
// acknowledges; the other three are unsolicited pushes.
const (
	EventResponse   = "response"
	EventRooms      = "rooms"
	EventRoom       = "room"
	EventRoomUpdate = "roomUpdate"
)

// Request statuses carried in RoomState and generic acknowledgements.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Rejection reasons reported inline to the requesting client. Everything else
// that goes wrong with a structural request is a silent no-op on the wire.
const (
	ReasonNoSuchRoom    = "noSuchRoom"
	ReasonAlreadyJoined = "alreadyJoined"
)

// Request is the client-to-server envelope. Data is decoded per event.
type Request struct {
	ID    int64           `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServerMessage is the server-to-client envelope for both acknowledgements
// and pushes. ID is set only on responses.
type ServerMessage struct {
	ID    *int64      `json:"id,omitempty"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RoomSummary is one entry of the teacher rooms overview.
type RoomSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Author        string `json:"author"`
	ActiveMembers int    `json:"activeMembers"`
}

// RoomState is the role-specific projection of a room pushed to subscribers
// and returned from join/subscribe acknowledgements. For teachers Answers
// maps username to that member's answers; for students it is the student's
// own answer set. A deleted room is announced as a terminal error state.
type RoomState struct {
	Status     string      `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	RoomLayout *RoomLayout `json:"roomLayout,omitempty"`
	Answers    interface{} `json:"answers,omitempty"`
}

// RoomLayout is the serializable projection of a room. Author is omitted
// from the student variant.
type RoomLayout struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Author      string         `json:"author,omitempty"`
	Widgets     []WidgetLayout `json:"widgets"`
}

// WidgetLayout is the serializable projection of a single widget. Choices and
// Multiple are present only for choice widgets.
type WidgetLayout struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Visible     bool           `json:"visible"`
	Type        string         `json:"type"`
	Choices     []ChoiceLayout `json:"choices,omitempty"`
	Multiple    *bool          `json:"multiple,omitempty"`
}

// ChoiceLayout is one selectable option of a choice widget.
type ChoiceLayout struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// MemberInfo is the directory record resolved for a room member login.
type MemberInfo struct {
	DisplayName  string `json:"displayName"`
	UniversityID int    `json:"universityId"`
	IsTeacher    bool   `json:"isTeacher"`
	IsActive     bool   `json:"isActive"`
}
