package types

// Per-event request payloads. Field names match the JavaScript client.

type RoomParams struct {
	RoomID string `json:"roomId"`
}

type AnswerUpdateParams struct {
	RoomID  string                 `json:"roomId"`
	Answers map[string]interface{} `json:"answers"`
}

type AddWidgetParams struct {
	RoomID string `json:"roomId"`
	Type   string `json:"type"`
}

type WidgetParams struct {
	RoomID   string `json:"roomId"`
	WidgetID int    `json:"widgetId"`
}

type ReorderWidgetsParams struct {
	RoomID    string `json:"roomId"`
	WidgetIDs []int  `json:"widgetIds"`
}

type RoomTextParams struct {
	RoomID string `json:"roomId"`
	Value  string `json:"value"`
}

type WidgetTextParams struct {
	RoomID   string `json:"roomId"`
	WidgetID int    `json:"widgetId"`
	Value    string `json:"value"`
}

type WidgetFlagParams struct {
	RoomID   string `json:"roomId"`
	WidgetID int    `json:"widgetId"`
	Value    bool   `json:"value"`
}

type ChoiceParams struct {
	RoomID   string `json:"roomId"`
	WidgetID int    `json:"widgetId"`
	ChoiceID int    `json:"choiceId"`
}

type ChoiceTextParams struct {
	RoomID   string `json:"roomId"`
	WidgetID int    `json:"widgetId"`
	ChoiceID int    `json:"choiceId"`
	Value    string `json:"value"`
}

type ReorderChoicesParams struct {
	RoomID    string `json:"roomId"`
	WidgetID  int    `json:"widgetId"`
	ChoiceIDs []int  `json:"choiceIds"`
}
