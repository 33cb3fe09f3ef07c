package poll

import (
	"math"

	"quickpoll/pkg/types"
)

// Widget type tags. Every widget is exactly one of these two variants;
// anything else in persisted data is a fatal load error.
const (
	TypeText   = "text"
	TypeChoice = "choice"
)

// Widget is one question unit inside a room. Implementations are not safe
// for concurrent use on their own; the owning room's lock serializes all
// access.
type Widget interface {
	ID() int
	Name() string
	SetName(name string)
	Description() string
	SetDescription(description string)
	Visible() bool
	SetVisible(visible bool)
	Type() string
	Layout() types.WidgetLayout
	// IsValidAnswer reports whether a JSON-decoded submitted value has the
	// right shape for this widget.
	IsValidAnswer(value interface{}) bool

	setID(id int)
}

// widgetBase carries the attributes shared by both variants.
type widgetBase struct {
	id          int
	name        string
	description string
	visible     bool
}

func (w *widgetBase) ID() int                 { return w.id }
func (w *widgetBase) setID(id int)            { w.id = id }
func (w *widgetBase) Name() string            { return w.name }
func (w *widgetBase) SetName(name string)     { w.name = name }
func (w *widgetBase) Description() string     { return w.description }
func (w *widgetBase) SetDescription(d string) { w.description = d }
func (w *widgetBase) Visible() bool           { return w.visible }
func (w *widgetBase) SetVisible(visible bool) { w.visible = visible }

func (w *widgetBase) baseLayout(widgetType string) types.WidgetLayout {
	return types.WidgetLayout{
		ID:          w.id,
		Name:        w.name,
		Description: w.description,
		Visible:     w.visible,
		Type:        widgetType,
	}
}

// TextWidget collects free text. Any string, including the empty one, is a
// valid answer.
type TextWidget struct {
	widgetBase
}

// NewTextWidget creates a text widget. The id is assigned when the widget is
// added to a room.
func NewTextWidget(name string) *TextWidget {
	return &TextWidget{widgetBase: widgetBase{name: name}}
}

func (w *TextWidget) Type() string { return TypeText }

func (w *TextWidget) Layout() types.WidgetLayout {
	return w.baseLayout(TypeText)
}

func (w *TextWidget) IsValidAnswer(value interface{}) bool {
	_, ok := value.(string)
	return ok
}

// Choice is one selectable option of a choice widget.
type Choice struct {
	id   int
	text string
}

// NewChoice creates a choice. The id is assigned when the choice is added to
// a widget.
func NewChoice(text string) *Choice {
	return &Choice{text: text}
}

func (c *Choice) ID() int             { return c.id }
func (c *Choice) Text() string        { return c.text }
func (c *Choice) SetText(text string) { c.text = text }

func (c *Choice) Layout() types.ChoiceLayout {
	return types.ChoiceLayout{ID: c.id, Text: c.text}
}

// ChoiceWidget collects a selection from an ordered list of choices, either
// a single choice id or a list of them depending on Multiple.
type ChoiceWidget struct {
	widgetBase
	choices         []*Choice
	choiceIDCounter int
	multiple        bool
}

// NewChoiceWidget creates a choice widget and assigns ids to the initial
// choices.
func NewChoiceWidget(name string, multiple bool, choices []*Choice) *ChoiceWidget {
	w := &ChoiceWidget{
		widgetBase: widgetBase{name: name},
		multiple:   multiple,
	}
	for _, choice := range choices {
		w.AddChoice(choice)
	}
	return w
}

func (w *ChoiceWidget) Type() string { return TypeChoice }

func (w *ChoiceWidget) Multiple() bool            { return w.multiple }
func (w *ChoiceWidget) SetMultiple(multiple bool) { w.multiple = multiple }

// Choice returns the choice with the given id, or nil if absent.
func (w *ChoiceWidget) Choice(choiceID int) *Choice {
	for _, choice := range w.choices {
		if choice.id == choiceID {
			return choice
		}
	}
	return nil
}

// Choices returns the choices in display order.
func (w *ChoiceWidget) Choices() []*Choice {
	return w.choices
}

// AddChoice assigns the next choice id and appends the choice. Choice ids
// are monotonic and never reused within the widget's lifetime.
func (w *ChoiceWidget) AddChoice(choice *Choice) *Choice {
	w.choiceIDCounter++
	choice.id = w.choiceIDCounter
	w.choices = append(w.choices, choice)
	return choice
}

// DeleteChoice removes the choice with the given id. Unknown ids are a no-op.
func (w *ChoiceWidget) DeleteChoice(choiceID int) {
	kept := w.choices[:0]
	for _, choice := range w.choices {
		if choice.id != choiceID {
			kept = append(kept, choice)
		}
	}
	w.choices = kept
}

// ReorderChoices replaces the display order with the given permutation. The
// id list must be exactly the current choice id set; otherwise the order is
// left untouched and ErrInvalidReorder is returned.
func (w *ChoiceWidget) ReorderChoices(choiceIDs []int) error {
	if len(choiceIDs) != len(w.choices) {
		return ErrInvalidReorder
	}
	byID := make(map[int]*Choice, len(w.choices))
	for _, choice := range w.choices {
		byID[choice.id] = choice
	}
	reordered := make([]*Choice, 0, len(choiceIDs))
	seen := make(map[int]bool, len(choiceIDs))
	for _, id := range choiceIDs {
		choice, ok := byID[id]
		if !ok || seen[id] {
			return ErrInvalidReorder
		}
		seen[id] = true
		reordered = append(reordered, choice)
	}
	w.choices = reordered
	return nil
}

func (w *ChoiceWidget) Layout() types.WidgetLayout {
	layout := w.baseLayout(TypeChoice)
	layout.Choices = make([]types.ChoiceLayout, 0, len(w.choices))
	for _, choice := range w.choices {
		layout.Choices = append(layout.Choices, choice.Layout())
	}
	multiple := w.multiple
	layout.Multiple = &multiple
	return layout
}

// IsValidAnswer accepts a list for multi-select widgets and a single integer
// for single-select ones. The integer is interpreted as a choice id but its
// existence is deliberately not checked, matching the layout-pruning rule.
func (w *ChoiceWidget) IsValidAnswer(value interface{}) bool {
	if w.multiple {
		switch value.(type) {
		case []interface{}, []int:
			return true
		}
		return false
	}
	switch v := value.(type) {
	case int:
		return true
	case float64:
		// JSON numbers decode to float64; only integral values qualify.
		return v == math.Trunc(v) && !math.IsInf(v, 0)
	}
	return false
}
