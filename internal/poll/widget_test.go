package poll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextWidgetAnswers(t *testing.T) {
	w := NewTextWidget("Feedback")

	assert.True(t, w.IsValidAnswer("hello"))
	assert.True(t, w.IsValidAnswer(""))
	assert.False(t, w.IsValidAnswer(3))
	assert.False(t, w.IsValidAnswer([]interface{}{"a"}))
	assert.False(t, w.IsValidAnswer(nil))
}

func TestTextWidgetLayout(t *testing.T) {
	w := NewTextWidget("Feedback")
	w.SetDescription("optional")
	w.SetVisible(true)

	layout := w.Layout()
	assert.Equal(t, "Feedback", layout.Name)
	assert.Equal(t, "optional", layout.Description)
	assert.True(t, layout.Visible)
	assert.Equal(t, TypeText, layout.Type)
	assert.Nil(t, layout.Choices)
	assert.Nil(t, layout.Multiple)
}

func TestChoiceWidgetSingleAnswers(t *testing.T) {
	w := NewChoiceWidget("Pick one", false, []*Choice{NewChoice("a"), NewChoice("b")})

	assert.True(t, w.IsValidAnswer(1))
	assert.True(t, w.IsValidAnswer(float64(2)))
	// Permissive on purpose: the integer is not checked against choice ids.
	assert.True(t, w.IsValidAnswer(99))
	assert.False(t, w.IsValidAnswer(1.5))
	assert.False(t, w.IsValidAnswer("1"))
	assert.False(t, w.IsValidAnswer([]interface{}{float64(1)}))
}

func TestChoiceWidgetMultipleAnswers(t *testing.T) {
	w := NewChoiceWidget("Pick many", true, []*Choice{NewChoice("a"), NewChoice("b")})

	assert.True(t, w.IsValidAnswer([]interface{}{float64(1), float64(2)}))
	assert.True(t, w.IsValidAnswer([]interface{}{}))
	assert.True(t, w.IsValidAnswer([]int{1, 2}))
	assert.False(t, w.IsValidAnswer(1))
	assert.False(t, w.IsValidAnswer("a"))
}

func TestChoiceIDsMonotonic(t *testing.T) {
	w := NewChoiceWidget("Pick", false, []*Choice{NewChoice("a"), NewChoice("b")})

	require.Equal(t, 1, w.Choices()[0].ID())
	require.Equal(t, 2, w.Choices()[1].ID())

	w.DeleteChoice(2)
	added := w.AddChoice(NewChoice("c"))
	// Deleted ids are never reused.
	assert.Equal(t, 3, added.ID())
}

func TestChoiceWidgetReorder(t *testing.T) {
	w := NewChoiceWidget("Pick", false, []*Choice{NewChoice("a"), NewChoice("b"), NewChoice("c")})

	require.NoError(t, w.ReorderChoices([]int{3, 1, 2}))
	assert.Equal(t, "c", w.Choices()[0].Text())
	assert.Equal(t, "a", w.Choices()[1].Text())
	assert.Equal(t, "b", w.Choices()[2].Text())
}

func TestChoiceWidgetReorderRejected(t *testing.T) {
	w := NewChoiceWidget("Pick", false, []*Choice{NewChoice("a"), NewChoice("b"), NewChoice("c")})

	cases := []struct {
		name string
		ids  []int
	}{
		{"wrong length", []int{1, 2}},
		{"foreign id", []int{1, 2, 9}},
		{"duplicate id", []int{1, 2, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := w.ReorderChoices(tc.ids)
			assert.ErrorIs(t, err, ErrInvalidReorder)
			// State after a rejected reorder equals state before.
			assert.Equal(t, "a", w.Choices()[0].Text())
			assert.Equal(t, "b", w.Choices()[1].Text())
			assert.Equal(t, "c", w.Choices()[2].Text())
		})
	}
}

func TestChoiceWidgetLayout(t *testing.T) {
	w := NewChoiceWidget("Pick", true, []*Choice{NewChoice("a"), NewChoice("b")})

	layout := w.Layout()
	assert.Equal(t, TypeChoice, layout.Type)
	require.Len(t, layout.Choices, 2)
	assert.Equal(t, 1, layout.Choices[0].ID)
	assert.Equal(t, "a", layout.Choices[0].Text)
	require.NotNil(t, layout.Multiple)
	assert.True(t, *layout.Multiple)
}
