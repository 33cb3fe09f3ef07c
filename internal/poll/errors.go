package poll

import "errors"

var (
	// ErrAlreadyJoined is returned when a username is held by a different
	// live session in the same room.
	ErrAlreadyJoined = errors.New("username already joined under a different session")

	// ErrInvalidReorder is returned when a reorder request does not name
	// exactly the current id set.
	ErrInvalidReorder = errors.New("reorder ids do not match the current id set")

	// ErrUnknownWidgetID is returned by the unchecked widget-order rebuild
	// when the caller failed to pre-validate the id sequence.
	ErrUnknownWidgetID = errors.New("unknown widget id")

	// ErrIDSpaceExhausted is returned when room id generation keeps
	// colliding past the retry cap.
	ErrIDSpaceExhausted = errors.New("room id generation retries exhausted")
)
