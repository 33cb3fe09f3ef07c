package store

import "errors"

var (
	ErrManagerClosed = errors.New("store manager is closed")
	ErrWriteTimeout  = errors.New("write operation timeout")

	// ErrUnknownWidgetType makes a malformed persisted layout a fatal load
	// error; startup must abort rather than silently skip the room.
	ErrUnknownWidgetType = errors.New("unknown widget type in persisted layout")
)
