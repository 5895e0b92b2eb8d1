package transport

import "errors"

var (
	// ErrClosed is returned by channels after Close, and by a Transport whose
	// channel is nil.
	ErrClosed = errors.New("transport closed")

	// ErrDrainLimit is returned with the text collected so far when a drain
	// loop reads MaxChunks non-empty chunks without seeing quiescence.
	ErrDrainLimit = errors.New("drain limit reached before channel went quiet")
)
