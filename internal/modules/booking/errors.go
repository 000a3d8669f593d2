package booking

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("booking not found")

	// ErrIllegalTransition means the requested event is not reachable from
	// the booking's current status. The booking is left untouched; callers
	// should re-fetch and retry with a valid event.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrConcurrentUpdate means the booking changed between read and write.
	// Only possible across processes; in-process requests are serialized per
	// booking.
	ErrConcurrentUpdate = errors.New("booking was modified concurrently")

	// ErrNoteRequired guards the override path: every operator-forced status
	// change must carry an audit note.
	ErrNoteRequired = errors.New("audit note is required")
)
