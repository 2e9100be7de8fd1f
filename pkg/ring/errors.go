package ring

import "errors"

var (
	// ErrInvalidFrame is returned when admission rejects a frame that fails
	// validation. The frame is released before the error is returned.
	ErrInvalidFrame = errors.New("ring: invalid frame rejected")

	// ErrSceneUnknown is returned when an operation names a scene that has
	// no ring.
	ErrSceneUnknown = errors.New("ring: scene unknown")

	// ErrDisabled is returned when admission runs while the engine is
	// disabled. The frame is released before the error is returned.
	ErrDisabled = errors.New("ring: capture disabled")
)
