package sprite

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexOutOfRange is returned when a frame index is outside [0, N)
	ErrIndexOutOfRange = errors.New("frame index out of range")

	// ErrNotReady is returned for a slot that has not been loaded yet
	ErrNotReady = errors.New("frame not ready")

	// ErrFrameMissing is returned for a slot whose source failed to decode
	ErrFrameMissing = errors.New("frame missing")

	// ErrInvalidRange is returned by Start when the animation range or interval is invalid
	ErrInvalidRange = errors.New("invalid animation range")
)

// FrameError records a single slot that failed to load
type FrameError struct {
	Index int
	Path  string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// LoadError is returned by FrameBuffer.Load when one or more slots could not be decoded.
// The buffer is still usable; failed slots report ErrFrameMissing.
type LoadError struct {
	Frames []*FrameError
}

func (e *LoadError) Error() string {
	parts := make([]string, len(e.Frames))
	for i, f := range e.Frames {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("failed to load %d frame(s): %s", len(e.Frames), strings.Join(parts, "; "))
}

// Indices returns the failed slot indices in ascending order
func (e *LoadError) Indices() []int {
	out := make([]int, len(e.Frames))
	for i, f := range e.Frames {
		out[i] = f.Index
	}
	return out
}

func (e *LoadError) Unwrap() []error {
	out := make([]error, len(e.Frames))
	for i, f := range e.Frames {
		out[i] = f
	}
	return out
}
