// Package sprite provides frame-animated sprites: a lazily decoded FrameBuffer,
// an autonomous AnimationDriver that advances the visible frame on its own goroutine,
// and the Sprite that draws whatever frame the driver last published.
package sprite

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	slotPending int32 = iota
	slotReady
	slotMissing
)

type frameSlot struct {
	state atomic.Int32
	img   atomic.Pointer[ebiten.Image]
}

// FrameBuffer holds the decoded image sequence of one sprite.
// The number of slots is fixed at construction and nothing is decoded until Load.
// After Load the buffer is read-only and may be shared by any number of sprites.
type FrameBuffer struct {
	fsys  fs.FS
	paths []string
	slots []frameSlot

	mu     sync.Mutex // serializes Load
	loaded atomic.Bool
	result error
}

// NewFrameBuffer creates a buffer for the given image paths, resolved against fsys
func NewFrameBuffer(fsys fs.FS, paths ...string) *FrameBuffer {
	p := make([]string, len(paths))
	for i, path := range paths {
		p[i] = filepath.ToSlash(path)
	}
	return &FrameBuffer{
		fsys:  fsys,
		paths: p,
		slots: make([]frameSlot, len(p)),
	}
}

// Len returns the number of frames N
func (fb *FrameBuffer) Len() int {
	return len(fb.slots)
}

// Paths returns a copy of the source paths
func (fb *FrameBuffer) Paths() []string {
	out := make([]string, len(fb.paths))
	copy(out, fb.paths)
	return out
}

// Loaded reports whether every slot has been processed
func (fb *FrameBuffer) Loaded() bool {
	return fb.loaded.Load()
}

// Load decodes every pending slot in index order.
//
// A slot that fails to decode is marked missing and loading continues with the next one;
// the returned *LoadError lists every failed index. If ctx is cancelled the remaining slots
// stay pending and a later Load picks them up. Once all slots are processed, further calls
// return the first result without decoding anything again.
func (fb *FrameBuffer) Load(ctx context.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.loaded.Load() {
		return fb.result
	}

	var failed []*FrameError
	for i := range fb.slots {
		s := &fb.slots[i]
		switch s.state.Load() {
		case slotReady:
			continue
		case slotMissing:
			failed = append(failed, &FrameError{Index: i, Path: fb.paths[i], Err: ErrFrameMissing})
			continue
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("frame loading interrupted at %d/%d: %w", i, len(fb.slots), err)
		}

		img, err := decodeFrame(fb.fsys, fb.paths[i])
		if err != nil {
			s.state.Store(slotMissing)
			failed = append(failed, &FrameError{Index: i, Path: fb.paths[i], Err: err})
			continue
		}
		s.img.Store(img)
		s.state.Store(slotReady)
	}

	if len(failed) > 0 {
		fb.result = &LoadError{Frames: failed}
	}
	fb.loaded.Store(true)
	return fb.result
}

// Frame returns the decoded image at index i
func (fb *FrameBuffer) Frame(i int) (*ebiten.Image, error) {
	if i < 0 || i >= len(fb.slots) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(fb.slots))
	}
	s := &fb.slots[i]
	switch s.state.Load() {
	case slotReady:
		return s.img.Load(), nil
	case slotMissing:
		return nil, ErrFrameMissing
	default:
		return nil, ErrNotReady
	}
}

func decodeFrame(fsys fs.FS, path string) (*ebiten.Image, error) {
	if fsys == nil {
		return nil, fmt.Errorf("failed to open %s: no filesystem", path)
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return ebiten.NewImageFromImage(src), nil
}
