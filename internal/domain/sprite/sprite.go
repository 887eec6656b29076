package sprite

import (
	"context"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Surface is anything a sprite can be drawn onto. *ebiten.Image satisfies it.
type Surface interface {
	DrawImage(img *ebiten.Image, options *ebiten.DrawImageOptions)
}

// Sprite draws the frame its AnimationDriver last published.
// Geometry is owned by the render goroutine; only the frame index crosses goroutines.
type Sprite struct {
	width    int
	height   int
	rotation int // degrees
	centerX  int
	centerY  int

	frames *FrameBuffer
	driver *AnimationDriver
	opts   []DriverOption
}

// New creates a sprite drawn at width x height, rotated by rotation degrees.
// Nothing is decoded until Load.
func New(frames *FrameBuffer, width, height, rotation int, opts ...DriverOption) *Sprite {
	return &Sprite{
		width:    width,
		height:   height,
		rotation: rotation,
		frames:   frames,
		driver:   NewAnimationDriver(frames.Len(), opts...),
		opts:     opts,
	}
}

// Clone returns a sprite that shares the FrameBuffer but has its own geometry and a fresh,
// idle driver. Running animation state is never copied.
func (s *Sprite) Clone(opts ...DriverOption) *Sprite {
	if len(opts) == 0 {
		opts = s.opts
	}
	return &Sprite{
		width:    s.width,
		height:   s.height,
		rotation: s.rotation,
		centerX:  s.centerX,
		centerY:  s.centerY,
		frames:   s.frames,
		driver:   NewAnimationDriver(s.frames.Len(), opts...),
		opts:     opts,
	}
}

// Load decodes the sprite's frames. Clones share the result.
func (s *Sprite) Load(ctx context.Context) error {
	return s.frames.Load(ctx)
}

// Draw draws the current frame at (x, y) scaled by zoom.
// A frame that is not loaded, or failed to load, is simply not drawn.
func (s *Sprite) Draw(dst Surface, x, y float64, zoom float64) {
	img, err := s.frames.Frame(s.driver.Current())
	if err != nil {
		return
	}

	op := &ebiten.DrawImageOptions{}
	if s.rotation == 0 {
		b := img.Bounds()
		op.GeoM.Scale(zoom*float64(s.width)/float64(b.Dx()), zoom*float64(s.height)/float64(b.Dy()))
	} else {
		// Rotated leg: rotate about the pivot, then an absolute zoom scale.
		// The draw size is not applied here.
		cx, cy := float64(s.centerX), float64(s.centerY)
		op.GeoM.Translate(-cx, -cy)
		op.GeoM.Rotate(float64(s.rotation) * math.Pi / 180)
		op.GeoM.Translate(cx, cy)
		op.GeoM.Scale(zoom, zoom)
	}
	op.GeoM.Translate(x, y)
	dst.DrawImage(img, op)
}

// DrawAt draws the current frame at (x, y) without zoom
func (s *Sprite) DrawAt(dst Surface, x, y float64) {
	s.Draw(dst, x, y, 1)
}

// StartAnimation animates frames start..end every interval
func (s *Sprite) StartAnimation(start, end int, interval time.Duration) error {
	return s.driver.Start(start, end, interval)
}

// StopAnimation parks the animation on its current frame
func (s *Sprite) StopAnimation() {
	s.driver.Stop()
}

// Close ends the sprite's animation goroutine. The shared FrameBuffer is left alone.
func (s *Sprite) Close() {
	s.driver.Close()
}

// Driver returns the sprite's animation driver
func (s *Sprite) Driver() *AnimationDriver {
	return s.driver
}

// Frames returns the (possibly shared) frame buffer
func (s *Sprite) Frames() *FrameBuffer {
	return s.frames
}

// CurrentFrame returns the index of the frame that Draw would show
func (s *Sprite) CurrentFrame() int {
	return s.driver.Current()
}

// SetCurrentFrame shows frame i while the animation is not running
func (s *Sprite) SetCurrentFrame(i int) error {
	return s.driver.SetCurrent(i)
}

func (s *Sprite) Width() int { return s.width }

func (s *Sprite) SetWidth(w int) { s.width = w }

func (s *Sprite) Height() int { return s.height }

func (s *Sprite) SetHeight(h int) { s.height = h }

// Rotation returns the rotation in degrees
func (s *Sprite) Rotation() int { return s.rotation }

// SetRotation sets the rotation in degrees. The image rotates around its center point.
func (s *Sprite) SetRotation(deg int) { s.rotation = deg }

// Center returns the rotation pivot
func (s *Sprite) Center() (x, y int) { return s.centerX, s.centerY }

// SetCenter sets the rotation pivot in image pixels
func (s *Sprite) SetCenter(x, y int) {
	s.centerX = x
	s.centerY = y
}
