package sprite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// ErrDriverClosed is returned by Start after the driver was closed
var ErrDriverClosed = errors.New("animation driver closed")

// DriverState is the lifecycle state of an AnimationDriver
type DriverState int

const (
	DriverIdle DriverState = iota
	DriverRunning
	DriverStopped
)

// String returns the string representation of the driver state
func (s DriverState) String() string {
	switch s {
	case DriverIdle:
		return "Idle"
	case DriverRunning:
		return "Running"
	case DriverStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// DriverOption configures an AnimationDriver
type DriverOption func(*AnimationDriver)

// WithFrameObserver registers fn to be called from the animation goroutine
// each time a frame index is published. fn must not block.
func WithFrameObserver(fn func(frame int)) DriverOption {
	return func(d *AnimationDriver) {
		d.observer = fn
	}
}

// WithDriverLogger sets the logger used for lifecycle messages
func WithDriverLogger(l *log.Logger) DriverOption {
	return func(d *AnimationDriver) {
		d.logger = l
	}
}

// AnimationDriver advances a frame index over [start, end] every interval on its own goroutine.
//
// The goroutine is spawned by the first Start and lives until Close. While stopped it parks on
// a wake channel; Start and Resume wake it again. The published index is the only state the
// render path reads and it is an atomic, so Current never blocks.
type AnimationDriver struct {
	frames  int
	current atomic.Int32

	mu       sync.Mutex
	state    DriverState
	start    int
	end      int
	interval time.Duration
	spawned  bool
	closed   bool
	ack      chan struct{} // closed by the loop once it parks after a stop

	wake      chan struct{}
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once

	observer func(int)
	logger   *log.Logger
}

// NewAnimationDriver creates an idle driver for a buffer of the given frame count
func NewAnimationDriver(frames int, opts ...DriverOption) *AnimationDriver {
	d := &AnimationDriver{
		frames: frames,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start animates frames start..end inclusive, advancing every interval.
// The range must satisfy 0 <= start <= end < N; otherwise ErrInvalidRange is returned
// and the driver keeps its previous state.
func (d *AnimationDriver) Start(start, end int, interval time.Duration) error {
	if start < 0 || start > end || end >= d.frames || interval < 0 {
		return fmt.Errorf("%w: [%d,%d] every %s with %d frames", ErrInvalidRange, start, end, interval, d.frames)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDriverClosed
	}
	d.start, d.end, d.interval = start, end, interval
	d.state = DriverRunning
	spawn := !d.spawned
	d.spawned = true
	d.mu.Unlock()

	if spawn {
		d.logger.Debug("animation loop spawned", "start", start, "end", end, "interval", interval)
		go d.run()
		return nil
	}
	d.signal()
	return nil
}

// Stop parks the animation. The current index stays where it is.
// Stop does not wait: one or two further advances may still be observed.
func (d *AnimationDriver) Stop() {
	d.mu.Lock()
	if d.state == DriverRunning {
		d.state = DriverStopped
	}
	d.mu.Unlock()
	d.signal()
}

// StopWait stops the driver and waits until the animation goroutine has parked.
// It returns ctx.Err() if the acknowledgement does not arrive in time.
func (d *AnimationDriver) StopWait(ctx context.Context) error {
	d.mu.Lock()
	if !d.spawned || d.closed {
		d.mu.Unlock()
		return nil
	}
	if d.state == DriverRunning {
		d.state = DriverStopped
	}
	if d.ack == nil {
		d.ack = make(chan struct{})
	}
	ack := d.ack
	d.mu.Unlock()

	d.signal()

	select {
	case <-ack:
		return nil
	case <-d.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resume restarts a stopped driver with its last range and interval.
// It reports whether the driver was restarted.
func (d *AnimationDriver) Resume() bool {
	d.mu.Lock()
	if d.state != DriverStopped || d.closed {
		d.mu.Unlock()
		return false
	}
	d.state = DriverRunning
	d.mu.Unlock()
	d.signal()
	return true
}

// Close ends the animation goroutine. The driver cannot be started again.
func (d *AnimationDriver) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.state = DriverStopped
		spawned := d.spawned
		d.mu.Unlock()

		close(d.done)
		if spawned {
			<-d.exited
		}
	})
}

// State returns the lifecycle state
func (d *AnimationDriver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Range returns the configured range and interval
func (d *AnimationDriver) Range() (start, end int, interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.start, d.end, d.interval
}

// Current returns the last published frame index
func (d *AnimationDriver) Current() int {
	return int(d.current.Load())
}

// SetCurrent shows frame i while the driver is not running.
// It is ignored while running since the loop would overwrite it on its next advance.
func (d *AnimationDriver) SetCurrent(i int) error {
	if i < 0 || i >= d.frames {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, d.frames)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DriverRunning {
		return nil
	}
	d.current.Store(int32(i))
	return nil
}

// Frames returns N, the frame count the driver validates ranges against
func (d *AnimationDriver) Frames() int {
	return d.frames
}

func (d *AnimationDriver) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *AnimationDriver) run() {
	defer close(d.exited)

	next := -1
	for {
		d.mu.Lock()
		if d.state != DriverRunning {
			if d.ack != nil {
				close(d.ack)
				d.ack = nil
			}
			d.mu.Unlock()

			select {
			case <-d.wake:
				continue
			case <-d.done:
				return
			}
		}
		start, end, interval := d.start, d.end, d.interval
		d.mu.Unlock()

		if next < start || next > end {
			next = start
		}
		d.current.Store(int32(next))
		if d.observer != nil {
			d.observer(next)
		}
		next++

		if !d.wait(interval) {
			return
		}
	}
}

// wait suspends for interval. A wake signal cuts the wait short; that is not an error,
// the loop simply re-reads its state. It returns false once the driver is closed.
func (d *AnimationDriver) wait(interval time.Duration) bool {
	t := time.NewTimer(interval)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-d.wake:
		return true
	case <-d.done:
		return false
	}
}
