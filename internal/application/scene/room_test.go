package scene

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/roomshell/internal/application/state"
	"github.com/younwookim/roomshell/internal/domain/sprite"
)

type countingSurface struct {
	mu    sync.Mutex
	draws int
}

func (c *countingSurface) DrawImage(*ebiten.Image, *ebiten.DrawImageOptions) {
	c.mu.Lock()
	c.draws++
	c.mu.Unlock()
}

func testFrames(t *testing.T, n int) *sprite.FrameBuffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	fsys := fstest.MapFS{}
	paths := make([]string, n)
	for i := range paths {
		paths[i] = "f" + string(rune('a'+i)) + ".png"
		fsys[paths[i]] = &fstest.MapFile{Data: buf.Bytes()}
	}
	return sprite.NewFrameBuffer(fsys, paths...)
}

func TestNewSpriteRoom(t *testing.T) {
	r := NewSpriteRoom("title")

	assert.Equal(t, "title", r.Name())
	assert.Equal(t, state.RoomActive, r.State())
	assert.Empty(t, r.Placements())
}

func TestSpriteRoom_UpdateCountsTicks(t *testing.T) {
	r := NewSpriteRoom("level")

	for i := 0; i < 3; i++ {
		next, err := r.Update(1.0 / 60)
		require.NoError(t, err)
		assert.Nil(t, next)
	}
	assert.Equal(t, uint64(3), r.Ticks())
}

func TestSpriteRoom_UpdateRequestsTransition(t *testing.T) {
	target := NewSpriteRoom("next")
	r := NewSpriteRoom("level", WithUpdate(func(r *SpriteRoom, dt float64) (Room, error) {
		if r.Ticks() == 2 {
			return target, nil
		}
		return nil, nil
	}))

	next, err := r.Update(1.0 / 60)
	require.NoError(t, err)
	assert.Nil(t, next)

	next, err = r.Update(1.0 / 60)
	require.NoError(t, err)
	assert.Same(t, target, next)
}

func TestSpriteRoom_PausedRoomDoesNotTick(t *testing.T) {
	calls := 0
	r := NewSpriteRoom("level", WithUpdate(func(*SpriteRoom, float64) (Room, error) {
		calls++
		return nil, nil
	}))

	require.NoError(t, r.Pause(context.Background()))
	assert.Equal(t, state.RoomPaused, r.State())

	_, err := r.Update(1.0 / 60)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, uint64(0), r.Ticks())
}

func TestSpriteRoom_PauseStopsAndResumeRestarts(t *testing.T) {
	fb := testFrames(t, 4)
	require.NoError(t, fb.Load(context.Background()))

	running := sprite.New(fb, 2, 2, 0)
	idle := running.Clone()
	t.Cleanup(running.Close)
	t.Cleanup(idle.Close)

	r := NewSpriteRoom("level")
	r.Add("running", running, 0, 0, 1)
	r.Add("idle", idle, 10, 0, 1)

	require.NoError(t, running.StartAnimation(0, 3, time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Pause(ctx))

	assert.Equal(t, state.RoomPaused, r.State())
	assert.Equal(t, sprite.DriverStopped, running.Driver().State())
	assert.Equal(t, sprite.DriverIdle, idle.Driver().State())

	frozen := running.CurrentFrame()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, running.CurrentFrame(), "paused room keeps its frames")

	// Pausing twice is a no-op
	require.NoError(t, r.Pause(ctx))

	require.NoError(t, r.Resume())
	assert.Equal(t, state.RoomActive, r.State())
	assert.Equal(t, sprite.DriverRunning, running.Driver().State())
	assert.Equal(t, sprite.DriverIdle, idle.Driver().State(), "resume only restarts what pause stopped")
}

func TestSpriteRoom_PauseFailureLeavesRoomActive(t *testing.T) {
	fb := testFrames(t, 2)
	release := make(chan struct{})
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	// The observer blocks the animation goroutine so it can never acknowledge a stop
	stuck := sprite.New(fb, 2, 2, 0, sprite.WithFrameObserver(func(int) { <-release }))
	t.Cleanup(stuck.Close)
	t.Cleanup(unblock)

	r := NewSpriteRoom("level")
	r.Add("stuck", stuck, 0, 0, 1)
	require.NoError(t, stuck.StartAnimation(0, 1, time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Pause(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, state.RoomActive, r.State())
	assert.Equal(t, sprite.DriverRunning, stuck.Driver().State())
}

func TestSpriteRoom_ResumeActiveIsNoop(t *testing.T) {
	r := NewSpriteRoom("level")
	require.NoError(t, r.Resume())
	assert.Equal(t, state.RoomActive, r.State())
}

func TestSpriteRoom_LoadSharedBufferOnce(t *testing.T) {
	fb := testFrames(t, 3)
	a := sprite.New(fb, 2, 2, 0)
	b := a.Clone()
	t.Cleanup(a.Close)
	t.Cleanup(b.Close)

	r := NewSpriteRoom("level")
	r.Add("a", a, 0, 0, 1)
	r.Add("b", b, 5, 5, 1)

	require.NoError(t, r.Load(context.Background()))
	assert.True(t, fb.Loaded())
}

func TestSpriteRoom_LoadFailuresAreNotFatal(t *testing.T) {
	broken := sprite.NewFrameBuffer(fstest.MapFS{}, "missing.png")
	s := sprite.New(broken, 2, 2, 0)
	t.Cleanup(s.Close)

	r := NewSpriteRoom("level")
	r.Add("broken", s, 0, 0, 1)

	require.NoError(t, r.Load(context.Background()))
	assert.True(t, broken.Loaded())

	surface := &countingSurface{}
	r.Draw(surface)
	assert.Equal(t, 0, surface.draws)
}

func TestSpriteRoom_LoadCancelled(t *testing.T) {
	s := sprite.New(testFrames(t, 2), 2, 2, 0)
	t.Cleanup(s.Close)

	r := NewSpriteRoom("level")
	r.Add("s", s, 0, 0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Load(ctx), context.Canceled)
}

func TestSpriteRoom_DrawSkipsHidden(t *testing.T) {
	fb := testFrames(t, 1)
	require.NoError(t, fb.Load(context.Background()))

	a := sprite.New(fb, 2, 2, 0)
	b := a.Clone()
	t.Cleanup(a.Close)
	t.Cleanup(b.Close)

	r := NewSpriteRoom("level")
	r.Add("a", a, 0, 0, 1)
	hidden := r.Add("b", b, 0, 0, 1)
	hidden.Hidden = true

	surface := &countingSurface{}
	r.Draw(surface)
	assert.Equal(t, 1, surface.draws)

	p, ok := r.Find("b")
	require.True(t, ok)
	assert.Same(t, hidden, p)
	_, ok = r.Find("nope")
	assert.False(t, ok)
}
