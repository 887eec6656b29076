package platform

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/roomshell/internal/domain/sprite"
)

type countingTarget struct {
	updates atomic.Int64
	draws   atomic.Int64
	failAt  int64
	err     error
}

func (t *countingTarget) Update() error {
	n := t.updates.Add(1)
	if t.failAt > 0 && n >= t.failAt {
		return t.err
	}
	return nil
}

func (t *countingTarget) DrawTo(screen sprite.Surface) {
	t.draws.Add(1)
	screen.DrawImage(nil, nil)
}

func TestHeadlessWindow(t *testing.T) {
	w := NewHeadlessWindow()
	require.NoError(t, w.Open(WindowOptions{Title: "GAME", Width: 1280, Height: 720, Visible: true}))
	assert.Equal(t, 1, w.Opened())

	width, height := w.Size()
	assert.Equal(t, 1280, width)
	assert.Equal(t, 720, height)

	w.SetSize(800, 600)
	w.SetTitle("renamed")
	opts := w.Options()
	assert.Equal(t, "renamed", opts.Title)
	assert.Equal(t, 800, opts.Width)
	assert.Equal(t, 600, opts.Height)
	assert.True(t, opts.Visible)
	assert.Equal(t, 1, w.Resizes())
}

func TestTickerClock_StartValidation(t *testing.T) {
	tests := []struct {
		name      string
		framerate int
		wantErr   error
	}{
		{name: "zero", framerate: 0, wantErr: ErrInvalidRate},
		{name: "negative", framerate: -30, wantErr: ErrInvalidRate},
		{name: "valid", framerate: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTickerClock(&countingTarget{})
			err := c.Start(tt.framerate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTickerClock_StartOnce(t *testing.T) {
	c := NewTickerClock(&countingTarget{})
	require.NoError(t, c.Start(60))
	assert.ErrorIs(t, c.Start(60), ErrAlreadyStarted)
}

func TestTickerClock_RunBeforeStart(t *testing.T) {
	c := NewTickerClock(&countingTarget{})
	assert.ErrorIs(t, c.Run(context.Background()), ErrNotStarted)
}

func TestTickerClock_MaxTicks(t *testing.T) {
	target := &countingTarget{}
	surface := &DiscardSurface{}
	c := NewTickerClock(target, WithMaxTicks(5), WithSurface(surface))
	require.NoError(t, c.Start(200))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, uint64(5), c.Ticks())
	assert.Equal(t, int64(5), target.updates.Load())
	assert.Equal(t, int64(5), target.draws.Load())
	assert.Equal(t, int64(5), surface.Draws())
}

func TestTickerClock_ContextCancel(t *testing.T) {
	c := NewTickerClock(&countingTarget{})
	require.NoError(t, c.Start(100))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, c.Run(ctx))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTickerClock_Termination(t *testing.T) {
	target := &countingTarget{failAt: 3, err: ebiten.Termination}
	c := NewTickerClock(target)
	require.NoError(t, c.Start(200))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, int64(3), target.updates.Load())
	assert.Equal(t, uint64(2), c.Ticks())
}

func TestTickerClock_UpdateError(t *testing.T) {
	boom := errors.New("boom")
	c := NewTickerClock(&countingTarget{failAt: 1, err: boom})
	require.NoError(t, c.Start(200))

	assert.ErrorIs(t, c.Run(context.Background()), boom)
	assert.Zero(t, c.Ticks())
}

func TestTickerClock_CurrentTPS(t *testing.T) {
	c := NewTickerClock(&countingTarget{})
	assert.Zero(t, c.CurrentTPS())

	require.NoError(t, c.Start(50))
	ctx, cancel := context.WithTimeout(context.Background(), 1300*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Run(ctx))

	assert.InDelta(t, 50, c.CurrentTPS(), 15)
}

func TestEbitenClock_StartValidation(t *testing.T) {
	c := NewEbitenClock(nil, nil)
	assert.ErrorIs(t, c.Start(0), ErrInvalidRate)
	assert.ErrorIs(t, c.Run(context.Background()), ErrNotStarted)
}
