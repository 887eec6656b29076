package sprite

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBuffer_NotReadyBeforeLoad(t *testing.T) {
	fsys, paths := frameFS(t, 3)
	fb := NewFrameBuffer(fsys, paths...)

	assert.Equal(t, 3, fb.Len())
	assert.False(t, fb.Loaded())

	for i := 0; i < 3; i++ {
		img, err := fb.Frame(i)
		assert.Nil(t, img)
		assert.ErrorIs(t, err, ErrNotReady)
	}
}

func TestFrameBuffer_FrameOutOfRange(t *testing.T) {
	fsys, paths := frameFS(t, 2)
	fb := NewFrameBuffer(fsys, paths...)
	require.NoError(t, fb.Load(context.Background()))

	for _, i := range []int{-1, 2, 100} {
		_, err := fb.Frame(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
}

func TestFrameBuffer_Load(t *testing.T) {
	fsys, paths := frameFS(t, 4)
	fb := NewFrameBuffer(fsys, paths...)

	require.NoError(t, fb.Load(context.Background()))
	assert.True(t, fb.Loaded())

	for i := 0; i < 4; i++ {
		img, err := fb.Frame(i)
		require.NoError(t, err)
		assert.Equal(t, 4, img.Bounds().Dx())
		assert.Equal(t, 2, img.Bounds().Dy())
	}
}

func TestFrameBuffer_LoadContinuesPastFailures(t *testing.T) {
	fsys, paths := frameFS(t, 4)
	delete(fsys, paths[1])
	fsys[paths[3]] = &fstest.MapFile{Data: []byte("not an image")}

	fb := NewFrameBuffer(fsys, paths...)
	err := fb.Load(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, []int{1, 3}, loadErr.Indices())
	assert.True(t, fb.Loaded())

	_, err = fb.Frame(0)
	assert.NoError(t, err)
	_, err = fb.Frame(1)
	assert.ErrorIs(t, err, ErrFrameMissing)
	_, err = fb.Frame(2)
	assert.NoError(t, err)
	_, err = fb.Frame(3)
	assert.ErrorIs(t, err, ErrFrameMissing)
}

func TestFrameBuffer_LoadOnce(t *testing.T) {
	fsys, paths := frameFS(t, 3)
	cfs := &countingFS{FS: fsys}
	fb := NewFrameBuffer(cfs, paths...)

	require.NoError(t, fb.Load(context.Background()))
	require.NoError(t, fb.Load(context.Background()))

	assert.Equal(t, int32(3), cfs.opens.Load(), "second Load must not decode again")
}

func TestFrameBuffer_LoadCancelledResumes(t *testing.T) {
	fsys, paths := frameFS(t, 3)
	cfs := &countingFS{FS: fsys}
	fb := NewFrameBuffer(cfs, paths...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fb.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fb.Loaded())
	_, err = fb.Frame(0)
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, fb.Load(context.Background()))
	assert.True(t, fb.Loaded())
	assert.Equal(t, int32(3), cfs.opens.Load())
}

func TestFrameBuffer_NilFS(t *testing.T) {
	fb := NewFrameBuffer(nil, "a.png")

	err := fb.Load(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, []int{0}, loadErr.Indices())
}

func TestFrameBuffer_Paths(t *testing.T) {
	fb := NewFrameBuffer(nil, "a.png", "b.png")
	paths := fb.Paths()
	paths[0] = "changed"

	assert.Equal(t, []string{"a.png", "b.png"}, fb.Paths())
}
