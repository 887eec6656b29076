package sprite

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/require"
)

// pngBytes encodes a solid w x h PNG
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{200, 100, 50, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// frameFS returns an fs with n 4x2 PNG frames named f0.png..f{n-1}.png
func frameFS(t *testing.T, n int) (fstest.MapFS, []string) {
	t.Helper()
	fsys := fstest.MapFS{}
	paths := make([]string, n)
	data := pngBytes(t, 4, 2)
	for i := 0; i < n; i++ {
		paths[i] = "frames/f" + string(rune('0'+i)) + ".png"
		fsys[paths[i]] = &fstest.MapFile{Data: data}
	}
	return fsys, paths
}

// countingFS counts Open calls
type countingFS struct {
	fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.FS.Open(name)
}

// recordingSurface captures DrawImage calls
type recordingSurface struct {
	calls []drawCall
}

type drawCall struct {
	img *ebiten.Image
	geo ebiten.GeoM
}

func (r *recordingSurface) DrawImage(img *ebiten.Image, op *ebiten.DrawImageOptions) {
	r.calls = append(r.calls, drawCall{img: img, geo: op.GeoM})
}

// frameLog collects indices published by a driver
type frameLog struct {
	mu     sync.Mutex
	frames []int
}

func (l *frameLog) observe(i int) {
	l.mu.Lock()
	l.frames = append(l.frames, i)
	l.mu.Unlock()
}

func (l *frameLog) snapshot() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int, len(l.frames))
	copy(out, l.frames)
	return out
}

func (l *frameLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}
