package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/younwookim/roomshell/internal/application/scene"
)

// ErrEmpty is returned when saving a trace with no samples
var ErrEmpty = errors.New("no samples to save")

// FrameReporter is implemented by rooms that can report their sprites' current frames
type FrameReporter interface {
	FrameIndices() map[string]int
}

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithMaxSamples keeps only the most recent n samples. Zero means no limit.
func WithMaxSamples(n int) RecorderOption {
	return func(r *Recorder) {
		r.max = n
	}
}

// Recorder collects one Sample per tick
type Recorder struct {
	mu        sync.Mutex
	data      Data
	head      int // oldest sample once the buffer is full
	max       int
	recording bool
}

// NewRecorder creates a recorder that starts recording immediately
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		data: Data{
			Version:   "1.0",
			StartTime: time.Now().Format(time.RFC3339),
		},
		recording: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	capacity := 3600 // ~1 minute at 60fps
	if r.max > 0 && r.max < capacity {
		capacity = r.max
	}
	r.data.Samples = make([]Sample, 0, capacity)
	return r
}

// Observe records the active room after a tick. Its signature matches game.TickObserver.
func (r *Recorder) Observe(tick uint64, room scene.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}

	s := Sample{Tick: tick, Room: room.Name(), State: room.State().String()}
	if fr, ok := room.(FrameReporter); ok {
		s.Frames = fr.FrameIndices()
	}
	if r.max > 0 && len(r.data.Samples) >= r.max {
		r.data.Samples[r.head] = s
		r.head = (r.head + 1) % len(r.data.Samples)
		r.data.Dropped++
		return
	}
	r.data.Samples = append(r.data.Samples, s)
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// SampleCount returns the number of recorded samples
func (r *Recorder) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data.Samples)
}

// Data returns a copy of the recorded data
func (r *Recorder) Data() Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.data
	d.Samples = make([]Sample, 0, len(r.data.Samples))
	d.Samples = append(d.Samples, r.data.Samples[r.head:]...)
	d.Samples = append(d.Samples, r.data.Samples[:r.head]...)
	return d
}

// Save writes the trace to a file
func (r *Recorder) Save(filename string) error {
	data := r.Data()
	if len(data.Samples) == 0 {
		return ErrEmpty
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	return nil
}

// Load reads a trace file
func Load(filename string) (*Data, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var data Data
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	return &data, nil
}

// FrameSequence returns the frames a named sprite showed across the trace,
// skipping ticks where it was not in the active room
func (d *Data) FrameSequence(name string) []int {
	var out []int
	for _, s := range d.Samples {
		if f, ok := s.Frames[name]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Transitions returns the room names in the order they became active
func (d *Data) Transitions() []string {
	var out []string
	for _, s := range d.Samples {
		if len(out) == 0 || out[len(out)-1] != s.Room {
			out = append(out, s.Room)
		}
	}
	return out
}
