// Package trace records which room was active and which frame every sprite showed
// on each tick, for diagnosing animation cadence and room transitions.
package trace

// Sample is the state observed after a single tick
type Sample struct {
	Tick   uint64         `json:"t"`
	Room   string         `json:"room"`
	State  string         `json:"state"`
	Frames map[string]int `json:"frames,omitempty"`
}

// Data contains a whole recorded session
type Data struct {
	Version   string   `json:"version"`
	StartTime string   `json:"startTime"`
	Samples   []Sample `json:"samples"`
	Dropped   uint64   `json:"dropped,omitempty"` // oldest samples discarded to stay within the limit
}
