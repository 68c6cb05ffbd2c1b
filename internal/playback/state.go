// Package playback holds the per-guild voice playback sessions: a FIFO queue
// of entries driven through an explicit state machine by a single consumer.
package playback

// State is the playback session state.
type State int

const (
	StateEmpty     State = iota // nothing queued, nothing playing
	StateResolving              // head entry is being resolved to a resource
	StatePlaying                // a resource is being played
	StatePaused                 // playback suspended by command
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateResolving:
		return "resolving"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
