// Package player defines the contract every embedded video player fulfills.
//
// The runtime treats players as remote, failure-prone machinery: every call
// can error and callers decide how much they care. State notifications use
// the conventional embedded-player vocabulary.
package player

// State is a player's playback state as reported by its runtime.
type State int

const (
	StateUnstarted State = iota
	StateEnded
	StatePlaying
	StatePaused
	StateBuffering
	StateCued
)

var stateNames = map[State]string{
	StateUnstarted: "unstarted",
	StateEnded:     "ended",
	StatePlaying:   "playing",
	StatePaused:    "paused",
	StateBuffering: "buffering",
	StateCued:      "cued",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Config describes how a player should be instantiated.
type Config struct {
	VideoID         string
	Autoplay        bool
	Muted           bool
	Controls        bool
	DisableKeyboard bool
	Loop            bool

	// Start and End bound the playback window in seconds. Zero means unbounded.
	Start float64
	End   float64
}

// Handle is a live player instance.
type Handle interface {
	// Mute silences the player.
	Mute() error

	// Play starts or resumes playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Seek moves the playhead to the given offset in seconds.
	// When exact is false the player may snap to a nearby keyframe.
	Seek(seconds float64, exact bool) error

	// Position returns the current playhead offset in seconds.
	Position() (float64, error)

	// OnReady subscribes to the player's readiness signal.
	OnReady(fn func())

	// OnStateChange subscribes to playback state transitions.
	OnStateChange(fn func(State))
}

// Factory instantiates players onto mount points.
type Factory interface {
	New(mountID string, cfg Config) (Handle, error)
}
