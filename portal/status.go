package portal

// Status is a portal's position in its activation lifecycle.
type Status string

const (
	// StatusIdle means the portal is scanned but not yet activated.
	StatusIdle Status = "idle"
	// StatusAwaitingSdk means activation is blocked on the player runtime.
	StatusAwaitingSdk Status = "awaiting_sdk"
	// StatusReady means the player is mounted and answering.
	StatusReady Status = "ready"
	// StatusPlaying means playback is running.
	StatusPlaying Status = "playing"
	// StatusPaused means playback is suspended.
	StatusPaused Status = "paused"
	// StatusEnded means playback reached the end of the media.
	StatusEnded Status = "ended"
)

// Mounted reports whether the portal has a live player behind it.
func (s Status) Mounted() bool {
	switch s {
	case StatusReady, StatusPlaying, StatusPaused, StatusEnded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
