package media

// Status is a deferred image's position in its load lifecycle.
// Transitions flow one way: Pending, Loading, then Loaded or Failed.
type Status string

const (
	// StatusPending means the image is scanned but not yet visible.
	StatusPending Status = "pending"
	// StatusLoading means the real source is assigned and the fetch is in flight.
	StatusLoading Status = "loading"
	// StatusLoaded means the fetch completed successfully.
	StatusLoaded Status = "loaded"
	// StatusFailed means the fetch completed with an error.
	StatusFailed Status = "failed"
)

// Final reports whether the status is terminal.
func (s Status) Final() bool {
	return s == StatusLoaded || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}
