package stream

import "time"

// Options configures a concrete stream.
type Options struct {
	// ID overrides the stream identifier. Defaults to the kind name so that
	// conflict pattern keys stay stable across runs.
	ID string

	// Delay is paused between analysis steps. Zero runs the stream at full speed.
	Delay time.Duration
}
