package timer

import "time"

// Clock abstracts wall-clock reads so tests can simulate suspension by
// jumping time forward.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the real wall clock.
var SystemClock Clock = systemClock{}
