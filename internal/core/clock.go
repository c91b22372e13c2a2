package core

import "time"

// Clock supplies the current time so date-dependent logic stays
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
