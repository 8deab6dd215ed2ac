package ports

import "time"

// Clock supplies the current instant so handlers stay deterministic under test.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
//
// Example:
//
//	var clock ports.Clock = ports.ClockFunc(time.Now)
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
