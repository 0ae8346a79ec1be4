package game

import "time"

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock. Tests pass a closure returning a fixed time.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reports wall-clock UTC time.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
