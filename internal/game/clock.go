package game

import "time"

// Clock supplies the timestamps used for join times, response latency and
// session expiry. Injected so tests can control elapsed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the system wall clock.
func SystemClock() Clock { return systemClock{} }
