// Package clock abstracts wall time and delayed callbacks so that streaks,
// interest weeks and wager timers can be driven deterministically in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Timer is a scheduled callback. Stop reports whether it prevented the call.
type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real uses the system clock and runtime timers.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EpochDay numbers calendar days since 1970-01-01 as observed in loc.
func EpochDay(t time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
