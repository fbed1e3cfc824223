package controller

import "time"

// Timer is a cancelable deferred call.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred work and reports the current time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
