package utils

import "time"

// Clock lets services and tests agree on what "now" is.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using time.Now()
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Fixed time.Time
}

func (fc FixedClock) Now() time.Time {
	return fc.Fixed
}
