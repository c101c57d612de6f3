package service

import "time"

// SystemClock reads wall-clock time. A fixed clock replaces it in tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
