//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package hrtimer

import "time"

// runtimeSource reads the Go runtime's monotonic clock relative to origin.
type runtimeSource struct {
	origin time.Time
}

// NewSystemSource returns a source backed by the runtime monotonic clock.
func NewSystemSource() (Source, error) {
	return runtimeSource{origin: time.Now()}, nil
}

func (s runtimeSource) Now() Stamp {
	d := time.Since(s.origin)
	return Stamp{Sec: int64(d / time.Second), Frac: int64(d % time.Second)}
}

func (runtimeSource) Frequency() int64 { return int64(time.Second) }

type wallClockSource struct{}

// NewWallClockSource returns a source reading calendar time.
func NewWallClockSource() (Source, error) {
	return wallClockSource{}, nil
}

func (wallClockSource) Now() Stamp {
	now := time.Now()
	return Stamp{Sec: now.Unix(), Frac: int64(now.Nanosecond())}
}

func (wallClockSource) Frequency() int64 { return int64(time.Second) }
