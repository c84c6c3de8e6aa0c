//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package hrtimer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type monotonicSource struct{}

// NewSystemSource returns a source reading CLOCK_MONOTONIC.
func NewSystemSource() (Source, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return nil, fmt.Errorf("clock_gettime: %w", err)
	}
	return monotonicSource{}, nil
}

func (monotonicSource) Now() Stamp {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic(fmt.Sprintf("hrtimer: clock_gettime: %v", err))
	}
	sec, nsec := ts.Unix()
	return Stamp{Sec: sec, Frac: nsec}
}

func (monotonicSource) Frequency() int64 { return 1e9 }

type wallClockSource struct{}

// NewWallClockSource returns a source reading gettimeofday. It follows
// calendar time, so it jumps when the system clock is stepped.
func NewWallClockSource() (Source, error) {
	var tv unix.Timeval
	if err := unix.Gettimeofday(&tv); err != nil {
		return nil, fmt.Errorf("gettimeofday: %w", err)
	}
	return wallClockSource{}, nil
}

func (wallClockSource) Now() Stamp {
	var tv unix.Timeval
	if err := unix.Gettimeofday(&tv); err != nil {
		panic(fmt.Sprintf("hrtimer: gettimeofday: %v", err))
	}
	sec, nsec := tv.Unix()
	return Stamp{Sec: sec, Frac: nsec / 1e3}
}

func (wallClockSource) Frequency() int64 { return 1e6 }
