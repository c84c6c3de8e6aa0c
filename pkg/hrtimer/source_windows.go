//go:build windows

package hrtimer

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	qpcProc  = kernel32.NewProc("QueryPerformanceCounter")
	qpfProc  = kernel32.NewProc("QueryPerformanceFrequency")
)

// counterSource reads QueryPerformanceCounter. The frequency is fixed at
// boot, so it is queried once at construction.
type counterSource struct {
	freq int64
}

// NewSystemSource returns a source reading the performance counter.
func NewSystemSource() (Source, error) {
	if err := qpcProc.Find(); err != nil {
		return nil, fmt.Errorf("QueryPerformanceCounter: %w", err)
	}
	if err := qpfProc.Find(); err != nil {
		return nil, fmt.Errorf("QueryPerformanceFrequency: %w", err)
	}
	var freq int64
	if r, _, err := qpfProc.Call(uintptr(unsafe.Pointer(&freq))); r == 0 {
		return nil, fmt.Errorf("QueryPerformanceFrequency: %w", err)
	}
	if freq <= 0 {
		return nil, fmt.Errorf("QueryPerformanceFrequency: invalid frequency %d", freq)
	}
	return counterSource{freq: freq}, nil
}

func (s counterSource) Now() Stamp {
	var count int64
	if r, _, err := qpcProc.Call(uintptr(unsafe.Pointer(&count))); r == 0 {
		panic(fmt.Sprintf("hrtimer: QueryPerformanceCounter: %v", err))
	}
	return Stamp{Frac: count}
}

func (s counterSource) Frequency() int64 { return s.freq }

type wallClockSource struct{}

// NewWallClockSource returns a source reading the system time in 100ns
// units. It jumps when the system clock is stepped.
func NewWallClockSource() (Source, error) {
	return wallClockSource{}, nil
}

func (wallClockSource) Now() Stamp {
	var ft windows.Filetime
	windows.GetSystemTimePreciseAsFileTime(&ft)
	ns := ft.Nanoseconds()
	return Stamp{Sec: ns / 1e9, Frac: (ns % 1e9) / 100}
}

func (wallClockSource) Frequency() int64 { return 1e7 }
