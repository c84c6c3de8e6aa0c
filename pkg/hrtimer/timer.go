// Package hrtimer measures elapsed time since an explicit reset point with
// microsecond or better resolution.
package hrtimer

import (
	"math"
	"time"
)

// Scaling factors for microsecond counts such as those returned by ReadMicros.
const (
	Microsecond uint64 = 1
	Millisecond        = 1000 * Microsecond
	Second             = 1000 * Millisecond
)

// Timer reports the time elapsed since its last Reset.
//
// A Timer is not safe for concurrent Reset and Read calls; callers sharing one
// across goroutines must provide their own locking.
type Timer struct {
	src Source
	ref Stamp

	perSec   float64
	perMilli float64
	perMicro float64
	perNano  float64
}

// New returns a Timer reading from src, already reset. It panics if src
// reports a non-positive frequency.
func New(src Source) *Timer {
	freq := src.Frequency()
	if freq <= 0 {
		panic("hrtimer: source frequency must be positive")
	}
	f := float64(freq)
	t := &Timer{
		src:      src,
		perSec:   1 / f,
		perMilli: 1e3 / f,
		perMicro: 1e6 / f,
		perNano:  1e9 / f,
	}
	t.Reset()
	return t
}

// NewDefault returns a Timer backed by the platform's monotonic source.
func NewDefault() (*Timer, error) {
	src, err := NewSystemSource()
	if err != nil {
		return nil, err
	}
	return New(src), nil
}

// Reset makes the current instant the new zero point.
func (t *Timer) Reset() {
	t.ref = t.src.Now()
}

// Source returns the clock the timer reads from.
func (t *Timer) Source() Source {
	return t.src
}

func (t *Timer) delta() (sec, frac int64) {
	now := t.src.Now()
	return now.Sec - t.ref.Sec, now.Frac - t.ref.Frac
}

// ReadSeconds returns the seconds elapsed since the last Reset.
func (t *Timer) ReadSeconds() float64 {
	sec, frac := t.delta()
	return float64(sec) + float64(frac)*t.perSec
}

// ReadMillis returns the elapsed milliseconds, truncated.
func (t *Timer) ReadMillis() uint64 {
	sec, frac := t.delta()
	return truncate(float64(sec)*1e3 + float64(frac)*t.perMilli)
}

// ReadMicros returns the elapsed microseconds, truncated. The count
// saturates at math.MaxUint64 after roughly 584,000 years.
func (t *Timer) ReadMicros() uint64 {
	sec, frac := t.delta()
	return truncate(float64(sec)*1e6 + float64(frac)*t.perMicro)
}

// Elapsed returns the elapsed time as a time.Duration.
func (t *Timer) Elapsed() time.Duration {
	sec, frac := t.delta()
	return time.Duration(sec)*time.Second + time.Duration(float64(frac)*t.perNano)
}

// truncate converts toward zero, clamping readings taken before the
// reference point to 0.
func truncate(v float64) uint64 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(v)
}
