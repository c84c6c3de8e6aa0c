package hrtimer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Stamp is a single clock reading. Frac counts in 1/Frequency units of the
// Source that produced it. Calendar clocks fill both fields; counter clocks
// leave Sec at zero and carry the raw count in Frac.
type Stamp struct {
	Sec  int64
	Frac int64
}

// Source is a clock a Timer can read.
type Source interface {
	// Now returns the current reading.
	Now() Stamp
	// Frequency returns the number of Frac units per second.
	Frequency() int64
}

// Source names accepted by SourceByName.
const (
	SourceMonotonic = "monotonic"
	SourceWall      = "wall"
	SourceManual    = "manual"
)

// ErrUnknownSource is returned by SourceByName for an unrecognised name.
var ErrUnknownSource = errors.New("unknown clock source")

// SourceByName constructs the named source. An empty name selects the
// monotonic source.
func SourceByName(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SourceMonotonic:
		return NewSystemSource()
	case SourceWall:
		return NewWallClockSource()
	case SourceManual:
		return &ManualSource{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// ManualSource is a Source that only moves when told to. The zero value
// reads zero.
type ManualSource struct {
	mu  sync.Mutex
	now time.Duration
}

// Now implements Source.
func (m *ManualSource) Now() Stamp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stamp{
		Sec:  int64(m.now / time.Second),
		Frac: int64(m.now % time.Second),
	}
}

// Frequency implements Source with nanosecond units.
func (m *ManualSource) Frequency() int64 {
	return int64(time.Second)
}

// Advance moves the clock by d, which may be negative.
func (m *ManualSource) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set moves the clock to d past its origin.
func (m *ManualSource) Set(d time.Duration) {
	m.mu.Lock()
	m.now = d
	m.mu.Unlock()
}
