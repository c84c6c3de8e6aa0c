package hrtimer

import "sync"

// lazyTimer builds its Timer on first use, so importing the package never
// touches the system clock.
type lazyTimer struct {
	once     sync.Once
	newTimer func() (*Timer, error)
	timer    *Timer
}

// get returns the timer, panicking if it cannot be built.
func (l *lazyTimer) get() *Timer {
	l.once.Do(func() {
		t, err := l.newTimer()
		if err != nil {
			panic("hrtimer: default timer: " + err.Error())
		}
		l.timer = t
	})
	return l.timer
}

// std backs the package-level functions. It is shared by the whole process
// and has no locking beyond its one-time construction.
var std = &lazyTimer{newTimer: NewDefault}

// Init resets the process-wide timer.
func Init() { std.get().Reset() }

// ReadSeconds reads the process-wide timer in seconds.
func ReadSeconds() float64 { return std.get().ReadSeconds() }

// ReadMillis reads the process-wide timer in milliseconds.
func ReadMillis() uint64 { return std.get().ReadMillis() }

// ReadMicros reads the process-wide timer in microseconds.
func ReadMicros() uint64 { return std.get().ReadMicros() }
