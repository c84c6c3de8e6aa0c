package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"hr-timer/pkg/hrtimer"
)

// DefaultSleep is how long Run waits when Config.Sleep is unset.
const DefaultSleep = 2000 * time.Millisecond

// Config controls a demo run.
type Config struct {
	Sleep time.Duration
	// Sleeper blocks for the given duration. Defaults to a context-aware
	// time.Timer wait.
	Sleeper func(ctx context.Context, d time.Duration) error
}

// Result holds the durations measured across the sleep.
type Result struct {
	Slept   time.Duration
	Seconds float64
	Millis  int64
	Micros  int64
}

// Run resets timer, sleeps and reports the elapsed time in each unit.
func Run(ctx context.Context, timer *hrtimer.Timer, cfg Config) (Result, error) {
	if timer == nil {
		return Result{}, errors.New("timer is nil")
	}
	sleep := cfg.Sleep
	if sleep <= 0 {
		sleep = DefaultSleep
	}
	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = Sleep
	}

	timer.Reset()
	startSecs := timer.ReadSeconds()
	startMillis := timer.ReadMillis()
	startMicros := timer.ReadMicros()

	logrus.WithField("sleep", sleep).Debug("sleeping")
	if err := sleeper(ctx, sleep); err != nil {
		return Result{}, fmt.Errorf("sleep: %w", err)
	}

	endSecs := timer.ReadSeconds()
	endMillis := timer.ReadMillis()
	endMicros := timer.ReadMicros()

	return Result{
		Slept:   sleep,
		Seconds: endSecs - startSecs,
		Millis:  hrtimer.Diff(endMillis, startMillis),
		Micros:  hrtimer.Diff(endMicros, startMicros),
	}, nil
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Write prints the result in the demo's report format.
func (r Result) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Slept for %g secs.\n"+
			" ReadSeconds() gave duration as %.6f secs\n"+
			" ReadMillis()  gave duration as %d ms\n"+
			" ReadMicros()  gave duration as %d us\n",
		r.Slept.Seconds(), r.Seconds, r.Millis, r.Micros)
	return err
}
