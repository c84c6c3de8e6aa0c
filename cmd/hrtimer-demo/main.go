package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"hr-timer/internal/demo"
	"hr-timer/pkg/hrtimer"
)

func main() {
	var (
		sleep    = flag.Duration("sleep", demo.DefaultSleep, "How long to sleep between readings")
		source   = flag.String("source", os.Getenv("TIMER_SOURCE"), "Clock source: monotonic or wall")
		logLevel = flag.String("log-level", os.Getenv("LOG_LEVEL"), "Log level (debug, info, warn)")
	)
	flag.Parse()

	if lvl := strings.TrimSpace(*logLevel); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.Fatalf("parse log level: %v", err)
		}
		logrus.SetLevel(parsed)
	}

	src, err := hrtimer.SourceByName(*source)
	if err != nil {
		logrus.Fatalf("clock source: %v", err)
	}
	if strings.EqualFold(strings.TrimSpace(*source), hrtimer.SourceManual) {
		logrus.Fatalf("clock source: %q never advances on its own", hrtimer.SourceManual)
	}
	timer := hrtimer.New(src)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"source":    *source,
		"frequency": src.Frequency(),
	}).Debug("timer initialised")

	result, err := demo.Run(ctx, timer, demo.Config{Sleep: *sleep})
	if err != nil {
		logrus.Fatalf("demo: %v", err)
	}
	if err := result.Write(os.Stdout); err != nil {
		logrus.Fatalf("write result: %v", err)
	}
	logrus.WithField("elapsed", time.Duration(result.Micros)*time.Microsecond).Debug("done")
}
