package hrtimer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLazyTimerBuildsOnce(t *testing.T) {
	src := &ManualSource{}
	calls := 0
	lazy := &lazyTimer{newTimer: func() (*Timer, error) {
		calls++
		return New(src), nil
	}}
	if calls != 0 {
		t.Fatalf("expected no construction before first use got %d", calls)
	}

	first := lazy.get()
	src.Advance(3 * time.Millisecond)
	second := lazy.get()

	if calls != 1 {
		t.Fatalf("expected 1 construction got %d", calls)
	}
	if first != second {
		t.Fatal("expected the same timer on every use")
	}
	if got := second.ReadMillis(); got != 3 {
		t.Fatalf("expected 3 got %d", got)
	}
}

func TestLazyTimerFailsOnFirstUse(t *testing.T) {
	lazy := &lazyTimer{newTimer: func() (*Timer, error) {
		return nil, errors.New("no monotonic clock")
	}}

	defer func() {
		r := recover()
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "no monotonic clock") {
			t.Fatalf("expected panic naming the clock error got %v", r)
		}
	}()
	lazy.get()
}
