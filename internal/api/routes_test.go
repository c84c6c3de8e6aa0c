package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"hr-timer/pkg/hrtimer"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	router, err := server.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return server, router
}

func doRequest(t *testing.T, router http.Handler, method, target string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestHealthAndConfig(t *testing.T) {
	src := &hrtimer.ManualSource{}
	_, router := newTestServer(t, Config{SourceName: "manual", Source: src, StreamInterval: 250 * time.Millisecond})

	var health map[string]string
	if code := doRequest(t, router, http.MethodGet, "/api/healthz", &health); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if health["status"] != "ok" {
		t.Fatalf("expected ok got %q", health["status"])
	}

	var cfg struct {
		Source         string `json:"source"`
		Frequency      int64  `json:"frequency"`
		StreamInterval string `json:"stream_interval"`
	}
	if code := doRequest(t, router, http.MethodGet, "/api/config", &cfg); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if cfg.Source != "manual" || cfg.Frequency != int64(time.Second) || cfg.StreamInterval != "250ms" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestReadAndReset(t *testing.T) {
	src := &hrtimer.ManualSource{}
	_, router := newTestServer(t, Config{Source: src})

	src.Advance(1500*time.Millisecond + 250*time.Microsecond)

	var reading ReadingDTO
	if code := doRequest(t, router, http.MethodGet, "/api/timer", &reading); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if reading.Millis != 1500 || reading.Micros != 1_500_250 {
		t.Fatalf("unexpected reading %+v", reading)
	}
	if reading.Elapsed != "1.50025s" {
		t.Fatalf("expected 1.50025s got %s", reading.Elapsed)
	}

	var reset ResetResponse
	if code := doRequest(t, router, http.MethodPost, "/api/timer/reset", &reset); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if !reset.Reset || reset.PreviousMicros != 1_500_250 {
		t.Fatalf("unexpected reset response %+v", reset)
	}

	src.Advance(3 * time.Millisecond)
	if code := doRequest(t, router, http.MethodGet, "/api/timer", &reading); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if reading.Millis != 3 || reading.Micros != 3000 {
		t.Fatalf("unexpected reading after reset %+v", reading)
	}
}

func TestDiffEndpoint(t *testing.T) {
	_, router := newTestServer(t, Config{Source: &hrtimer.ManualSource{}})

	tests := []struct {
		name     string
		query    string
		status   int
		expected int64
	}{
		{"forward", "a=2009981&b=0", http.StatusOK, 2_009_981},
		{"wrapped", "a=5&b=18446744073709551610", http.StatusOK, 11},
		{"backward", "a=0&b=10", http.StatusOK, -10},
		{"missing", "a=5", http.StatusBadRequest, 0},
		{"negative", "a=-1&b=0", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var resp DiffResponse
			code := doRequest(t, router, http.MethodGet, "/api/diff?"+tc.query, &resp)
			if code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, code)
			}
			if code == http.StatusOK && resp.Diff != tc.expected {
				t.Fatalf("expected %d got %d", tc.expected, resp.Diff)
			}
		})
	}
}

func TestNewServerUnknownSource(t *testing.T) {
	if _, err := NewServer(Config{SourceName: "sundial"}); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func readEvent(t *testing.T, conn *websocket.Conn, eventType string) TimerEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("set deadline: %v", err)
		}
		var event TimerEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read %s event: %v", eventType, err)
		}
		if event.Type == eventType {
			return event
		}
	}
}

func TestStream(t *testing.T) {
	src := &hrtimer.ManualSource{}
	server, router := newTestServer(t, Config{Source: src, StreamInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.Stream(ctx)

	httpServer := httptest.NewServer(router)
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/api/timer/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	src.Advance(42 * time.Millisecond)
	event := readEvent(t, conn, EventReading)
	if event.Reading == nil || event.Timestamp.IsZero() {
		t.Fatalf("unexpected reading event %+v", event)
	}

	req, err := http.NewRequest(http.MethodPost, httpServer.URL+"/api/timer/reset", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	resp.Body.Close()

	event = readEvent(t, conn, EventReset)
	if event.Reading == nil || event.Reading.Millis != 42 {
		t.Fatalf("expected reset event carrying 42ms got %+v", event.Reading)
	}
	if last := server.notifier.LastEvent(); last == nil {
		t.Fatal("expected last event to be recorded")
	}
}
