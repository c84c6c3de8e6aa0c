package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"hr-timer/pkg/hrtimer"
)

const defaultStreamInterval = time.Second

// Config defines server dependencies.
type Config struct {
	SourceName     string
	Source         hrtimer.Source
	AllowedOrigins []string
	StreamInterval time.Duration
}

// Server exposes a single timer over HTTP. The timer is shared by every
// handler and guarded by mu.
type Server struct {
	mu             sync.Mutex
	timer          *hrtimer.Timer
	sourceName     string
	allowedOrigins []string
	interval       time.Duration
	notifier       *TimerNotifier
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	name := strings.TrimSpace(cfg.SourceName)
	if name == "" {
		name = hrtimer.SourceMonotonic
	}
	src := cfg.Source
	if src == nil {
		var err error
		src, err = hrtimer.SourceByName(name)
		if err != nil {
			return nil, fmt.Errorf("clock source: %w", err)
		}
	}
	if src.Frequency() <= 0 {
		return nil, errors.New("clock source reports no frequency")
	}

	interval := cfg.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	logrus.WithFields(logrus.Fields{
		"source":    name,
		"frequency": src.Frequency(),
		"interval":  interval,
	}).Info("timer initialised")

	return &Server{
		timer:          hrtimer.New(src),
		sourceName:     name,
		allowedOrigins: cfg.AllowedOrigins,
		interval:       interval,
		notifier:       NewTimerNotifier(),
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()
	r.Use(requestLatency(s.timer.Source()))

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.GET("/timer", s.handleRead)
		api.POST("/timer/reset", s.handleReset)
		api.GET("/timer/stream", s.handleStream)
		api.GET("/diff", s.handleDiff)
	}
	return r, nil
}

// Stream broadcasts a reading to websocket clients every interval until ctx
// is done.
func (s *Server) Stream(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.notifier.Clients() == 0 {
				continue
			}
			reading := s.read()
			s.notifier.Broadcast(TimerEvent{Type: EventReading, Reading: &reading})
		}
	}
}

func (s *Server) read() ReadingDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newReadingDTO(s.timer)
}

func (s *Server) reset() ReadingDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := newReadingDTO(s.timer)
	s.timer.Reset()
	return previous
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"source":          s.sourceName,
		"frequency":       s.timer.Source().Frequency(),
		"stream_interval": s.interval.String(),
		"allowed_origins": s.allowedOrigins,
	})
}

func (s *Server) handleRead(c *gin.Context) {
	c.JSON(http.StatusOK, s.read())
}

func (s *Server) handleReset(c *gin.Context) {
	previous := s.reset()
	logrus.WithField("previous_micros", previous.Micros).Info("timer reset")
	s.notifier.Broadcast(TimerEvent{Type: EventReset, Reading: &previous})
	c.JSON(http.StatusOK, ResetResponse{Reset: true, PreviousMicros: previous.Micros})
}

func (s *Server) handleDiff(c *gin.Context) {
	a, err := parseUint(c, "a")
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	b, err := parseUint(c, "b")
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, DiffResponse{A: a, B: b, Diff: hrtimer.Diff(a, b)})
}

func (s *Server) handleStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("timer websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("timer websocket closed")
			} else {
				logrus.WithError(err).Warn("timer websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestLatency logs how long each request took, measured on src.
func requestLatency(src hrtimer.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := hrtimer.New(src)
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"micros": timer.ReadMicros(),
		}).Debug("request served")
	}
}

func parseUint(c *gin.Context, key string) (uint64, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}
