// Package portal is the HTTP configuration channel: operators submit or
// clear the watchlist and request a device reset while the detector is
// configuring.
package portal

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ble-watch.klederson.com/internal/lifecycle"
	"ble-watch.klederson.com/internal/logging"
	"ble-watch.klederson.com/internal/watchlist"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Controller receives configuration events. *lifecycle.Machine implements it.
type Controller interface {
	Activity(now time.Time)
	SubmitWatchlist(raw []watchlist.RawEntry, now time.Time) (lifecycle.Submission, error)
	Clear(now time.Time) (bool, error)
	RequestReset(now time.Time) time.Time
	Status(now time.Time) lifecycle.Status
}

type Options struct {
	Addr  string
	Rate  float64
	Burst int
	Now   func() time.Time
}

type Server struct {
	Engine *gin.Engine

	ctrl    Controller
	limiter *rate.Limiter
	now     func() time.Time
	addr    string
	logger  *zap.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

func New(ctrl Controller, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		Engine: gin.New(),
		ctrl:   ctrl,
		now:    opts.Now,
		addr:   opts.Addr,
		logger: logging.GetLoggerWith(logging.NamePortal),
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	s.setup()
	return s
}

func (s *Server) setup() {
	s.Engine.SetHTMLTemplate(pageTemplates)
	s.Engine.Use(gin.Recovery(), s.requestLogger())
	s.Engine.GET("/healthz", s.HealthCheck)

	cfg := s.Engine.Group("/", s.activity(), s.rateLimit())
	{
		cfg.GET("/", s.GetStatus)
		cfg.POST("/save", s.PostSave)
		cfg.POST("/clear", s.PostClear)
		cfg.POST("/device-reset", s.PostDeviceReset)
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      s.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.srv, s.listener = srv, ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Configuration portal stopped", zap.Error(err))
		}
	}()
	s.logger.Info("Configuration portal listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the portal down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv, s.listener = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	s.logger.Info("Configuration portal stopped")
	return err
}
