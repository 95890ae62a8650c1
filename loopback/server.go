package loopback

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirectpage"
)

// CallbackPath is the redirect URI path served by the loopback server.
const CallbackPath = "/callback"

// BrowserFunc opens url in the user's browser.
type BrowserFunc func(url string) error

// Server hosts the pages a login window lands on. Provider redirects
// arrive at /callback, whose script relays the full location back so the
// fragment reaches the process.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	poster  redirectpage.Poster
	browse  BrowserFunc
	windows *windowSet
	page    *Page

	mu   sync.RWMutex
	addr string
}

// Option configures a Server.
type Option func(*Server)

// WithBrowser replaces the function that opens the system browser.
func WithBrowser(fn BrowserFunc) Option {
	return func(s *Server) { s.browse = fn }
}

// New creates a loopback server that delivers popup responses to poster.
func New(cfg Config, poster redirectpage.Poster, log *logger.Logger, opts ...Option) *Server {
	cfg.ApplyDefaults()
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:  gin.New(),
		config:  cfg,
		log:     logger.OrNop(log).WithComponent("loopback"),
		poster:  poster,
		browse:  browser.OpenURL,
		windows: newWindowSet(cfg.WindowTimeout),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.page = newPage(s.browse, s.CallbackURL)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	s.engine.Use(recovery(s.log), requestID(), bodySizeLimit(parseSize(cfg.MaxBodySize, 64<<10)), requestLogger(s.log))
	s.engine.SetHTMLTemplate(template.Must(template.New(callbackTemplate).Parse(callbackHTML)))
	s.routes()
	return s
}

// Handler returns the HTTP handler, for tests that serve it themselves.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("loopback failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.setAddr(listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Loopback server error", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	s.log.Info("Loopback server started", map[string]interface{}{
		"addr": s.Addr(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Loopback shutdown error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return fmt.Errorf("loopback shutdown error: %w", err)
	}
	s.setAddr("")
	s.log.Debug("Loopback server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

func (s *Server) setAddr(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addr = addr
}

// BaseURL returns the server origin, or "" before Start.
func (s *Server) BaseURL() string {
	if addr := s.Addr(); addr != "" {
		return "http://" + addr
	}
	return ""
}

// CallbackURL returns the redirect URI to register with providers.
func (s *Server) CallbackURL() string {
	if base := s.BaseURL(); base != "" {
		return base + CallbackPath
	}
	return ""
}

// Page returns the page the server exposes for redirect-mode logins.
func (s *Server) Page() *Page {
	return s.page
}

// Opener returns an opener that launches login windows through this server.
func (s *Server) Opener() *Opener {
	return &Opener{server: s}
}
