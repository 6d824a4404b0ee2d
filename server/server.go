package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server/endpoint"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server/middleware"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP server backed by Gin.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	middleware []middleware.Middleware
	config     Config
	log        *logger.Logger

	mu   sync.Mutex
	addr net.Addr
}

// New creates a new Server. No middleware is applied until ApplyMiddleware.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		config: cfg,
		log:    log.WithComponent("server"),
	}
	// Request contexts derive from baseCtx, which Shutdown cancels. Event
	// streams end on it.
	baseCtx, cancel := context.WithCancel(context.Background())
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.IdleTimeout) * time.Second,
	}
	s.httpServer.RegisterOnShutdown(cancel)
	return s
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped in the applied middleware and h2c.
func (s *Server) Handler() http.Handler {
	h := middleware.Chain(s.middleware...)(s.engine)
	return h2c.NewHandler(h, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	})
}

// Use appends server-level middleware. The first added is the outermost.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// ApplyMiddleware installs the standard stack: recovery, request id, CORS,
// body size limit and request logging.
func (s *Server) ApplyMiddleware() {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
}

// RegisterDefaultEndpoints registers /health and /info.
func (s *Server) RegisterDefaultEndpoints(health endpoint.HealthConfig) {
	s.engine.GET("/health", endpoint.Health(health))
	s.engine.GET("/info", endpoint.Info(health))
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.httpServer.Handler = s.Handler()

	s.mu.Lock()
	s.addr = listener.Addr()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != nil {
		return s.addr.String()
	}
	return s.httpServer.Addr
}
