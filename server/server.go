// Package server exposes feature model analysis over HTTP.
//
// Models are uploaded as multipart forms, in a "file" field holding an XML
// or YAML feature model. Every request compiles its own problem and creates
// its own oracle: nothing is shared between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/crillab/featsat/config"
	"github.com/crillab/featsat/mwp"
	"github.com/crillab/featsat/oracle"
	"github.com/crillab/featsat/translate"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// A Server serves the HTTP API.
type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	factory    oracle.Factory
	tr         translate.Translator
	enumerator *mwp.Enumerator
	router     *gin.Engine
}

// New returns a server configured by cfg. A nil logger means slog.Default().
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	factory, err := oracle.New(cfg.Solver.Backend)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		factory: factory,
		tr:      translate.Default,
		enumerator: mwp.NewEnumerator(
			mwp.WithOracle(factory),
			mwp.WithMaxIterations(cfg.Solver.MaxIterations),
			mwp.WithLogger(logger),
		),
	}
	s.initRouter()
	return s, nil
}

// Router returns the gin engine serving the API.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) initRouter() {
	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.requestID(), metricsMiddleware())
	if s.cfg.Server.Tracing {
		s.router.Use(otelgin.Middleware("featsat"))
	}
	s.router.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/upload", s.handleUpload)
	v1.POST("/visualization", s.handleVisualization)
	v1.POST("/translate-constraint", s.handleTranslate)
	solving := v1.Group("", s.rateLimit())
	{
		solving.POST("/find_mwp", s.handleFindMWP)
		solving.POST("/smallest", s.handleSmallest)
		solving.POST("/count", s.handleCount)
		solving.POST("/explain", s.handleExplain)
		solving.POST("/check", s.handleCheck)
	}
}

// Run serves the API until ctx is done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr, "solver", s.cfg.Solver.Backend)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return fmt.Errorf("could not serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// requestID gets or creates the ID of each request.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

func (s *Server) requestLogger(c *gin.Context) *slog.Logger {
	return s.logger.With("request_id", c.GetString(requestIDKey), "route", c.FullPath())
}

// rateLimit rejects requests beyond the configured rate. Solving can be
// exponential, so only the solving routes are limited.
func (s *Server) rateLimit() gin.HandlerFunc {
	if s.cfg.Server.RateLimit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := s.cfg.Server.RateBurst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimit), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			rateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"code":       "rate_limited",
				"request_id": c.GetString(requestIDKey),
			})
			return
		}
		c.Next()
	}
}

// solveContext returns the context of a solving request, bounded by the
// configured timeout.
func (s *Server) solveContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Solver.Timeout > 0 {
		return context.WithTimeout(c.Request.Context(), s.cfg.Solver.Timeout)
	}
	return context.WithCancel(c.Request.Context())
}
