package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/appengine-ltd/wildcast/internal/store"
	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

type Options struct {
	Engine  *wildlife.Engine
	Metrics *Metrics
	Logger  *zap.Logger
	// Writer enables the rule admin routes. Nil keeps the API read-only.
	Writer      store.Writer
	Mode        string
	CORSOrigins []string
	// Now is the clock used when a query names no date.
	Now func() time.Time
}

type Server struct {
	engine  *wildlife.Engine
	writer  store.Writer
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
	router  *gin.Engine

	mu     sync.Mutex
	http   *http.Server
	closed bool
}

func New(opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	s := &Server{
		engine:  opts.Engine,
		writer:  opts.Writer,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
		router:  gin.New(),
	}
	if s.engine == nil {
		s.engine = wildlife.NewEngine()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.setupMiddleware(opts.CORSOrigins)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(gin.Recovery(), s.requestLogger())

	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "wildcast"})
	})

	v1 := s.router.Group("/v1")
	{
		v1.GET("/species", s.listSpecies)
		v1.GET("/species/:id/model", s.getModel)

		v1.POST("/predict", s.postPredict)
		v1.GET("/predict/:species", s.getPredict)
		v1.GET("/forecast/:species", s.getForecast)

		v1.GET("/rules", s.listRules)
		if s.writer != nil {
			v1.POST("/rules", s.createRule)
			v1.PATCH("/rules/:id/active", s.toggleRule)
			v1.PATCH("/rules/:id/weight", s.setRuleWeight)
		}
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.http = srv
	s.mu.Unlock()
	s.logger.Info("api listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.closed = true
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
