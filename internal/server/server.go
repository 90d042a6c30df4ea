package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/raihasa-dev/raihasa/internal/api"
	"github.com/raihasa-dev/raihasa/internal/config"
	"github.com/raihasa-dev/raihasa/internal/guard"
	"github.com/raihasa-dev/raihasa/internal/session"
	"github.com/raihasa-dev/raihasa/internal/storage"
)

// Server is the HTTP gateway: it owns the visitor sessions, the token
// cookies and the client for the remote Raihasa backend, and gates every
// page route through the guard.
type Server struct {
	router   *gin.Engine
	cfg      *config.Config
	logger   zerolog.Logger
	api      *api.Client
	sessions *session.Manager
	draftKV  storage.KV
	aliases  []Alias
	version  string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	sessionKV, draftKV, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	idleTTL := time.Duration(cfg.Session.IdleMinutes) * time.Minute
	manager := session.NewManager(sessionKV, idleTTL, zlog)

	client := api.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)

	aliases, err := LoadAliases(cfg.Server.RedirectsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load redirect aliases: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		logger:   zlog,
		api:      client,
		sessions: manager,
		draftKV:  draftKV,
		aliases:  aliases,
		version:  version,
	}
	s.setupRouter()
	return s, nil
}

// openStorage builds the two KV backends: one session-scoped, one durable.
// Sessions stay in memory unless redis is configured (redis shares them
// across instances and expires them server-side).
func openStorage(cfg *config.Config) (sessionKV, draftKV storage.KV, err error) {
	idleTTL := time.Duration(cfg.Session.IdleMinutes) * time.Minute

	switch cfg.Storage.Driver {
	case "memory":
		mem := storage.NewMemory()
		return mem, mem, nil
	case "sqlite":
		db, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMemory(), storage.NewGorm(db), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Storage.RedisAddress})
		return storage.NewRedis(client, idleTTL), storage.NewRedis(client, 0), nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.cfg.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	registerValidators()

	s.router.GET("/health", s.healthCheck)

	// Static path aliases, e.g. /login -> /auth/login (temporary redirects)
	s.registerAliases()

	s.router.Use(s.sessionMiddleware())

	// Auth pages are public-audience: authenticated visitors are sent to
	// their role home instead.
	authPages := s.router.Group("/auth")
	authPages.Use(s.guardMiddleware(guard.AudiencePublic))
	{
		authPages.POST("/login", s.login)
		authPages.POST("/register", s.register)
	}

	// Logout and identity are reachable regardless of audience
	s.router.POST("/auth/logout", s.logout)
	s.router.GET("/auth/me", s.getCurrentUser)

	dashboard := s.router.Group("/dashboard")
	dashboard.Use(s.guardMiddleware(guard.AudienceUser))
	{
		dashboard.GET("", s.getDashboard)

		dashboard.GET("/dreamshub/threads", s.listThreads)
		dashboard.POST("/dreamshub/threads", s.createThread)

		dashboard.GET("/lms/courses", s.listCourses)
		dashboard.GET("/lms/courses/:id", s.getCourse)

		dashboard.GET("/recommendation", s.getDraft)
		dashboard.POST("/recommendation/steps/:step", s.postStep)
		dashboard.POST("/recommendation/submit", s.submitRecommendation)
		dashboard.GET("/recommendation/provinces", s.listProvinces)
		dashboard.GET("/recommendation/cities", s.listCities)

		dashboard.GET("/payments/:order_id", s.getPaymentStatus)
	}

	admin := s.router.Group("/admin")
	admin.Use(s.guardMiddleware(guard.AudienceAdmin))
	{
		admin.GET("", s.getAdminHome)
		admin.GET("/dreamshub/threads", s.listThreads)
	}
}

// registerValidators adds custom binding validators to gin's engine
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("regioncode", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return false
		}
		for _, char := range value {
			if char < '0' || char > '9' {
				return false
			}
		}
		return true
	})
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(ctxRequestID)).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "raihasa-gateway",
		"version":   s.version,
	})
}

// Router exposes the configured router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := s.sessions.StartSweeper(s.cfg.Session.SweepSchedule); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.cfg.Server.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	s.sessions.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
