// Package api serves the PIBBLE HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/api/handlers"
	pibblemw "github.com/pibble/pibble/internal/api/middleware"
	"github.com/pibble/pibble/internal/api/ratelimit"
	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/enrich"
	"github.com/pibble/pibble/internal/health"
	"github.com/pibble/pibble/internal/lists"
	"github.com/pibble/pibble/internal/media"
)

// ListService loads and tracks user lists.
type ListService interface {
	Refresh(ctx context.Context, token, userID, category string) (lists.Snapshot, error)
	Current(userID, category string) (lists.Snapshot, error)
}

// BatchEnricher enriches ad-hoc batches of raw entries.
type BatchEnricher interface {
	Run(ctx context.Context, token string, entries []media.RawListEntry) *enrich.Batch
}

// HealthReporter reports upstream service health.
type HealthReporter interface {
	GetAll() []health.HealthItem
}

// WebSocketHandler upgrades list-update subscriptions.
type WebSocketHandler interface {
	HandleWebSocket(c echo.Context) error
	ClientCount() int
}

// Services are the components the API serves. Scheduler and Hub may be nil.
type Services struct {
	Lists     ListService
	Batches   BatchEnricher
	Items     enrich.ItemEnricher
	Health    HealthReporter
	Scheduler handlers.TaskScheduler
	Hub       WebSocketHandler
	Auth      pibblemw.TokenValidator
	Limiter   *ratelimit.TokenLimiter
}

// Server handles HTTP requests for the PIBBLE API.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	svc       Services
	auth      *pibblemw.AuthMiddleware
	logger    zerolog.Logger
	startTime time.Time
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, svc Services, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       cfg,
		svc:       svc,
		auth:      pibblemw.NewAuthMiddleware(svc.Auth),
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now().UTC(),
	}
	if svc.Limiter != nil {
		s.auth.SetFailureRecorder(svc.Limiter)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit("1M"))
	s.echo.Use(pibblemw.SecurityHeaders())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("requestId", v.RequestID).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("requestId", v.RequestID).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
