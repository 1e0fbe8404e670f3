package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cshub/backend/internal/infrastructure/auth"
	"github.com/cshub/backend/internal/infrastructure/config"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/interfaces/http/middleware"
)

// EngineConfig holds what the middleware chain needs
type EngineConfig struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Logger      *zap.Logger
	// JWT is nil when actors are identified by X-User-ID
	JWT            *auth.JWTService
	Meter          metric.Meter
	TracerProvider trace.TracerProvider
	Tracing        bool
	Profiling      bool
}

// NewEngine returns a gin engine with the middleware chain installed.
// Request IDs are assigned before logging so every log line carries one,
// and the actor is resolved inside the server span.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = cfg.Profiling

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.Tracing,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.SpanEnricher(),
		middleware.Actor(middleware.ActorConfig{JWT: cfg.JWT, Logger: log}),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Profiling(profiling),
	)
	return engine, nil
}
