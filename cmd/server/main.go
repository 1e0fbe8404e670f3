package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	appaccount "github.com/cshub/backend/internal/application/account"
	"github.com/cshub/backend/internal/application/dashboard"
	appevent "github.com/cshub/backend/internal/application/event"
	importapp "github.com/cshub/backend/internal/application/import"
	appledger "github.com/cshub/backend/internal/application/ledger"
	apppipeline "github.com/cshub/backend/internal/application/pipeline"
	"github.com/cshub/backend/internal/infrastructure/auth"
	"github.com/cshub/backend/internal/infrastructure/cache"
	"github.com/cshub/backend/internal/infrastructure/config"
	"github.com/cshub/backend/internal/infrastructure/event"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/infrastructure/migration"
	"github.com/cshub/backend/internal/infrastructure/persistence"
	"github.com/cshub/backend/internal/infrastructure/telemetry"
	"github.com/cshub/backend/internal/interfaces/http/handler"
	"github.com/cshub/backend/internal/interfaces/http/router"
	"github.com/cshub/backend/migrations"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	// Rebuild with the OTLP log bridge teed in; a no-op core when export is off.
	log, err := logger.New(logCfg, tel.Logs.Core())
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting customer success hub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh),
		persistence.WithPlugins(tel.DBPlugins()...),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := migrateSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}

	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	churnRepo := persistence.NewGormChurnRecordRepository(db.DB)
	riskRepo := persistence.NewGormRiskRepository(db.DB)
	opportunityRepo := persistence.NewGormOpportunityRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	statsQuery := persistence.NewGormStatsQuery(db.DB)

	// Events: committed aggregates -> dispatcher -> bus -> subscribers
	var meter metric.Meter
	if tel.Meter.IsEnabled() {
		meter = tel.Meter.Meter("cshub")
	}
	busOpts := []event.BusOption{}
	var businessMetrics *telemetry.BusinessMetrics
	if meter != nil {
		businessMetrics, err = telemetry.NewBusinessMetrics(meter, log)
		if err != nil {
			log.Fatal("Failed to create business metrics", zap.Error(err))
		}
		busOpts = append(busOpts, event.WithObserver(businessMetrics))
	}
	bus := event.NewInMemoryEventBus(log, busOpts...)

	statsCache, redisClient := cache.NewStatsCache(cfg.Redis, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	bus.Subscribe(dashboard.NewInvalidationHandler(statsCache, log))

	serializer := event.NewEventSerializer()
	event.RegisterDomainEvents(serializer)
	bus.Subscribe(event.NewAuditLogHandler(serializer, log))
	if businessMetrics != nil {
		bus.Subscribe(businessMetrics)
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	dispatcher := appevent.NewDispatcher(bus, log)

	accountService := appaccount.NewAccountService(customerRepo, churnRepo,
		persistence.NewGormAccountTransactionScope(db.DB), dispatcher)
	riskService := appaccount.NewRiskService(riskRepo, customerRepo, dispatcher)
	opportunityService := apppipeline.NewOpportunityService(opportunityRepo, customerRepo,
		persistence.NewGormPipelineTransactionScope(db.DB), dispatcher)
	invoiceService := appledger.NewInvoiceService(invoiceRepo, customerRepo, dispatcher)
	dashboardService := dashboard.NewService(statsQuery, statsCache, cfg.Dashboard.CacheTTL)

	importOpts := []importapp.Option{
		importapp.WithLookupTimeout(cfg.Import.LookupTimeout),
		importapp.WithMaxErrors(cfg.Import.MaxErrors),
	}
	if businessMetrics != nil {
		importOpts = append(importOpts, importapp.WithRecorder(businessMetrics))
	}
	importService := importapp.NewCustomerImportService(accountService, userRepo, importOpts...)

	var jwtService *auth.JWTService
	if cfg.JWT.Enabled {
		jwtService = auth.NewJWTService(cfg.JWT)
		log.Info("Actor tokens verified with JWT", zap.String("issuer", cfg.JWT.Issuer))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Logger:      log,
		JWT:         jwtService,
		Meter:       meter,
		Tracing:     tel.Tracer.IsEnabled(),
		Profiling:   tel.Profiler.IsEnabled(),
	})
	if err != nil {
		log.Fatal("Failed to configure HTTP engine", zap.Error(err))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.Mount(r, router.Handlers{
		Customers:     handler.NewCustomerHandler(accountService),
		Imports:       handler.NewCustomerImportHandler(importService, cfg.Import.MaxFileSize),
		Invoices:      handler.NewInvoiceHandler(invoiceService),
		Risks:         handler.NewRiskHandler(riskService),
		Opportunities: handler.NewOpportunityHandler(opportunityService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Users:         handler.NewUserHandler(userRepo),
		Health:        handler.NewHealthHandler(db, version),
	})
	log.Debug("Routes mounted", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down telemetry", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on postgres. sqlite,
// or postgres with database.auto_migrate set, is created with gorm instead.
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == config.DriverSQLite || cfg.Database.AutoMigrate {
		log.Info("Creating schema with auto-migrate", zap.String("driver", cfg.Database.Driver))
		return db.AutoMigrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// The migrator shares the pool; closing it would close the server's connections.
	return m.Up()
}
