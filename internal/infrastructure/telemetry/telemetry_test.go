package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cshub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:        false,
		MetricsEnabled: true,
		LogsEnabled:    true,
		DBTraceEnabled: true,
		ServiceName:    "cshub-test",
	}, "test", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tel.Tracer.IsEnabled())
	assert.False(t, tel.Meter.IsEnabled())
	assert.False(t, tel.Logs.IsEnabled())
	assert.False(t, tel.Profiler.IsEnabled())
	assert.Nil(t, tel.DBPlugins())
	assert.NotNil(t, tel.Meter.Meter("x"))

	core := tel.Logs.Core()
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetry_DBPlugins(t *testing.T) {
	tel := &Telemetry{
		cfg:    config.TelemetryConfig{Enabled: true, DBTraceEnabled: true, DBSlowQueryThresh: time.Second},
		logger: zap.NewNop(),
	}
	plugins := tel.DBPlugins()
	require.Len(t, plugins, 1)
	assert.Equal(t, "cshub:db_tracing", plugins[0].Name())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource(t *testing.T) {
	res, err := newResource("cshub", "")
	require.NoError(t, err)
	assert.Contains(t, res.String(), "service.name=cshub")
	assert.Contains(t, res.String(), "service.version=dev")
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "cshub"}, zap.NewNop())
	assert.EqualError(t, err, "profiler server address is required when profiling is enabled")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.EqualError(t, err, "profiler application name is required when profiling is enabled")

	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route":       "/api/v1/customers",
		"actor_id":    "abc",
		"Customer-ID": "123",
		"empty":       "",
		"my op":       strings.Repeat("x", 200),
	})
	assert.Equal(t, []string{"route", "/api/v1/customers", "my_op", strings.Repeat("x", MaxLabelValueLength)}, pairs)
}

func TestWithProfilingLabels_RunsFn(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called++ })
	WithProfilingLabels(context.Background(), OperationLabels("import"), func(context.Context) { called++ })
	assert.Equal(t, 2, called)
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	log := zap.New(core).With(zap.String("k", "v"))

	log.Info("dropped")
	log.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartServiceSpan(context.Background(), "customer_import", "import", SpanAttrRowCount, 3)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrImported, 2, SpanAttrFailed, int64(1), 42, "ignored")
	AddEvent(span, "row_failed", "row", 2)
	RecordError(span, errors.New("lookup timeout"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "customer_import.import", s.Name())
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Len(t, s.Attributes(), 3)
	require.Len(t, s.Events(), 2) // row_failed + recorded exception
	assert.Equal(t, "row_failed", s.Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestDBTracingPlugin_Initialize(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	plugin := NewDBTracingPlugin(DBTracingConfig{DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, db.Use(plugin))

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.WithContext(context.Background()).Create(&probe{Name: "a"}).Error)

	var got probe
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "a", got.Name)
}
