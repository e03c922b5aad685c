package observability

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/yungbote/freshtrack-backend/internal/logger"
)

// Setup installs the global tracer provider. The exporter is chosen by
// OTEL_EXPORTER: "otlp" ships spans over OTLP/HTTP, anything else writes
// them to stdout. The returned function flushes and shuts the provider down.
func Setup(ctx context.Context, serviceName string, log *logger.Logger) (func(context.Context) error, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER"))) {
	case "otlp":
		exporter, err = otlptracehttp.New(ctx)
	default:
		exporter, err = stdouttrace.New()
	}
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("Tracing initialized", "service", serviceName)
	return tp.Shutdown, nil
}
