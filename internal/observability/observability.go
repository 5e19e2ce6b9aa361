// Package observability builds the logger, tracer provider and metrics registry used by every
// module.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Config selects log level and format.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	LogFormat   string // json|text
}

// Observability bundles the process-wide telemetry handles.
type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	tracers  trace.TracerProvider
}

// New builds the telemetry handles. Output defaults to stdout.
func New(cfg Config, out io.Writer) Observability {
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   logger,
		Registry: registry,
		tracers:  otel.GetTracerProvider(),
	}
}

// Tracer returns the tracer for a module.
func (o Observability) Tracer(module string) trace.Tracer {
	return o.tracers.Tracer("trivia-ledger/" + module)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
