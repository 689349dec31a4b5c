// Package observability wires OpenTelemetry tracing for the codec and the CLI
package observability

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/tables/pkg/errors"
	stringpool "github.com/ajitpratap0/tables/pkg/strings"
)

// InstrumentationName names the tracer used by library packages
const InstrumentationName = "github.com/ajitpratap0/tables"

// TracingConfig contains tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
	ExporterType   string    // "stdout" or "none"
	Writer         io.Writer // stdout exporter destination, os.Stderr if nil
	PrettyPrint    bool
	BatchTimeout   time.Duration
}

var (
	mu       sync.RWMutex
	provider trace.TracerProvider
)

// Tracer returns the tracer library code starts spans with. Until
// InitTracing installs a provider it follows the otel global provider,
// which is a no-op by default.
func Tracer() trace.Tracer {
	mu.RLock()
	tp := provider
	mu.RUnlock()
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}

// SetTracerProvider overrides the provider used by Tracer. Tests install a
// provider backed by a span recorder.
func SetTracerProvider(tp trace.TracerProvider) {
	mu.Lock()
	provider = tp
	mu.Unlock()
}

// InitTracing installs a batching SDK provider and returns its shutdown
// function. ExporterType "none" installs nothing and returns a no-op.
func InitTracing(ctx context.Context, config TracingConfig) (func(context.Context) error, error) {
	if config.ExporterType == "none" || config.ExporterType == "" {
		return func(context.Context) error { return nil }, nil
	}
	if config.ExporterType != "stdout" {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported trace exporter: %s", config.ExporterType)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create resource")
	}

	w := config.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if config.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create stdout exporter")
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	batchTimeout := config.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
	)
	otel.SetTracerProvider(tp)
	SetTracerProvider(tp)

	return func(ctx context.Context) error {
		SetTracerProvider(nil)
		if err := tp.Shutdown(ctx); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to shutdown tracer")
		}
		return nil
	}, nil
}

// Span wraps an otel span, batching attributes until End
type Span struct {
	span       trace.Span
	attributes []attribute.KeyValue
}

// StartSpan starts a span named operation on Tracer
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := Tracer().Start(ctx, operation)
	return ctx, &Span{span: span}
}

// SetAttribute records an attribute, flushed on End
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue

	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case uint64:
		attr = attribute.Int64(key, int64(v))
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	default:
		attr = attribute.String(key, stringpool.Sprintf("%v", v))
	}

	s.attributes = append(s.attributes, attr)
}

// End sets the status from err and ends the span
func (s *Span) End(err error) {
	if len(s.attributes) > 0 {
		s.span.SetAttributes(s.attributes...)
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		s.span.SetAttributes(attribute.String("error.type", string(errors.TypeOf(err))))
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
