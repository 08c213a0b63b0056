// Package tracing records one trace per interview session.
package tracing

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName scopes the spans this package creates.
const InstrumentationName = "github.com/abhisek/dataready/internal/tracing"

// Tracer is the observability sink for the interview lifecycle. Calls are
// fire-and-forget.
type Tracer interface {
	StartTrace(ctx context.Context, sessionID string, metadata map[string]any)
	EndTrace(ctx context.Context, sessionID string, metadata map[string]any)
}

// Noop discards everything.
type Noop struct{}

func (Noop) StartTrace(context.Context, string, map[string]any) {}
func (Noop) EndTrace(context.Context, string, map[string]any)   {}

// OTel keeps one root span open per session between StartTrace and EndTrace.
type OTel struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewOTel returns an OTel tracer. A nil provider uses the global one.
func NewOTel(tp trace.TracerProvider) *OTel {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTel{
		tracer: tp.Tracer(InstrumentationName),
		spans:  make(map[string]trace.Span),
	}
}

// StartTrace opens the session span. A second start for the same session
// ends the previous span first.
func (o *OTel) StartTrace(ctx context.Context, sessionID string, metadata map[string]any) {
	_, span := o.tracer.Start(ctx, "interview",
		trace.WithNewRoot(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("session.id", sessionID)),
		trace.WithAttributes(Attributes(metadata)...),
	)

	o.mu.Lock()
	prev := o.spans[sessionID]
	o.spans[sessionID] = span
	o.mu.Unlock()

	if prev != nil {
		prev.End()
	}
}

// EndTrace closes the session span. A final_state of "error" marks the
// span as failed.
func (o *OTel) EndTrace(_ context.Context, sessionID string, metadata map[string]any) {
	o.mu.Lock()
	span, ok := o.spans[sessionID]
	delete(o.spans, sessionID)
	o.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(Attributes(metadata)...)
	if metadata["final_state"] == "error" {
		msg, _ := metadata["error"].(string)
		span.SetStatus(codes.Error, msg)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ContextFor returns ctx carrying the session span, so spans started from it
// nest under the interview. ctx is returned unchanged for unknown sessions.
func (o *OTel) ContextFor(ctx context.Context, sessionID string) context.Context {
	o.mu.Lock()
	span, ok := o.spans[sessionID]
	o.mu.Unlock()
	if !ok {
		return ctx
	}
	return trace.ContextWithSpan(ctx, span)
}

// Attributes converts metadata into span attributes with an "interview."
// prefix. Unsupported value types are formatted as strings.
func Attributes(metadata map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(metadata))
	for k, v := range metadata {
		key := "interview." + k
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(key, val))
		case int:
			attrs = append(attrs, attribute.Int(key, val))
		case int64:
			attrs = append(attrs, attribute.Int64(key, val))
		case float64:
			attrs = append(attrs, attribute.Float64(key, val))
		case bool:
			attrs = append(attrs, attribute.Bool(key, val))
		case []string:
			attrs = append(attrs, attribute.StringSlice(key, val))
		case fmt.Stringer:
			attrs = append(attrs, attribute.String(key, val.String()))
		default:
			attrs = append(attrs, attribute.String(key, fmt.Sprint(val)))
		}
	}
	return attrs
}

// Config controls tracer provider setup.
type Config struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// InitProvider installs a global tracer provider exporting to w (stdout
// when nil). It returns the shutdown function; when tracing is disabled the
// shutdown is a no-op and the global provider is left alone.
func InitProvider(cfg Config, w io.Writer) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if w != nil {
		opts = append(opts, stdouttrace.WithWriter(w))
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "dataready"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(name)),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
