package linkhandlers

import (
	"context"

	"github.com/vitalvas/deeplink/deeplink"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "github.com/vitalvas/deeplink"

// TracingConfig configures the OpenTelemetry middleware.
type TracingConfig struct {
	// TracerProvider creates the tracer. Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// TracerName is the name of the tracer.
	TracerName string

	// IncludeURL adds the full deep link as the url.full attribute.
	// Deep links may carry tokens, so it is disabled by default.
	IncludeURL bool

	// AttributeExtractor adds custom attributes for each traced match.
	AttributeExtractor func(m *deeplink.Match) []attribute.KeyValue
}

// TracingMiddleware returns a middleware that starts a span around every
// handler invocation. The span context is passed to the handler.
func TracingMiddleware(cfg TracingConfig) deeplink.MiddlewareFunc {
	provider := cfg.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	name := cfg.TracerName
	if name == "" {
		name = defaultTracerName
	}

	tracer := provider.Tracer(name)

	return func(next deeplink.Invoker) deeplink.Invoker {
		return func(ctx context.Context, m *deeplink.Match) (bool, error) {
			attrs := []attribute.KeyValue{
				attribute.String("deeplink.template", m.Registration.String()),
				attribute.String("deeplink.pattern", m.Registration.Pattern()),
				attribute.Int("deeplink.index", m.Index),
			}
			if route := m.Registration.GetName(); route != "" {
				attrs = append(attrs, attribute.String("deeplink.route", route))
			}
			if cfg.IncludeURL && m.URL != nil {
				attrs = append(attrs, attribute.String("url.full", m.URL.String()))
			}
			if cfg.AttributeExtractor != nil {
				attrs = append(attrs, cfg.AttributeExtractor(m)...)
			}

			ctx, span := tracer.Start(ctx, "deeplink "+m.Registration.String(),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			claimed, err := next(ctx, m)

			span.SetAttributes(attribute.String("deeplink.outcome", outcome(claimed, err)))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}

			return claimed, err
		}
	}
}
