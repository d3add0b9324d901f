// Package linkhandlers provides middleware for the deeplink dispatcher.
//
// Middleware wraps matched handlers only. Attach it with Dispatcher.Use or
// deeplink.WithMiddleware; the first middleware added is the outermost.
//
// # Recovery Middleware
//
// RecoveryMiddleware turns a panicking handler into a *PanicError, which
// the dispatcher records like any other handler error before trying the
// next registration.
//
//	d.Use(linkhandlers.RecoveryMiddleware(linkhandlers.RecoveryConfig{
//	    LogFunc: func(ctx context.Context, m *deeplink.Match, v any) {
//	        slog.ErrorContext(ctx, "handler panic", "template", m.Registration.String(), "panic", v)
//	    },
//	}))
//
// # Dispatch ID Middleware
//
// DispatchIDMiddleware attaches a UUID to the handler context. Handlers read
// it back with DispatchIDFromContext.
//
//	d.Use(linkhandlers.DispatchIDMiddleware(linkhandlers.DispatchIDConfig{
//	    GenerateFunc: linkhandlers.GenerateUUIDv7,
//	}))
//
// # Metrics
//
// Metrics counts handler outcomes and unmatched URLs with Prometheus
// collectors.
//
//	metrics := linkhandlers.NewMetrics(linkhandlers.WithRegistry(registry))
//	d := deeplink.New(metrics.Options()...)
//
// # Tracing Middleware
//
// TracingMiddleware starts an OpenTelemetry span per handler invocation
// using the global tracer provider unless one is configured.
package linkhandlers
