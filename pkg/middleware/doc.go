// Package middleware provides production-grade HTTP middleware for flexi
// applications.
//
// This package includes:
//   - Prometheus metrics middleware
//   - OpenTelemetry distributed tracing middleware
//   - Recovery and request logging middleware
//
// All middleware has the standard shape func(http.Handler) http.Handler, so
// it composes with flexi's App.Use as well as any plain http server or mux.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects metrics about request traffic:
//   - flexi_requests_total: Counter of requests by path, method, and status
//   - flexi_request_duration_seconds: Request duration histogram
//   - flexi_requests_in_flight: Gauge of concurrently handled requests
//
//	app.Use(middleware.Prometheus())
//
// Then expose metrics:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware opens a server span per request and injects
// it into the request context, so database drivers and HTTP clients made
// with the request's context inherit the trace:
//
//	app.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it in
// your main() before starting the server.
package middleware
