// Package middleware provides HTTP middleware for the development server:
// Prometheus request metrics and OpenTelemetry server spans.
//
// Both are chi-compatible (func(http.Handler) http.Handler) and label
// requests by the matched chi route pattern rather than the raw path, so
// IDs in URLs such as /uploads/{id} do not create new series.
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package middleware
