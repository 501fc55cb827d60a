package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

// recordingProvider records the span names and start attributes passed to
// its tracer and otherwise behaves like the noop provider.
type recordingProvider struct {
	noop.TracerProvider

	mu     sync.Mutex
	starts []recordedStart
}

type recordedStart struct {
	name  string
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{p: p}
}

type recordingTracer struct {
	noop.Tracer
	p *recordingProvider
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	t.p.mu.Lock()
	t.p.starts = append(t.p.starts, recordedStart{name: name, kind: cfg.SpanKind(), attrs: cfg.Attributes()})
	t.p.mu.Unlock()
	return t.Tracer.Start(ctx, name, opts...)
}

func (p *recordingProvider) recorded() []recordedStart {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedStart(nil), p.starts...)
}

func TestOpenTelemetry_StartsServerSpan(t *testing.T) {
	tp := &recordingProvider{}
	h := newRoutedHandler(OpenTelemetry(
		WithTracerProvider(tp),
		WithAttributeExtractor(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	starts := tp.recorded()
	if len(starts) != 1 {
		t.Fatalf("spans started = %d, want 1", len(starts))
	}
	s := starts[0]
	if s.name != "GET /uploads/abc" {
		t.Errorf("initial span name = %q", s.name)
	}
	if s.kind != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", s.kind)
	}
	want := map[attribute.Key]string{
		"http.request.method": "GET",
		"url.path":            "/uploads/abc",
		"test.attr":           "ok",
	}
	for _, kv := range s.attrs {
		if v, ok := want[kv.Key]; ok {
			if kv.Value.AsString() != v {
				t.Errorf("%s = %q, want %q", kv.Key, kv.Value.AsString(), v)
			}
			delete(want, kv.Key)
		}
	}
	if len(want) != 0 {
		t.Errorf("missing attributes: %v", want)
	}
}

func TestOpenTelemetry_HandlerSeesSpanContext(t *testing.T) {
	var sawSpan bool
	mw := OpenTelemetry()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = trace.SpanFromContext(r.Context()) != nil
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !sawSpan {
		t.Fatal("expected a span on the request context")
	}
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	tp := &recordingProvider{}
	nextCalled := false
	mw := OpenTelemetry(
		WithTracerProvider(tp),
		WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !nextCalled {
		t.Fatal("expected next handler to run")
	}
	if n := len(tp.recorded()); n != 0 {
		t.Fatalf("spans started = %d, want 0", n)
	}
}
