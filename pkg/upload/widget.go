package upload

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vango-dev/imgupload/pkg/dom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DragOverClass is toggled on the drop zone while files hover over it.
	DragOverClass = "dragover"

	// CounterFormat is the counter text; the verb receives the file count.
	CounterFormat = "Files selected: %d"

	tracerName = "github.com/vango-dev/imgupload/pkg/upload"
)

// Option configures a Widget.
type Option func(*Widget)

// WithNotifier sets the receiver of validation errors.
// Default: a notifier that logs a warning.
func WithNotifier(n Notifier) Option {
	return func(w *Widget) {
		w.notifier = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// WithHTTPClient sets the client used by Upload. Default: http.DefaultClient.
// A nil client keeps the default.
func WithHTTPClient(client *http.Client) Option {
	return func(w *Widget) {
		if client != nil {
			w.client = client
		}
	}
}

// WithMetrics sets the metrics collectors. Default: none.
func WithMetrics(m *Metrics) Option {
	return func(w *Widget) {
		w.metrics = m
	}
}

// WithTracer sets the tracer used for upload spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(w *Widget) {
		w.tracer = t
	}
}

// Widget collects, validates, previews and uploads image files.
// Its methods are safe for concurrent use.
type Widget struct {
	config   Config
	anchors  dom.Anchors
	notifier Notifier
	logger   *slog.Logger
	client   *http.Client
	metrics  *Metrics
	tracer   trace.Tracer

	mu    sync.Mutex
	files []*File

	// syncMu serializes pushes of the collection to the page.
	syncMu sync.Mutex

	unbindOnce sync.Once
	unbind     []func()
}

// New creates a widget and binds it to the anchors that are present.
// cfg is copied; zero limits and an empty type list take the defaults.
func New(cfg *Config, anchors dom.Anchors, opts ...Option) *Widget {
	w := &Widget{
		config:  cfg.normalized(),
		anchors: anchors,
		logger:  slog.Default(),
		client:  http.DefaultClient,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.notifier == nil {
		w.notifier = logNotifier{logger: w.logger}
	}

	w.bind()
	return w
}

// bind registers the page listeners.
func (w *Widget) bind() {
	if zone := w.anchors.DropZone; zone != nil {
		w.unbind = append(w.unbind,
			zone.Listen(dom.EventDragOver, func(dom.Event) {
				zone.AddClass(DragOverClass)
			}),
			zone.Listen(dom.EventDragLeave, func(dom.Event) {
				zone.RemoveClass(DragOverClass)
			}),
			zone.Listen(dom.EventDrop, func(ev dom.Event) {
				zone.RemoveClass(DragOverClass)
				w.ProcessFiles(ev.Files)
			}),
		)
	}

	if input := w.anchors.FileInput; input != nil {
		w.unbind = append(w.unbind, input.Listen(dom.EventChange, func(ev dom.Event) {
			w.ProcessFiles(ev.Files)
		}))
	}

	if browse := w.anchors.Browse; browse != nil {
		w.unbind = append(w.unbind, browse.Listen(dom.EventClick, func(dom.Event) {
			if input := w.anchors.FileInput; input != nil {
				input.Click()
			}
		}))
	}
}

// Close removes the widget's page listeners. The collection is kept.
func (w *Widget) Close() {
	w.unbindOnce.Do(func() {
		for _, remove := range w.unbind {
			remove()
		}
		w.unbind = nil
	})
}

// Config returns a copy of the effective configuration.
func (w *Widget) Config() Config {
	c := w.config
	c.AllowedTypes = append([]string(nil), w.config.AllowedTypes...)
	return c
}

// ProcessFiles validates candidates in order and appends the accepted ones
// to the collection. Rejections are passed to the Notifier in one call.
// For accepted files, preview decoding starts in the background and the
// file input and counter are brought up to date before ProcessFiles returns.
func (w *Widget) ProcessFiles(candidates []dom.File) *Batch {
	batch := &Batch{}
	var indexes []int

	w.mu.Lock()
	for i, h := range candidates {
		if h == nil {
			continue
		}
		f := newFile(h)
		if err := w.validate(f, len(w.files)+len(batch.Accepted)); err != nil {
			batch.Errors = append(batch.Errors, err)
			continue
		}
		batch.Accepted = append(batch.Accepted, f)
		indexes = append(indexes, i)
	}
	w.files = append(w.files, batch.Accepted...)
	total := len(w.files)
	w.mu.Unlock()

	w.metrics.recordAccepted(len(batch.Accepted))
	w.metrics.recordRejected(batch.Errors)

	if len(batch.Errors) > 0 {
		w.logger.Info("files rejected",
			"rejected", len(batch.Errors),
			"accepted", len(batch.Accepted))
		w.notifier.Notify(batch.Errors)
	}

	if len(batch.Accepted) > 0 {
		batch.tasks = w.createPreviews(batch.Accepted, indexes)
		w.sync()
		w.logger.Debug("files accepted", "accepted", len(batch.Accepted), "total", total)
	}

	return batch
}

// validate applies the type, size and limit checks in that order.
// count is the number of files already held or accepted in this pass.
func (w *Widget) validate(f *File, count int) *ValidationError {
	switch {
	case !w.config.Allows(f.ContentType):
		return &ValidationError{
			FileName:    f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
			Reason:      InvalidType,
		}
	case f.Size > w.config.MaxSize:
		return &ValidationError{
			FileName:    f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
			Reason:      TooLarge,
			Limit:       w.config.MaxSize,
		}
	case count >= w.config.MaxFiles:
		return &ValidationError{
			FileName:    f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
			Reason:      LimitExceeded,
			Limit:       int64(w.config.MaxFiles),
		}
	}
	return nil
}

// RemoveFile removes the first file named name and reports whether one
// was found. Nothing changes when the name is absent.
func (w *Widget) RemoveFile(name string) bool {
	w.mu.Lock()
	found := false
	for i, f := range w.files {
		if f.Name == name {
			w.files = append(w.files[:i:i], w.files[i+1:]...)
			found = true
			break
		}
	}
	w.mu.Unlock()

	if found {
		w.sync()
	}
	return found
}

// Clear empties the collection and the preview container.
func (w *Widget) Clear() {
	w.mu.Lock()
	w.files = nil
	w.mu.Unlock()

	w.sync()
	if previews := w.anchors.Previews; previews != nil {
		previews.Clear()
	}
}

// Files returns a copy of the collection in insertion order.
func (w *Widget) Files() []File {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]File, len(w.files))
	for i, f := range w.files {
		out[i] = *f
	}
	return out
}

// Len returns the number of files in the collection.
func (w *Widget) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// sync pushes the current collection to the file input and the counter.
func (w *Widget) sync() {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	w.mu.Lock()
	current := handles(w.files)
	w.mu.Unlock()

	if input := w.anchors.FileInput; input != nil {
		input.SetFiles(current)
	}
	if counter := w.anchors.Counter; counter != nil {
		counter.SetText(fmt.Sprintf(CounterFormat, len(current)))
	}
}
