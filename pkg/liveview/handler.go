package liveview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/imgupload/pkg/toast"
	"github.com/vango-dev/imgupload/pkg/upload"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	defaultPatchBuffer = 64

	// messageOverhead covers the JSON framing and the metadata of files
	// sent without content.
	messageOverhead = 1 << 20
)

// ConfigFunc returns the widget configuration for a connecting request.
type ConfigFunc func(r *http.Request) *upload.Config

// Option configures Handler.
type Option func(*handler)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *handler) {
		h.logger = logger
	}
}

// WithReadLimit sets the maximum size in bytes of one inbound message.
// Dropped files travel base64 encoded inside a single message.
// Default: ReadLimit of the connection's effective config.
func WithReadLimit(n int64) Option {
	return func(h *handler) {
		h.readLimit = n
	}
}

// WithCheckOrigin sets the upgrader's origin check.
// Default: gorilla/websocket's same-origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *handler) {
		h.upgrader.CheckOrigin = fn
	}
}

// WithWidgetOptions adds options for every widget the handler creates,
// after the handler's own notifier and logger.
func WithWidgetOptions(opts ...upload.Option) Option {
	return func(h *handler) {
		h.widgetOpts = append(h.widgetOpts, opts...)
	}
}

type handler struct {
	config     ConfigFunc
	logger     *slog.Logger
	readLimit  int64
	upgrader   websocket.Upgrader
	widgetOpts []upload.Option
}

// Handler returns an http.Handler that upgrades to a WebSocket and runs
// one widget per connection until the client disconnects.
func Handler(config ConfigFunc, opts ...Option) http.Handler {
	h := &handler{
		config: config,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var cfg *upload.Config
	if h.config != nil {
		cfg = h.config(r)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	page := NewPage(defaultPatchBuffer)
	opts := append([]upload.Option{
		upload.WithNotifier(toast.ValidationNotifier(page)),
		upload.WithLogger(h.logger),
	}, h.widgetOpts...)
	widget := upload.New(cfg, page.Anchors(), opts...)

	ctx, cancel := context.WithCancel(r.Context())
	s := &session{
		conn:   conn,
		page:   page,
		widget: widget,
		logger: h.logger.With("remote", r.RemoteAddr),
		ctx:    ctx,
	}

	effective := widget.Config()
	readLimit := h.readLimit
	if readLimit <= 0 {
		readLimit = ReadLimit(effective)
	}
	conn.SetReadLimit(readLimit)
	s.logger.Info("page connected", "readLimit", readLimit)

	page.Emit(EventConfig, map[string]any{
		"maxFiles":     effective.MaxFiles,
		"maxSize":      effective.MaxSize,
		"allowedTypes": effective.AllowedTypes,
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop()
	}()

	s.readLoop()

	cancel()
	widget.Close()
	s.uploads.Wait()
	page.Close()
	<-writerDone
	conn.Close()
	s.logger.Info("page disconnected")
}

// ReadLimit is the largest inbound message a page with cfg can send in a
// valid drop: MaxFiles files of MaxSize bytes, base64 encoded, plus
// framing. The client script only attaches content to files that pass
// the type and size checks, and to at most MaxFiles of them per message.
func ReadLimit(cfg upload.Config) int64 {
	maxFiles, maxSize := int64(cfg.MaxFiles), cfg.MaxSize
	if maxFiles <= 0 {
		maxFiles = upload.DefaultMaxFiles
	}
	if maxSize <= 0 {
		maxSize = upload.DefaultMaxSize
	}
	encoded := (maxSize + 2) / 3 * 4
	return maxFiles*encoded + messageOverhead
}

// session is one connected page.
type session struct {
	conn    *websocket.Conn
	page    *Page
	widget  *upload.Widget
	logger  *slog.Logger
	ctx     context.Context
	uploads sync.WaitGroup
}

// readLoop reads client messages until the connection fails.
func (s *session) readLoop() {
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			switch {
			case !errors.As(err, &closeErr):
				s.logger.Warn("read failed", "error", err)
			case websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure):
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("invalid message", "error", err)
			continue
		}
		s.handle(msg)
	}
}

func (s *session) handle(msg Message) {
	switch msg.Type {
	case MsgUpload:
		s.uploads.Add(1)
		go func() {
			defer s.uploads.Done()
			result := s.widget.Upload(s.ctx)
			toast.UploadResult(s.page, result)
			s.page.Emit(EventResult, result)
		}()
	case MsgClear:
		s.widget.Clear()
	case MsgRemove:
		s.widget.RemoveFile(msg.Name)
	default:
		files, err := decodeFiles(msg.Files)
		if err != nil {
			s.logger.Warn("invalid file payload", "type", msg.Type, "error", err)
			toast.Error(s.page, "Could not read the selected files")
			return
		}
		if !s.page.Dispatch(msg, files) {
			s.logger.Debug("unhandled message", "type", msg.Type, "target", msg.Target, "hid", msg.HID)
		}
	}
}

// writeLoop is the only writer on the connection.
func (s *session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case patch := <-s.page.Patches():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(patch); err != nil {
				s.logger.Error("write error", "error", err)
				s.conn.Close()
				s.page.Close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.conn.Close()
				s.page.Close()
				return
			}
		case <-s.page.Done():
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
