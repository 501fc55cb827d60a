package toast_test

import (
	"strings"
	"testing"

	"github.com/vango-dev/imgupload/pkg/dom"
	"github.com/vango-dev/imgupload/pkg/toast"
	"github.com/vango-dev/imgupload/pkg/upload"
)

// mockEmitter captures emitted events for verification.
type mockEmitter struct {
	emittedEvents []emittedEvent
}

type emittedEvent struct {
	name string
	data any
}

func (m *mockEmitter) Emit(name string, data any) {
	m.emittedEvents = append(m.emittedEvents, emittedEvent{name, data})
}

func TestSuccess(t *testing.T) {
	e := &mockEmitter{}

	toast.Success(e, "Item saved!")

	if len(e.emittedEvents) != 1 {
		t.Fatalf("expected 1 event, got %d", len(e.emittedEvents))
	}

	event := e.emittedEvents[0]
	if event.name != toast.EventName {
		t.Errorf("expected event name %q, got %q", toast.EventName, event.name)
	}

	data := event.data.(map[string]any)
	if data["level"] != "success" {
		t.Errorf("expected level success, got %v", data["level"])
	}
	if data["message"] != "Item saved!" {
		t.Errorf("expected message 'Item saved!', got %v", data["message"])
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		show func(toast.Emitter, string)
		want string
	}{
		{toast.Error, "error"},
		{toast.Warning, "warning"},
		{toast.Info, "info"},
	}

	for _, tt := range tests {
		e := &mockEmitter{}
		tt.show(e, "msg")
		data := e.emittedEvents[0].data.(map[string]any)
		if data["level"] != tt.want {
			t.Errorf("expected level %s, got %v", tt.want, data["level"])
		}
	}
}

func TestWithTitle(t *testing.T) {
	e := &mockEmitter{}

	toast.WithTitle(e, toast.TypeSuccess, "Settings", "Changes saved")

	data := e.emittedEvents[0].data.(map[string]any)
	if data["level"] != "success" {
		t.Errorf("expected level success, got %v", data["level"])
	}
	if data["title"] != "Settings" {
		t.Errorf("expected title Settings, got %v", data["title"])
	}
	if data["message"] != "Changes saved" {
		t.Errorf("expected message 'Changes saved', got %v", data["message"])
	}
}

func TestValidationNotifier_OneToastPerBatch(t *testing.T) {
	e := &mockEmitter{}
	w := upload.New(&upload.Config{MaxFiles: 1}, dom.Anchors{}, upload.WithNotifier(toast.ValidationNotifier(e)))
	defer w.Close()

	w.ProcessFiles([]dom.File{
		dom.NewMemFile("a.png", "image/png", []byte("a")),
		dom.NewMemFile("b.png", "image/png", []byte("b")),
		dom.NewMemFile("c.pdf", "application/pdf", []byte("c")),
	})

	if len(e.emittedEvents) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(e.emittedEvents))
	}
	data := e.emittedEvents[0].data.(map[string]any)
	if data["level"] != "error" || data["title"] != toast.ValidationTitle {
		t.Errorf("unexpected toast: %v", data)
	}
	lines := strings.Split(data["message"].(string), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "b.png") || !strings.Contains(lines[1], "c.pdf") {
		t.Errorf("message lines = %q", lines)
	}
}

func TestValidationNotifier_IgnoresEmpty(t *testing.T) {
	e := &mockEmitter{}
	toast.ValidationNotifier(e).Notify(nil)
	if len(e.emittedEvents) != 0 {
		t.Errorf("expected no toast, got %d", len(e.emittedEvents))
	}
}

func TestUploadResult(t *testing.T) {
	tests := []struct {
		name      string
		result    upload.Result
		wantLevel string
		wantMsg   string
	}{
		{"success", upload.Result{"success": true}, "success", "Files uploaded"},
		{"server error", upload.Result{"success": false, "error": "quota"}, "error", "quota"},
		{"no message", upload.Result{"success": false}, "error", "Upload failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &mockEmitter{}
			toast.UploadResult(e, tt.result)
			data := e.emittedEvents[0].data.(map[string]any)
			if data["level"] != tt.wantLevel || data["message"] != tt.wantMsg {
				t.Errorf("toast = %v", data)
			}
		})
	}
}
