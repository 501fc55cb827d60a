package dom_test

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/vango-dev/imgupload/pkg/dom"
	"github.com/vango-dev/imgupload/pkg/vdom"
)

func TestListeners_DispatchInOrderAndRemove(t *testing.T) {
	var l dom.Listeners
	var calls []string

	removeA := l.Listen(dom.EventDrop, func(dom.Event) { calls = append(calls, "a") })
	l.Listen(dom.EventDrop, func(dom.Event) { calls = append(calls, "b") })
	l.Listen(dom.EventChange, func(dom.Event) { calls = append(calls, "change") })

	l.Dispatch(dom.Event{Type: dom.EventDrop})
	if len(calls) != 2 || calls[0] != "a" || calls[1] != "b" {
		t.Fatalf("calls = %v, want [a b]", calls)
	}

	removeA()
	removeA()
	calls = nil
	l.Dispatch(dom.Event{Type: dom.EventDrop})
	if len(calls) != 1 || calls[0] != "b" {
		t.Fatalf("calls after remove = %v, want [b]", calls)
	}
	if got := l.Count(dom.EventDrop); got != 1 {
		t.Errorf("Count(drop) = %d, want 1", got)
	}
}

func TestMemFile(t *testing.T) {
	f := dom.NewMemFile("a.png", "image/png", []byte("12345"))
	if f.Name() != "a.png" || f.Type() != "image/png" || f.Size() != 5 {
		t.Fatalf("unexpected file: %s %s %d", f.Name(), f.Type(), f.Size())
	}
	rc, err := f.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "12345" {
		t.Errorf("data = %q", data)
	}
}

func TestNewFSFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	png := []byte("\x89PNG\r\n\x1a\n0000000000")
	if err := afero.WriteFile(fs, "/img/photo.png", png, 0644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/img/noext", []byte("GIF89a.........."), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path     string
		wantName string
		wantType string
	}{
		{"/img/photo.png", "photo.png", "image/png"},
		{"/img/noext", "noext", "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			f, err := dom.NewFSFile(fs, tt.path)
			if err != nil {
				t.Fatalf("NewFSFile: %v", err)
			}
			if f.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.wantName)
			}
			if f.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", f.Type(), tt.wantType)
			}
			if f.Path() != tt.path {
				t.Errorf("Path() = %q", f.Path())
			}
		})
	}

	if _, err := dom.NewFSFile(fs, "/img/missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDocument_Anchors(t *testing.T) {
	doc := dom.NewDocument()
	a := doc.Anchors()
	if a.DropZone == nil || a.FileInput == nil || a.Browse == nil || a.Previews == nil || a.Counter == nil {
		t.Fatalf("document should provide every anchor: %+v", a)
	}

	doc.DropZone().AddClass("dragover")
	if !doc.DropZone().HasClass("dragover") {
		t.Error("expected dragover class")
	}
	doc.DropZone().RemoveClass("dragover")
	if doc.DropZone().HasClass("dragover") {
		t.Error("expected dragover class removed")
	}

	doc.Counter().SetText("Files selected: 1")
	if doc.Counter().Text() != "Files selected: 1" {
		t.Errorf("counter = %q", doc.Counter().Text())
	}

	f := dom.NewMemFile("a.png", "image/png", nil)
	doc.FileInput().SetFiles([]dom.File{f})
	if got := doc.FileInput().Files(); len(got) != 1 || got[0] != dom.File(f) {
		t.Errorf("input files = %v", got)
	}
}

func TestMemPreviews_ClickAndRemove(t *testing.T) {
	doc := dom.NewDocument()
	previews := doc.Previews()

	var node dom.Node
	clicked := 0
	card := vdom.Div(vdom.Button(vdom.OnClick(func() {
		clicked++
		node.Remove()
	})))
	node = previews.Append(card)
	previews.Append(vdom.Div())

	hids := previews.HIDs()
	if len(hids) != 1 {
		t.Fatalf("HIDs = %v, want one interactive node", hids)
	}
	if !previews.Click(hids[0]) {
		t.Fatal("Click returned false")
	}
	if clicked != 1 {
		t.Errorf("clicked = %d", clicked)
	}
	if previews.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after self-removal", previews.Len())
	}
	if previews.Click("nope") {
		t.Error("Click on unknown HID should return false")
	}

	previews.Clear()
	if previews.Len() != 0 {
		t.Errorf("Len() after Clear = %d", previews.Len())
	}
}

func TestMemFileInput_SelectDispatchesChange(t *testing.T) {
	doc := dom.NewDocument()
	var got dom.Event
	doc.FileInput().Listen(dom.EventChange, func(ev dom.Event) { got = ev })

	f := dom.NewMemFile("a.png", "image/png", nil)
	doc.FileInput().Select(f)

	if got.Type != dom.EventChange || got.Target != dom.SelectorFileInput || len(got.Files) != 1 {
		t.Errorf("unexpected event: %+v", got)
	}
}
