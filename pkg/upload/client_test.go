package upload_test

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/vango-dev/imgupload/pkg/dom"
	"github.com/vango-dev/imgupload/pkg/upload"
)

type receivedPart struct {
	field       string
	filename    string
	contentType string
	body        string
}

// readParts decodes the multipart body of r in order.
func readParts(t *testing.T, r *http.Request) []receivedPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		return nil
	}

	var parts []receivedPart
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Errorf("NextPart: %v", err)
			return nil
		}
		body, _ := io.ReadAll(p)
		parts = append(parts, receivedPart{
			field:       p.FormName(),
			filename:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			body:        string(body),
		})
	}
	return parts
}

func TestUpload_PassesResponseThrough(t *testing.T) {
	var parts []receivedPart
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		header = r.Header.Clone()
		parts = readParts(t, r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"url":"/x"}`)
	}))
	defer srv.Close()

	w := upload.New(&upload.Config{UploadURL: srv.URL, CSRFToken: "tok"}, dom.Anchors{})
	defer w.Close()
	w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("AAA"))})

	got := w.Upload(context.Background())

	want := upload.Result{"success": true, "url": "/x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Upload() = %v, want %v", got, want)
	}
	if header.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q", header.Get("X-Requested-With"))
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %+v, want 2", parts)
	}
	if parts[0].field != "csrfmiddlewaretoken" || parts[0].body != "tok" {
		t.Errorf("first part = %+v, want csrf token", parts[0])
	}
	if parts[1].field != "files" || parts[1].filename != "a.png" || parts[1].contentType != "image/png" || parts[1].body != "AAA" {
		t.Errorf("file part = %+v", parts[1])
	}
}

func TestUpload_SendsFilesInCollectionOrder(t *testing.T) {
	var parts []receivedPart
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts = readParts(t, r)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	w := upload.New(&upload.Config{UploadURL: srv.URL}, dom.Anchors{})
	defer w.Close()
	w.ProcessFiles([]dom.File{
		dom.NewMemFile("1.png", "image/png", []byte("1")),
		dom.NewMemFile(`we"ird.gif`, "image/gif", []byte("2")),
		dom.NewMemFile("3.jpg", "image/jpeg", []byte("3")),
	})
	w.RemoveFile("1.png")

	if res := w.Upload(context.Background()); !res.Success() {
		t.Fatalf("Upload() = %v", res)
	}

	if len(parts) != 3 {
		t.Fatalf("parts = %+v", parts)
	}
	if parts[0].field != "csrfmiddlewaretoken" || parts[0].body != "" {
		t.Errorf("csrf part = %+v", parts[0])
	}
	if parts[1].filename != `we"ird.gif` || parts[1].contentType != "image/gif" {
		t.Errorf("second part = %+v", parts[1])
	}
	if parts[2].filename != "3.jpg" || parts[2].contentType != "image/jpeg" {
		t.Errorf("third part = %+v", parts[2])
	}
}

func TestUpload_EmptyCollectionMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	w := upload.New(&upload.Config{UploadURL: srv.URL}, dom.NewDocument().Anchors())
	defer w.Close()
	w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("A"))})
	w.Clear()

	for i := 0; i < 2; i++ {
		got := w.Upload(context.Background())
		want := upload.Result{"success": false, "error": "no files"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Upload() = %v, want %v", got, want)
		}
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0", hits.Load())
	}
}

func TestUpload_FailuresBecomeResults(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>oops</html>")
		}},
		{"null body", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "null")
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			w := upload.New(&upload.Config{UploadURL: srv.URL}, dom.Anchors{})
			defer w.Close()
			w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("A"))})

			got := w.Upload(context.Background())
			if got.Success() {
				t.Fatalf("Upload() = %v, want failure", got)
			}
			if got.ErrorMessage() == "" {
				t.Errorf("Upload() error message is empty: %v", got)
			}
		})
	}
}

func TestUpload_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	w := upload.New(&upload.Config{UploadURL: url}, dom.Anchors{})
	defer w.Close()
	w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("A"))})

	got := w.Upload(context.Background())
	if got.Success() || got.ErrorMessage() == "" {
		t.Errorf("Upload() = %v, want failure with message", got)
	}
}

func TestUpload_ErrorStatusWithJSONIsPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"success":false,"error":"CSRF verification failed"}`)
	}))
	defer srv.Close()

	w := upload.New(&upload.Config{UploadURL: srv.URL}, dom.Anchors{})
	defer w.Close()
	w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("A"))})

	got := w.Upload(context.Background())
	want := upload.Result{"success": false, "error": "CSRF verification failed"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Upload() = %v, want %v", got, want)
	}
}

func TestUpload_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	w := upload.New(&upload.Config{UploadURL: srv.URL}, dom.Anchors{})
	defer w.Close()
	w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("A"))})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := w.Upload(ctx); got.Success() {
		t.Errorf("Upload() with canceled context = %v, want failure", got)
	}
}

func TestUpload_NilHTTPClientUsesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true}`)
	}))
	defer srv.Close()

	w := upload.New(&upload.Config{UploadURL: srv.URL}, dom.Anchors{}, upload.WithHTTPClient(nil))
	defer w.Close()
	w.ProcessFiles([]dom.File{dom.NewMemFile("a.png", "image/png", []byte("AAA"))})

	if got := w.Upload(context.Background()); !got.Success() {
		t.Fatalf("Upload() = %v, want success", got)
	}
}
