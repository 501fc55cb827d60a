package receiver_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/imgupload/pkg/receiver"
)

// fakeS3 is a path-style S3 endpoint that understands just enough of
// PutObject, HeadObject, ListObjectsV2 and DeleteObject.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]http.Header
	deleted []string
	listing string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		io.Copy(io.Discard, r.Body)
		f.objects[r.URL.Path] = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		h, ok := f.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", h.Get("Content-Type"))
		w.Header().Set("X-Amz-Meta-Original-Filename", h.Get("X-Amz-Meta-Original-Filename"))
		w.Header().Set("Content-Length", "3")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, f.listing)
	case http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3(t *testing.T) (*fakeS3, *s3.Client, string) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string]http.Header)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
		}),
	})
	return fake, client, srv.URL
}

func TestS3Store_SaveThenOpen(t *testing.T) {
	ctx := context.Background()
	fake, client, endpoint := newFakeS3(t)
	store := receiver.NewS3Store(client, "bucket", "uploads/", 0).WithURLExpiry(time.Minute)

	id, err := store.Save(ctx, "cat.png", "image/png", 3, bytes.NewReader([]byte("abc")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	fake.mu.Lock()
	h, ok := fake.objects["/bucket/uploads/"+id]
	fake.mu.Unlock()
	if !ok {
		t.Fatalf("object not stored at /bucket/uploads/%s", id)
	}
	if got := h.Get("X-Amz-Meta-Original-Filename"); got != "cat.png" {
		t.Fatalf("filename metadata = %q", got)
	}

	file, err := store.Open(ctx, id)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if file.Reader != nil {
		t.Fatal("expected no reader for S3 files")
	}
	if file.Filename != "cat.png" || file.ContentType != "image/png" || file.Size != 3 {
		t.Fatalf("file = %+v", file)
	}
	if !strings.HasPrefix(file.URL, endpoint+"/bucket/uploads/"+id) {
		t.Fatalf("URL = %q", file.URL)
	}
	if !strings.Contains(file.URL, "X-Amz-Signature=") {
		t.Fatalf("URL is not presigned: %q", file.URL)
	}
}

func TestS3Store_OpenUnknown(t *testing.T) {
	_, client, _ := newFakeS3(t)
	store := receiver.NewS3Store(client, "bucket", "uploads/", 0)

	for _, id := range []string{"../etc", "3f1b1c9e-8a6f-4d55-9f3e-1d2b8c7a6e5f"} {
		if _, err := store.Open(context.Background(), id); !errors.Is(err, receiver.ErrNotFound) {
			t.Fatalf("Open(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestS3Store_SaveTooLarge(t *testing.T) {
	fake, client, _ := newFakeS3(t)
	store := receiver.NewS3Store(client, "bucket", "uploads/", 2)

	if _, err := store.Save(context.Background(), "a", "text/plain", 1, bytes.NewReader([]byte("abc"))); !errors.Is(err, receiver.ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if len(fake.objects) != 0 {
		t.Fatal("nothing should be stored")
	}
}

func TestS3Store_CleanupDeletesExpired(t *testing.T) {
	fake, client, _ := newFakeS3(t)
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	fake.listing = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>bucket</Name><Prefix>uploads/</Prefix><KeyCount>2</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>
<Contents><Key>uploads/old</Key><LastModified>2020-01-01T00:00:00.000Z</LastModified><Size>1</Size></Contents>
<Contents><Key>uploads/new</Key><LastModified>%s</LastModified><Size>1</Size></Contents>
</ListBucketResult>`, now)

	store := receiver.NewS3Store(client, "bucket", "uploads/", 0)
	if err := store.Cleanup(context.Background(), time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.deleted) != 1 || fake.deleted[0] != "/bucket/uploads/old" {
		t.Fatalf("deleted = %v, want [/bucket/uploads/old]", fake.deleted)
	}
}
