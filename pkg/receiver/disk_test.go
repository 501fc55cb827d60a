package receiver_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/vango-dev/imgupload/pkg/receiver"
)

func newMemStore(t *testing.T, maxSize int64) (*receiver.DiskStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := receiver.NewDiskStoreFs(fs, "/data", maxSize)
	if err != nil {
		t.Fatalf("NewDiskStoreFs: %v", err)
	}
	return store, fs
}

func TestDiskStore_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	store, _ := newMemStore(t, 0)

	content := []byte("persist me")
	id, err := store.Save(ctx, "a.png", "image/png", int64(len(content)), bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	file, err := store.Open(ctx, id)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	if file.Filename != "a.png" || file.ContentType != "image/png" || file.Size != int64(len(content)) {
		t.Fatalf("file = %+v", file)
	}
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatal("content mismatch")
	}
}

func TestDiskStore_SaveRejectsWhenReaderExceedsLimitEvenIfDeclaredSizeIsSmaller(t *testing.T) {
	store, fs := newMemStore(t, 5)

	// size says 4, but reader provides 6 bytes.
	_, err := store.Save(context.Background(), "x.txt", "text/plain", 4, bytes.NewReader([]byte("123456")))
	if !errors.Is(err, receiver.ErrTooLarge) {
		t.Fatalf("err = %v, want %v", err, receiver.ErrTooLarge)
	}

	entries, err := afero.ReadDir(fs, "/data")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftover files, got %d", len(entries))
	}
}

func TestDiskStore_SaveRejectsDeclaredSizeOverLimit(t *testing.T) {
	store, _ := newMemStore(t, 5)

	_, err := store.Save(context.Background(), "x.txt", "text/plain", 6, bytes.NewReader([]byte("123456")))
	if !errors.Is(err, receiver.ErrTooLarge) {
		t.Fatalf("err = %v, want %v", err, receiver.ErrTooLarge)
	}
}

func TestDiskStore_OpenLoadsMetadataFromDisk(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	store1, err := receiver.NewDiskStoreFs(fs, "/data", 0)
	if err != nil {
		t.Fatalf("NewDiskStoreFs(store1): %v", err)
	}
	id, err := store1.Save(ctx, "persist.png", "image/png", 3, bytes.NewReader([]byte("abc")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A new store simulates a restart.
	store2, err := receiver.NewDiskStoreFs(fs, "/data", 0)
	if err != nil {
		t.Fatalf("NewDiskStoreFs(store2): %v", err)
	}
	file, err := store2.Open(ctx, id)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	if file.Filename != "persist.png" {
		t.Fatalf("Filename = %q", file.Filename)
	}
}

func TestDiskStore_OpenRejectsInvalidAndUnknownIDs(t *testing.T) {
	ctx := context.Background()
	store, fs := newMemStore(t, 0)

	if err := afero.WriteFile(fs, "/secret", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for _, id := range []string{"", "../secret", "not-a-uuid", "3f1b1c9e-8a6f-4d55-9f3e-1d2b8c7a6e5f"} {
		if _, err := store.Open(ctx, id); !errors.Is(err, receiver.ErrNotFound) {
			t.Fatalf("Open(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestDiskStore_OpenMissingDataFile(t *testing.T) {
	ctx := context.Background()
	store, fs := newMemStore(t, 0)

	id, err := store.Save(ctx, "a.png", "image/png", 1, bytes.NewReader([]byte("a")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Remove(filepath.Join("/data", id)); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := store.Open(ctx, id); !errors.Is(err, receiver.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDiskStore_CleanupRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	store, fs := newMemStore(t, 0)

	oldID, err := store.Save(ctx, "old.png", "image/png", 1, bytes.NewReader([]byte("o")))
	if err != nil {
		t.Fatalf("Save(old): %v", err)
	}
	newID, err := store.Save(ctx, "new.png", "image/png", 1, bytes.NewReader([]byte("n")))
	if err != nil {
		t.Fatalf("Save(new): %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	for _, name := range []string{oldID, oldID + ".meta"} {
		if err := fs.Chtimes(filepath.Join("/data", name), past, past); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	if err := store.Cleanup(ctx, time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if _, err := store.Open(ctx, oldID); !errors.Is(err, receiver.ErrNotFound) {
		t.Fatalf("Open(old) err = %v, want ErrNotFound", err)
	}
	if exists, _ := afero.Exists(fs, filepath.Join("/data", oldID+".meta")); exists {
		t.Fatal("expected old meta file to be removed")
	}

	file, err := store.Open(ctx, newID)
	if err != nil {
		t.Fatalf("Open(new): %v", err)
	}
	file.Close()
}

func TestDiskStore_CleanupHonoursContext(t *testing.T) {
	store, fs := newMemStore(t, 0)
	if err := afero.WriteFile(fs, "/data/stale", []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Cleanup(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
