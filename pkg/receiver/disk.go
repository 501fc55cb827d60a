package receiver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const metaSuffix = ".meta"

// DiskStore stores uploads in a directory of an afero filesystem.
type DiskStore struct {
	fs      afero.Fs
	dir     string
	maxSize int64

	mu    sync.RWMutex
	files map[string]*diskMeta
}

type diskMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates a DiskStore on the OS filesystem.
//
// Parameters:
//   - dir: Directory to store files
//   - maxSize: Maximum file size in bytes (0 = no limit)
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	return NewDiskStoreFs(afero.NewOsFs(), dir, maxSize)
}

// NewDiskStoreFs creates a DiskStore on fs.
func NewDiskStoreFs(fs afero.Fs, dir string, maxSize int64) (*DiskStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{
		fs:      fs,
		dir:     dir,
		maxSize: maxSize,
		files:   make(map[string]*diskMeta),
	}, nil
}

// Save writes the file and its metadata and returns a new UUID.
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id)

	f, err := s.fs.Create(path)
	if err != nil {
		return "", err
	}

	var reader io.Reader = r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.fs.Remove(path)
		return "", err
	}
	if s.maxSize > 0 && written > s.maxSize {
		s.fs.Remove(path)
		return "", ErrTooLarge
	}

	meta := &diskMeta{
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		CreatedAt:   time.Now(),
	}
	if err := s.saveMeta(id, meta); err != nil {
		s.fs.Remove(path)
		return "", err
	}

	s.mu.Lock()
	s.files[id] = meta
	s.mu.Unlock()

	return id, nil
}

// Open returns a reader for a stored file. Metadata written by an earlier
// DiskStore on the same directory is loaded from disk.
func (s *DiskStore) Open(ctx context.Context, id string) (*File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	meta, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		var err error
		meta, err = s.loadMeta(id)
		if err != nil {
			return nil, ErrNotFound
		}
		s.mu.Lock()
		s.files[id] = meta
		s.mu.Unlock()
	}

	f, err := s.fs.Open(filepath.Join(s.dir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &File{
		ID:          id,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Reader:      f,
	}, nil
}

// Cleanup removes files and metadata whose modification time is older
// than maxAge.
func (s *DiskStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !entry.ModTime().Before(cutoff) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		id := strings.TrimSuffix(entry.Name(), metaSuffix)
		s.mu.Lock()
		delete(s.files, id)
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

func (s *DiskStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+metaSuffix)
}

func (s *DiskStore) saveMeta(id string, meta *diskMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.metaPath(id), data, 0o644)
}

func (s *DiskStore) loadMeta(id string) (*diskMeta, error) {
	data, err := afero.ReadFile(s.fs, s.metaPath(id))
	if err != nil {
		return nil, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
