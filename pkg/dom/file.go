package dom

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"
)

// File is a handle to a user-selected file. Implementations must be
// comparable; the widget uses handle identity, never content, to tell
// files with the same name apart.
type File interface {
	Name() string
	Type() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// MemFile is a File backed by a byte slice.
type MemFile struct {
	name        string
	contentType string
	data        []byte
}

// NewMemFile creates an in-memory file handle.
func NewMemFile(name, contentType string, data []byte) *MemFile {
	return &MemFile{name: name, contentType: contentType, data: data}
}

func (f *MemFile) Name() string { return f.name }
func (f *MemFile) Type() string { return f.contentType }
func (f *MemFile) Size() int64  { return int64(len(f.data)) }

// Open returns a reader over the file contents.
func (f *MemFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// FSFile is a File stored on an afero filesystem.
type FSFile struct {
	fs          afero.Fs
	path        string
	contentType string
	size        int64
}

// NewFSFile stats path on fs and returns a handle for it. The MIME type
// comes from the file extension and falls back to content sniffing.
func NewFSFile(fs afero.Fs, path string) (*FSFile, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType, err = sniff(fs, path)
		if err != nil {
			return nil, err
		}
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mt
	}

	return &FSFile{
		fs:          fs,
		path:        path,
		contentType: contentType,
		size:        info.Size(),
	}, nil
}

func (f *FSFile) Name() string { return filepath.Base(f.path) }
func (f *FSFile) Type() string { return f.contentType }
func (f *FSFile) Size() int64  { return f.size }

// Path returns the path the handle was created from.
func (f *FSFile) Path() string { return f.path }

// Open opens the underlying file for reading.
func (f *FSFile) Open() (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}

// sniff reads the first 512 bytes and detects the content type.
func sniff(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
