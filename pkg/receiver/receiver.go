package receiver

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrNotFound is returned when a stored file doesn't exist.
var ErrNotFound = errors.New("receiver: file not found")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("receiver: file too large")

const (
	// CSRFField is the form field carrying the CSRF token.
	CSRFField = "csrfmiddlewaretoken"

	// FilesField is the form field name of each uploaded file.
	FilesField = "files"
)

// Store is the interface for upload storage backends.
type Store interface {
	// Save stores the file and returns its ID.
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (id string, err error)

	// Open returns a stored file. Either File.Reader or File.URL is set.
	Open(ctx context.Context, id string) (*File, error)

	// Cleanup removes files older than maxAge.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}

// File represents a stored upload.
type File struct {
	// ID is the unique identifier for this upload.
	ID string

	// Filename is the original filename from the client.
	Filename string

	// ContentType is the detected MIME type of the file.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// URL is a remote URL for the content (S3 presigned GET).
	URL string

	// Reader provides the file contents. Nil when URL is set.
	Reader io.ReadCloser
}

// Close closes the file reader if open.
func (f *File) Close() error {
	if f.Reader != nil {
		return f.Reader.Close()
	}
	return nil
}

// Config holds configuration for the upload handler.
type Config struct {
	// MaxFileSize is the maximum allowed size of one file in bytes.
	// Default: 10MB.
	MaxFileSize int64

	// MaxFiles is the maximum number of files per request.
	// Default: 10.
	MaxFiles int

	// AllowedTypes is a list of allowed MIME types, matched against the
	// detected content type. If empty, all types are allowed.
	AllowedTypes []string

	// CSRFToken, when set, must equal the csrfmiddlewaretoken field.
	CSRFToken string

	// URLPrefix is prepended to a file ID to build its URL.
	// Default: "/uploads/".
	URLPrefix string

	// TempExpiry is how long stored files live before cleanup.
	// Default: 1 hour.
	TempExpiry time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: 10 * 1024 * 1024,
		MaxFiles:    10,
		AllowedTypes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"image/bmp",
		},
		URLPrefix:  "/uploads/",
		TempExpiry: time.Hour,
	}
}

func (c *Config) withDefaults() Config {
	def := DefaultConfig()
	if c == nil {
		return *def
	}
	out := *c
	if out.MaxFileSize <= 0 {
		out.MaxFileSize = def.MaxFileSize
	}
	if out.MaxFiles <= 0 {
		out.MaxFiles = def.MaxFiles
	}
	if out.URLPrefix == "" {
		out.URLPrefix = def.URLPrefix
	}
	if out.TempExpiry <= 0 {
		out.TempExpiry = def.TempExpiry
	}
	return out
}

func (c *Config) allows(contentType string) bool {
	if len(c.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range c.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(allowed), contentType) {
			return true
		}
	}
	return false
}
