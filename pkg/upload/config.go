package upload

import "slices"

const (
	// DefaultMaxFiles is the default collection capacity.
	DefaultMaxFiles = 10

	// DefaultMaxSize is the default per-file size limit (10 MiB).
	DefaultMaxSize = 10 * 1024 * 1024

	// CSRFField is the multipart field carrying the CSRF token.
	CSRFField = "csrfmiddlewaretoken"

	// FilesField is the repeated multipart field carrying the files.
	FilesField = "files"
)

// DefaultAllowedTypes are the image types accepted when none are configured.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp"}

// Config holds the widget options.
type Config struct {
	// UploadURL is the endpoint receiving the multipart POST.
	UploadURL string

	// MaxFiles is the maximum number of files in the collection.
	// Default: 10.
	MaxFiles int

	// MaxSize is the maximum size of a single file in bytes.
	// Default: 10MB.
	MaxSize int64

	// AllowedTypes is the list of accepted MIME types.
	// Default: image/jpeg, image/png, image/gif, image/bmp.
	AllowedTypes []string

	// CSRFToken is sent as the csrfmiddlewaretoken field.
	CSRFToken string
}

// DefaultConfig returns a Config with the default limits.
func DefaultConfig() *Config {
	return &Config{
		MaxFiles:     DefaultMaxFiles,
		MaxSize:      DefaultMaxSize,
		AllowedTypes: slices.Clone(DefaultAllowedTypes),
	}
}

// normalized returns a copy of c with defaults filled in.
func (c *Config) normalized() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	out.AllowedTypes = slices.Clone(out.AllowedTypes)

	if out.MaxFiles <= 0 {
		out.MaxFiles = DefaultMaxFiles
	}
	if out.MaxSize <= 0 {
		out.MaxSize = DefaultMaxSize
	}
	if len(out.AllowedTypes) == 0 {
		out.AllowedTypes = slices.Clone(DefaultAllowedTypes)
	}
	return out
}

// Allows reports whether the MIME type is in AllowedTypes.
func (c *Config) Allows(contentType string) bool {
	return slices.Contains(c.AllowedTypes, contentType)
}
