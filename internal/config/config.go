package config

import (
	"encoding/json"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/imgupload/internal/errors"
	"github.com/vango-dev/imgupload/pkg/receiver"
	"github.com/vango-dev/imgupload/pkg/upload"
	"gopkg.in/yaml.v2"
)

const (
	// JSONFileName and YAMLFileName are the names Load looks for, in order.
	JSONFileName = "imgupload.json"
	YAMLFileName = "imgupload.yaml"

	// DefaultAddr is the default development server address.
	DefaultAddr = "localhost:8080"

	// DefaultStoreDir is the default directory of the disk store.
	DefaultStoreDir = "uploads"

	// DefaultS3Prefix is the default key prefix of the S3 store.
	DefaultS3Prefix = "uploads/"

	// DefaultTempExpiry is how long received files are kept.
	DefaultTempExpiry = "1h"
)

// Config represents the complete imgupload configuration.
type Config struct {
	// UploadURL is the endpoint the widget posts to.
	UploadURL string `json:"uploadUrl,omitempty" yaml:"uploadUrl,omitempty"`

	// MaxFiles is the maximum number of files in a collection.
	MaxFiles int `json:"maxFiles,omitempty" yaml:"maxFiles,omitempty"`

	// MaxSize is the maximum size of one file in bytes.
	MaxSize int64 `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`

	// AllowedTypes lists the accepted MIME types.
	AllowedTypes []string `json:"allowedTypes,omitempty" yaml:"allowedTypes,omitempty"`

	// CSRFToken is sent as csrfmiddlewaretoken with every upload.
	CSRFToken string `json:"csrfToken,omitempty" yaml:"csrfToken,omitempty"`

	// Server contains development server configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains development server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// StoreDir is the directory received files are written to.
	StoreDir string `json:"storeDir,omitempty" yaml:"storeDir,omitempty"`

	// S3Bucket selects the S3 store when set.
	S3Bucket string `json:"s3Bucket,omitempty" yaml:"s3Bucket,omitempty"`

	// S3Prefix is the key prefix in the bucket.
	S3Prefix string `json:"s3Prefix,omitempty" yaml:"s3Prefix,omitempty"`

	// TempExpiry is how long received files are kept (e.g., "1h").
	TempExpiry string `json:"tempExpiry,omitempty" yaml:"tempExpiry,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	def := upload.DefaultConfig()
	return &Config{
		MaxFiles:     def.MaxFiles,
		MaxSize:      def.MaxSize,
		AllowedTypes: def.AllowedTypes,
		Server: ServerConfig{
			Addr:       DefaultAddr,
			StoreDir:   DefaultStoreDir,
			S3Prefix:   DefaultS3Prefix,
			TempExpiry: DefaultTempExpiry,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for imgupload.json, then imgupload.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E101").
		WithDetail("No " + JSONFileName + " or " + YAMLFileName + " found in " + dir).
		WithSuggestion("Create " + JSONFileName + " or pass --config")
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension: .json, .yaml or .yml.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E102").
				WithDetail("Failed to parse " + path + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E102").
				WithDetail("Failed to parse " + path + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	default:
		return nil, errors.New("E103").
			WithDetail("Cannot read " + path + " (extension " + ext + ")")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Resolve builds the configuration the CLI runs with: .env, then the file
// at path (or imgupload.json/.yaml in the working directory when path is
// empty and one exists), then IMGUPLOAD_* variables.
func Resolve(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	var cfg *Config
	var err error
	switch {
	case path != "":
		cfg, err = LoadFile(path)
	case Exists("."):
		cfg, err = Load(".")
	default:
		cfg = New()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path as JSON or YAML.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E102").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E102").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()
	if c.MaxFiles == 0 {
		c.MaxFiles = def.MaxFiles
	}
	if c.MaxSize == 0 {
		c.MaxSize = def.MaxSize
	}
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = def.AllowedTypes
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.StoreDir == "" {
		c.Server.StoreDir = def.Server.StoreDir
	}
	if c.Server.S3Prefix == "" {
		c.Server.S3Prefix = def.Server.S3Prefix
	}
	if c.Server.TempExpiry == "" {
		c.Server.TempExpiry = def.Server.TempExpiry
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxFiles < 1 {
		return errors.New("E104").
			WithDetail("maxFiles must be at least 1")
	}
	if c.MaxSize < 1 {
		return errors.New("E104").
			WithDetail("maxSize must be at least 1 byte")
	}
	if len(c.AllowedTypes) == 0 {
		return errors.New("E104").
			WithDetail("allowedTypes must list at least one MIME type")
	}
	if c.UploadURL != "" {
		u, err := url.Parse(c.UploadURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("E104").
				WithDetail("uploadUrl must be an absolute http or https URL, got " + c.UploadURL)
		}
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return errors.New("E104").
			WithDetail("server.addr must be host:port, got " + c.Server.Addr)
	}
	if d, err := time.ParseDuration(c.Server.TempExpiry); err != nil || d <= 0 {
		return errors.New("E104").
			WithDetail("server.tempExpiry must be a positive duration such as \"1h\", got " + c.Server.TempExpiry)
	}
	return nil
}

// UploadConfig returns the widget configuration.
func (c *Config) UploadConfig() *upload.Config {
	return &upload.Config{
		UploadURL:    c.UploadURL,
		MaxFiles:     c.MaxFiles,
		MaxSize:      c.MaxSize,
		AllowedTypes: append([]string(nil), c.AllowedTypes...),
		CSRFToken:    c.CSRFToken,
	}
}

// ReceiverConfig returns the development receiver configuration. It
// enforces the same limits as the widget.
func (c *Config) ReceiverConfig() *receiver.Config {
	return &receiver.Config{
		MaxFileSize:  c.MaxSize,
		MaxFiles:     c.MaxFiles,
		AllowedTypes: append([]string(nil), c.AllowedTypes...),
		CSRFToken:    c.CSRFToken,
		TempExpiry:   c.TempExpiry(),
	}
}

// TempExpiry returns Server.TempExpiry as a duration, or the default
// when it does not parse.
func (c *Config) TempExpiry() time.Duration {
	d, err := time.ParseDuration(c.Server.TempExpiry)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTempExpiry)
	}
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
