package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vango-dev/imgupload/internal/errors"
)

// Environment variables that override the config file.
const (
	EnvUploadURL    = "IMGUPLOAD_UPLOAD_URL"
	EnvMaxFiles     = "IMGUPLOAD_MAX_FILES"
	EnvMaxSize      = "IMGUPLOAD_MAX_SIZE"
	EnvAllowedTypes = "IMGUPLOAD_ALLOWED_TYPES"
	EnvCSRFToken    = "IMGUPLOAD_CSRF_TOKEN"
	EnvAddr         = "IMGUPLOAD_ADDR"
)

// LoadDotEnv loads variables from the given files (default ".env") into
// the environment. Missing files are skipped and variables that are
// already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.New("E106").
				WithDetail("Failed to parse " + path).
				Wrap(err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from IMGUPLOAD_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUploadURL); ok {
		c.UploadURL = v
	}
	if v, ok := lookup(EnvMaxFiles); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return envError(EnvMaxFiles, v, err)
		}
		c.MaxFiles = n
	}
	if v, ok := lookup(EnvMaxSize); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return envError(EnvMaxSize, v, err)
		}
		c.MaxSize = n
	}
	if v, ok := lookup(EnvAllowedTypes); ok {
		c.AllowedTypes = splitList(v)
	}
	if v, ok := lookup(EnvCSRFToken); ok {
		c.CSRFToken = v
	}
	if v, ok := lookup(EnvAddr); ok {
		c.Server.Addr = v
	}
	return nil
}

func envError(name, value string, err error) error {
	return errors.New("E105").
		WithDetail(name + "=" + strconv.Quote(value) + " is not an integer").
		Wrap(err)
}

// splitList splits a comma separated list and drops empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
