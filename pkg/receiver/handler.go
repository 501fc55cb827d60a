package receiver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// formOverhead is the body allowance for multipart boundaries, headers and
// the CSRF field on top of the file bytes.
const formOverhead = 1 << 20

// Option configures Handler and FileHandler.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collectors. Default: none.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Response is the JSON body written by Handler.
type Response struct {
	Success bool         `json:"success"`
	Files   []StoredFile `json:"files,omitempty"`
	URL     string       `json:"url,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// StoredFile describes one saved file in a Response.
type StoredFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// Handler returns an http.Handler that stores the "files" parts of a
// multipart POST. Every file is validated before any is saved, so a
// rejected request stores nothing.
func Handler(store Store, cfg *Config, opts ...Option) http.Handler {
	config := cfg.withDefaults()
	o := buildOptions(opts)
	bodyLimit := config.MaxFileSize*int64(config.MaxFiles) + formOverhead

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			if isBodyTooLarge(err) {
				o.metrics.recordFiles(resultTooLarge, 1)
				writeError(w, http.StatusRequestEntityTooLarge, "request too large")
				return
			}
			writeError(w, http.StatusBadRequest, "failed to parse form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		if config.CSRFToken != "" && r.FormValue(CSRFField) != config.CSRFToken {
			o.logger.Warn("upload rejected", "reason", "csrf", "remote", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "CSRF token missing or incorrect")
			return
		}

		headers := r.MultipartForm.File[FilesField]
		if len(headers) == 0 {
			writeError(w, http.StatusBadRequest, "no files")
			return
		}
		if len(headers) > config.MaxFiles {
			o.metrics.recordFiles(resultRejected, len(headers))
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("too many files: %d (maximum %d)", len(headers), config.MaxFiles))
			return
		}

		types := make([]string, len(headers))
		for i, header := range headers {
			if header.Size > config.MaxFileSize {
				o.metrics.recordFiles(resultTooLarge, 1)
				writeError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("file %q is too large", header.Filename))
				return
			}
			detected, err := detectType(header)
			if err != nil {
				writeError(w, http.StatusBadRequest,
					fmt.Sprintf("failed to read file %q", header.Filename))
				return
			}
			if !config.allows(detected) {
				o.metrics.recordFiles(resultRejected, 1)
				writeError(w, http.StatusUnsupportedMediaType,
					fmt.Sprintf("file %q has an unsupported type %q", header.Filename, detected))
				return
			}
			types[i] = detected
		}

		resp := Response{Success: true, Files: make([]StoredFile, 0, len(headers))}
		for i, header := range headers {
			stored, err := save(r, store, header, types[i])
			if err != nil {
				if errors.Is(err, ErrTooLarge) {
					o.metrics.recordFiles(resultTooLarge, 1)
					writeError(w, http.StatusRequestEntityTooLarge,
						fmt.Sprintf("file %q is too large", header.Filename))
					return
				}
				o.metrics.recordFiles(resultError, 1)
				o.logger.Error("upload store failed", "file", header.Filename, "error", err)
				writeError(w, http.StatusInternalServerError, "upload failed")
				return
			}
			stored.URL = config.URLPrefix + url.PathEscape(stored.ID)
			resp.Files = append(resp.Files, stored)
			o.metrics.recordFiles(resultStored, 1)
		}
		resp.URL = resp.Files[0].URL

		o.logger.Info("files received", "count", len(resp.Files), "remote", r.RemoteAddr)
		writeJSON(w, http.StatusOK, resp)
	})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func save(r *http.Request, store Store, header *multipart.FileHeader, contentType string) (StoredFile, error) {
	f, err := header.Open()
	if err != nil {
		return StoredFile{}, err
	}
	defer f.Close()

	id, err := store.Save(r.Context(), header.Filename, contentType, header.Size, f)
	if err != nil {
		return StoredFile{}, err
	}
	return StoredFile{
		ID:          id,
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: contentType,
	}, nil
}

// detectType sniffs the first 512 bytes of a part. The part's own
// Content-Type header is ignored.
func detectType(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if err != nil {
		return "application/octet-stream", nil
	}
	return mediaType, nil
}

// FileHandler serves stored files at a route with an {id} URL parameter:
//
//	r.Get("/uploads/{id}", receiver.FileHandler(store))
//
// Stores that return a URL instead of a reader get a redirect.
func FileHandler(store Store, opts ...Option) http.Handler {
	o := buildOptions(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		file, err := store.Open(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			o.logger.Error("open stored file failed", "id", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		if file.Reader == nil {
			http.Redirect(w, r, file.URL, http.StatusFound)
			return
		}

		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if _, err := io.Copy(w, file.Reader); err != nil {
			o.logger.Debug("serve stored file interrupted", "id", id, "error", err)
		}
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
