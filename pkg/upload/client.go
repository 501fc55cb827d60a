package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is the decoded JSON response of the upload endpoint. Apart from
// the two failure shapes Upload builds itself, its keys are whatever the
// server sent.
type Result map[string]any

// Success reports whether result["success"] is true.
func (r Result) Success() bool {
	ok, _ := r["success"].(bool)
	return ok
}

// ErrorMessage returns result["error"] when it is a string.
func (r Result) ErrorMessage() string {
	msg, _ := r["error"].(string)
	return msg
}

func failure(msg string) Result {
	return Result{"success": false, "error": msg}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload sends the collection to Config.UploadURL in one multipart POST
// and returns the decoded JSON response unchanged, whatever the status
// code. An empty collection yields {"success": false, "error": "no files"}
// without a request. Transport, encoding and decoding failures yield
// {"success": false, "error": <message>}.
func (w *Widget) Upload(ctx context.Context) Result {
	w.mu.Lock()
	files := slices.Clone(w.files)
	w.mu.Unlock()

	if len(files) == 0 {
		w.metrics.recordUpload("empty", 0)
		return failure(ErrNoFiles.Error())
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	ctx, span := w.tracer.Start(ctx, "upload.Upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("upload.url", w.config.UploadURL),
			attribute.Int("upload.files", len(files)),
			attribute.Int64("upload.bytes", total),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := w.post(ctx, files)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.metrics.recordUpload("error", elapsed)
		w.logger.Error("upload failed", "url", w.config.UploadURL, "files", len(files), "error", err)
		return failure(err.Error())
	}

	span.SetAttributes(attribute.Bool("upload.success", result.Success()))
	if result.Success() {
		w.metrics.recordUpload("success", elapsed)
		w.logger.Info("upload finished", "files", len(files), "bytes", total)
	} else {
		w.metrics.recordUpload("failure", elapsed)
		w.logger.Warn("upload rejected by server", "files", len(files), "error", result.ErrorMessage())
	}
	return result
}

func (w *Widget) post(ctx context.Context, files []*File) (Result, error) {
	var body bytes.Buffer
	contentType, err := writeMultipart(&body, w.config.CSRFToken, files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.UploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if result == nil {
		return nil, errors.New("empty response")
	}
	return result, nil
}

// writeMultipart encodes the CSRF field followed by one part per file and
// returns the body's content type.
func writeMultipart(dst io.Writer, csrfToken string, files []*File) (string, error) {
	mw := multipart.NewWriter(dst)

	if err := mw.WriteField(CSRFField, csrfToken); err != nil {
		return "", err
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FilesField, quoteEscaper.Replace(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return "", err
		}
		if err := copyFile(part, f); err != nil {
			return "", fmt.Errorf("read %q: %w", f.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", err
	}
	return mw.FormDataContentType(), nil
}

func copyFile(dst io.Writer, f *File) error {
	rc, err := f.Handle.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(dst, rc)
	return err
}
