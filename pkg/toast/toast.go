package toast

import "github.com/vango-dev/imgupload/pkg/upload"

// EventName is the event name dispatched for toasts.
// Client-side code should listen for this event.
const EventName = "upload:toast"

// ValidationTitle is the title of validation error toasts.
const ValidationTitle = "Some files were not added"

// Emitter sends a named custom event with a JSON-serializable payload
// to the page.
type Emitter interface {
	Emit(name string, data any)
}

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Show displays a toast notification to the user.
//
// The client receives a CustomEvent with:
//   - event.type = "upload:toast"
//   - event.detail = { level: "success|error|warning|info", message: "..." }
func Show(e Emitter, level Type, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success toast.
//
//	toast.Success(page, "3 images uploaded")
func Success(e Emitter, message string) {
	Show(e, TypeSuccess, message)
}

// Error shows an error toast.
func Error(e Emitter, message string) {
	Show(e, TypeError, message)
}

// Warning shows a warning toast.
func Warning(e Emitter, message string) {
	Show(e, TypeWarning, message)
}

// Info shows an info toast.
func Info(e Emitter, message string) {
	Show(e, TypeInfo, message)
}

// WithTitle shows a toast with a title and message.
//
//	toast.WithTitle(page, toast.TypeError, "Upload failed", "CSRF verification failed")
func WithTitle(e Emitter, level Type, title, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"title":   title,
		"message": message,
	})
}

// ValidationNotifier returns a Notifier that shows each batch of
// validation errors as one error toast.
func ValidationNotifier(e Emitter) upload.NotifyFunc {
	return func(errs upload.ValidationErrors) {
		if len(errs) == 0 {
			return
		}
		WithTitle(e, TypeError, ValidationTitle, errs.Error())
	}
}

// UploadResult shows the outcome of an upload: a success toast, or an
// error toast carrying the server's or the client's error message.
func UploadResult(e Emitter, result upload.Result) {
	if result.Success() {
		Success(e, "Files uploaded")
		return
	}
	msg := result.ErrorMessage()
	if msg == "" {
		msg = "Upload failed"
	}
	WithTitle(e, TypeError, "Upload failed", msg)
}
