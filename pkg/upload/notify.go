package upload

import "log/slog"

// Notifier presents validation errors to the user.
type Notifier interface {
	Notify(errs ValidationErrors)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(errs ValidationErrors)

// Notify calls f(errs).
func (f NotifyFunc) Notify(errs ValidationErrors) { f(errs) }

// logNotifier is the default Notifier; it only logs.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(errs ValidationErrors) {
	n.logger.Warn("files rejected", "count", len(errs), "errors", errs.Error())
}
