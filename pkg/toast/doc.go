// Package toast sends feedback notifications to the page.
//
// Toasts travel as custom events through an Emitter, the same channel a
// host already uses for other page events. The page decides how to show
// them; the live page's client script renders a dismissible alert.
//
// # Client-Side Handler
//
//	window.addEventListener("upload:toast", (e) => {
//	    const { level, message, title } = e.detail;
//	    showAlert(level, title, message);
//	});
//
// # Validation Errors
//
// ValidationNotifier turns the rejections of one ProcessFiles call into a
// single error toast, one line per rejected file:
//
//	w := upload.New(cfg, page.Anchors(), upload.WithNotifier(toast.ValidationNotifier(page)))
package toast
