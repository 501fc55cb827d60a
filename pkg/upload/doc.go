// Package upload implements the image upload widget.
//
// A Widget collects files dropped on or picked through a page, validates
// them, shows previews and sends them to the server in one multipart POST.
//
// # Binding
//
// New binds the widget to whatever anchors the page provides and never
// fails; missing anchors are skipped. Close removes every listener, so
// several widgets can live side by side on one page or in one test.
//
//	doc := dom.NewDocument()
//	w := upload.New(&upload.Config{UploadURL: "/upload", CSRFToken: token}, doc.Anchors(),
//	    upload.WithNotifier(upload.NotifyFunc(func(errs upload.ValidationErrors) {
//	        log.Println(errs.Error())
//	    })),
//	)
//	defer w.Close()
//
// # Validation
//
// Every candidate is checked, in order, for an allowed MIME type, a size
// within Config.MaxSize and room in the collection. The first failing
// check rejects the file with InvalidType, TooLarge or LimitExceeded.
// Rejections from one ProcessFiles call reach the Notifier together.
//
// # Previews
//
// Each accepted file is decoded into a data URL on its own goroutine and
// a card is appended to the preview container as soon as it is ready.
// Completion order is not input order; Batch.Wait returns the previews
// sorted by input index.
//
// # Uploading
//
// Upload posts the csrfmiddlewaretoken field followed by one "files" part
// per file and returns the decoded JSON response as is. Failures never
// surface as errors; they come back as {"success": false, "error": "..."}.
package upload
