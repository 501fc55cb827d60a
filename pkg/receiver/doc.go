// Package receiver is a development implementation of the endpoint an
// upload widget posts to.
//
// The handler accepts a multipart form with a "csrfmiddlewaretoken" field
// and one "files" part per file, and answers with JSON:
//
//	{"success": true, "files": [{"id": "...", "name": "a.png", ...}], "url": "/uploads/..."}
//	{"success": false, "error": "..."}
//
// Mount it together with the file handler:
//
//	store, _ := receiver.NewDiskStore("uploads", 10<<20)
//	r.Post("/upload", receiver.Handler(store, receiver.DefaultConfig()))
//	r.Get("/uploads/{id}", receiver.FileHandler(store))
//
// # Security
//
// Config.AllowedTypes is enforced against the type detected from the file
// content (http.DetectContentType). The Content-Type of the part is not
// trusted. Stored files are served with "X-Content-Type-Options: nosniff".
//
// The receiver is meant for local development and tests. It has no
// authentication beyond the optional CSRF token.
package receiver
