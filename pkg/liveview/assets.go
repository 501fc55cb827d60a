package liveview

import (
	_ "embed"
	"net/http"
)

//go:embed static/client.js
var clientScript []byte

//go:embed static/index.html
var indexPage []byte

// ScriptHandler serves the client script.
func ScriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(clientScript)
	}
}

// PageHandler serves a page with every anchor the widget binds to. It
// loads /client.js, which connects to /ws.
func PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexPage)
	}
}
