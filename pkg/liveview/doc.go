// Package liveview binds an upload widget to a real browser page over a
// WebSocket.
//
// The server keeps the widget and its collection. The browser reports
// drag, drop, change and click events together with the file bytes, and
// receives DOM patches for the drop zone class, the file input, the
// preview cards and the counter:
//
//	browser                          server
//	  drop {files:[...]}      ->     Widget.ProcessFiles
//	                          <-     {op:"append", target:"#image-preview-container", html:"..."}
//	                          <-     {op:"setText", target:"#file-counter", value:"Files selected: 1"}
//	  click {hid:"h3"}        ->     remove button handler
//	                          <-     {op:"remove", hid:"h2"}
//
// Mount the handlers next to each other:
//
//	r.Get("/", liveview.PageHandler())
//	r.Get("/client.js", liveview.ScriptHandler())
//	r.Get("/ws", liveview.Handler(configFor).ServeHTTP)
package liveview
