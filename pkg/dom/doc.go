// Package dom defines the page anchors the upload widget binds to.
//
// A page offers up to five anchors: a drop zone, a file input, a browse
// trigger, a preview container and a file counter. Each is optional; a
// nil anchor in Anchors is simply not bound. The selectors below name
// the elements a host page is expected to provide.
//
// Files arrive as File handles, the equivalent of a browser File object:
// a name, a MIME type, a size and a way to read the bytes. MemFile holds
// the bytes in memory, FSFile reads them from an afero filesystem.
//
// Document is an in-memory page implementing every anchor. Tests and the
// command-line host drive the widget through it.
package dom
