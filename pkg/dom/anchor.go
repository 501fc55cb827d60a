package dom

import "github.com/vango-dev/imgupload/pkg/vdom"

// Selectors of the elements a host page provides.
const (
	SelectorDropZone  = ".upload-area"
	SelectorFileInput = "#image-upload"
	SelectorBrowse    = "#browse-btn"
	SelectorPreviews  = "#image-preview-container"
	SelectorCounter   = "#file-counter"
)

// Target is an element that accepts event listeners.
type Target interface {
	// Listen registers h for the event type and returns a function that
	// removes it again.
	Listen(event string, h Handler) (remove func())
}

// DropZone is the drag-and-drop area.
type DropZone interface {
	Target
	AddClass(name string)
	RemoveClass(name string)
}

// FileInput is the file picker input. Its selection mirrors the widget's
// collection.
type FileInput interface {
	Target
	SetFiles(files []File)
	Click()
}

// BrowseTrigger opens the file picker when clicked.
type BrowseTrigger interface {
	Target
}

// Node is an element attached to the page that can remove itself.
type Node interface {
	Remove()
}

// PreviewContainer holds preview cards.
type PreviewContainer interface {
	// Append attaches card as the last child and returns its handle.
	// Event handlers on the card fire when the page reports them.
	Append(card *vdom.VNode) Node
	Clear()
}

// Counter displays the number of selected files.
type Counter interface {
	SetText(text string)
}

// Anchors is the set of elements a widget binds to. Any field may be nil.
type Anchors struct {
	DropZone  DropZone
	FileInput FileInput
	Browse    BrowseTrigger
	Previews  PreviewContainer
	Counter   Counter
}
