package vdom

// PatchOp is the type of patch operation.
type PatchOp string

const (
	PatchAddClass    PatchOp = "addClass"    // Add a CSS class
	PatchRemoveClass PatchOp = "removeClass" // Remove a CSS class
	PatchSetText     PatchOp = "setText"     // Update text content
	PatchSetFiles    PatchOp = "setFiles"    // Replace a file input's selection
	PatchClick       PatchOp = "click"       // Programmatic click
	PatchInsertNode  PatchOp = "append"      // Append rendered node to a parent
	PatchRemoveNode  PatchOp = "remove"      // Remove node by HID
	PatchClear       PatchOp = "clear"       // Remove all children of a parent
	PatchEvent       PatchOp = "event"       // Dispatch a custom event on window
)

// Patch represents a single DOM operation to apply on the client.
type Patch struct {
	Op     PatchOp  `json:"op"`
	Target string   `json:"target,omitempty"` // CSS selector of the anchor
	HID    string   `json:"hid,omitempty"`    // Target node's hydration ID
	Value  string   `json:"value,omitempty"`  // Class name or text
	HTML   string   `json:"html,omitempty"`   // For InsertNode
	Files  []string `json:"files,omitempty"`  // For SetFiles
	Name   string   `json:"name,omitempty"`   // For Event
	Detail any      `json:"detail,omitempty"` // For Event
}
