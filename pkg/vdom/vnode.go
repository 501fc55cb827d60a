package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes
	Text     string   // For KindText
	HID      string   // Hydration ID (assigned when attached)
}

// Props holds attributes and event handlers.
type Props map[string]any

// IsInteractive returns true if this node has event handlers and needs a HID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if isEventKey(key) {
			return true
		}
	}
	return false
}

// Handler returns the handler registered for the event (e.g. "click").
func (v *VNode) Handler(event string) (func(), bool) {
	if v == nil || v.Props == nil {
		return nil, false
	}
	fn, ok := v.Props["on"+event].(func())
	return fn, ok
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

func isEventKey(key string) bool {
	return strings.HasPrefix(key, "on")
}
