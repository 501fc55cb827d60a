package vdom

import (
	"fmt"
	"sync"
)

// HIDGenerator generates unique hydration IDs for interactive elements.
type HIDGenerator struct {
	prefix  string
	counter uint32
	mu      sync.Mutex
}

// NewHIDGenerator creates a new HIDGenerator producing "h1", "h2", ...
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{prefix: "h"}
}

// NewHIDGeneratorWithPrefix creates a generator whose IDs start with prefix.
// Use it when several documents share one client page.
func NewHIDGeneratorWithPrefix(prefix string) *HIDGenerator {
	return &HIDGenerator{prefix: prefix}
}

// Next returns the next hydration ID.
func (g *HIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s%d", g.prefix, g.counter)
}

// Current returns the current counter value without incrementing.
func (g *HIDGenerator) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// AssignHIDs walks the tree and assigns HIDs to interactive elements.
// The root always receives a HID so that it can be removed as a unit.
func AssignHIDs(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}
	if node.Kind == KindElement && node.HID == "" {
		node.HID = gen.Next()
	}
	for _, child := range node.Children {
		assignInteractive(child, gen)
	}
}

func assignInteractive(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}
	if node.IsInteractive() && node.HID == "" {
		node.HID = gen.Next()
	}
	for _, child := range node.Children {
		assignInteractive(child, gen)
	}
}

// Find returns the node in the tree with the given HID, or nil.
func Find(node *VNode, hid string) *VNode {
	if node == nil || hid == "" {
		return nil
	}
	if node.HID == hid {
		return node
	}
	for _, child := range node.Children {
		if found := Find(child, hid); found != nil {
			return found
		}
	}
	return nil
}
