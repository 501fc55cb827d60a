package dom

import (
	"sort"
	"sync"

	"github.com/vango-dev/imgupload/pkg/vdom"
)

// Document is an in-memory page that provides every anchor.
type Document struct {
	dropZone *MemDropZone
	input    *MemFileInput
	browse   *MemBrowse
	previews *MemPreviews
	counter  *MemCounter
}

// NewDocument creates a document with all five anchors present.
func NewDocument() *Document {
	return &Document{
		dropZone: &MemDropZone{classes: make(map[string]bool)},
		input:    &MemFileInput{},
		browse:   &MemBrowse{},
		previews: &MemPreviews{hids: vdom.NewHIDGenerator()},
		counter:  &MemCounter{},
	}
}

// Anchors returns the anchor set for binding a widget.
func (d *Document) Anchors() Anchors {
	return Anchors{
		DropZone:  d.dropZone,
		FileInput: d.input,
		Browse:    d.browse,
		Previews:  d.previews,
		Counter:   d.counter,
	}
}

func (d *Document) DropZone() *MemDropZone   { return d.dropZone }
func (d *Document) FileInput() *MemFileInput { return d.input }
func (d *Document) Browse() *MemBrowse       { return d.browse }
func (d *Document) Previews() *MemPreviews   { return d.previews }
func (d *Document) Counter() *MemCounter     { return d.counter }

// MemDropZone is an in-memory drop zone.
type MemDropZone struct {
	Listeners

	mu      sync.Mutex
	classes map[string]bool
}

// Drop dispatches a drop event carrying files.
func (z *MemDropZone) Drop(files ...File) {
	z.Dispatch(Event{Type: EventDrop, Target: SelectorDropZone, Files: files})
}

// DragOver dispatches a dragover event.
func (z *MemDropZone) DragOver() {
	z.Dispatch(Event{Type: EventDragOver, Target: SelectorDropZone})
}

// DragLeave dispatches a dragleave event.
func (z *MemDropZone) DragLeave() {
	z.Dispatch(Event{Type: EventDragLeave, Target: SelectorDropZone})
}

func (z *MemDropZone) AddClass(name string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.classes[name] = true
}

func (z *MemDropZone) RemoveClass(name string) {
	z.mu.Lock()
	defer z.mu.Unlock()
	delete(z.classes, name)
}

// HasClass reports whether the class is currently set.
func (z *MemDropZone) HasClass(name string) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.classes[name]
}

// MemFileInput is an in-memory file input.
type MemFileInput struct {
	Listeners

	mu     sync.Mutex
	files  []File
	clicks int
}

// Select dispatches a change event as if the user picked files.
func (in *MemFileInput) Select(files ...File) {
	in.Dispatch(Event{Type: EventChange, Target: SelectorFileInput, Files: files})
}

func (in *MemFileInput) SetFiles(files []File) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.files = append([]File(nil), files...)
}

func (in *MemFileInput) Click() {
	in.mu.Lock()
	in.clicks++
	in.mu.Unlock()
	in.Dispatch(Event{Type: EventClick, Target: SelectorFileInput})
}

// Files returns the input's current selection.
func (in *MemFileInput) Files() []File {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]File(nil), in.files...)
}

// Clicks returns how many times the picker was opened.
func (in *MemFileInput) Clicks() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.clicks
}

// MemBrowse is an in-memory browse button.
type MemBrowse struct {
	Listeners
}

// Click dispatches a click event.
func (b *MemBrowse) Click() {
	b.Dispatch(Event{Type: EventClick, Target: SelectorBrowse})
}

// MemPreviews is an in-memory preview container.
type MemPreviews struct {
	mu    sync.Mutex
	hids  *vdom.HIDGenerator
	cards []*vdom.VNode
}

func (p *MemPreviews) Append(card *vdom.VNode) Node {
	vdom.AssignHIDs(card, p.hids)

	p.mu.Lock()
	p.cards = append(p.cards, card)
	p.mu.Unlock()

	return &memNode{container: p, card: card}
}

func (p *MemPreviews) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cards = nil
}

// Cards returns the attached cards in insertion order.
func (p *MemPreviews) Cards() []*vdom.VNode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*vdom.VNode(nil), p.cards...)
}

// Len returns the number of attached cards.
func (p *MemPreviews) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cards)
}

// Click fires the click handler of the node with the given HID.
// It reports whether a handler ran.
func (p *MemPreviews) Click(hid string) bool {
	p.mu.Lock()
	var target *vdom.VNode
	for _, card := range p.cards {
		if n := vdom.Find(card, hid); n != nil {
			target = n
			break
		}
	}
	p.mu.Unlock()

	fn, ok := target.Handler(EventClick)
	if !ok {
		return false
	}
	fn()
	return true
}

// HIDs returns the HIDs of every interactive node, sorted.
func (p *MemPreviews) HIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []string
	var walk func(n *vdom.VNode)
	walk = func(n *vdom.VNode) {
		if n.IsInteractive() {
			out = append(out, n.HID)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, card := range p.cards {
		walk(card)
	}
	sort.Strings(out)
	return out
}

func (p *MemPreviews) remove(card *vdom.VNode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.cards {
		if c == card {
			p.cards = append(p.cards[:i], p.cards[i+1:]...)
			return
		}
	}
}

type memNode struct {
	container *MemPreviews
	card      *vdom.VNode
}

func (n *memNode) Remove() {
	n.container.remove(n.card)
}

// MemCounter is an in-memory text element.
type MemCounter struct {
	mu   sync.Mutex
	text string
}

func (c *MemCounter) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

// Text returns the current text.
func (c *MemCounter) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
