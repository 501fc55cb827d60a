package liveview

import (
	"sync"

	"github.com/vango-dev/imgupload/pkg/dom"
	"github.com/vango-dev/imgupload/pkg/vdom"
)

// Page implements the dom anchors and toast.Emitter for one connected
// browser page. Every anchor operation becomes a patch on Patches.
type Page struct {
	out       chan vdom.Patch
	done      chan struct{}
	closeOnce sync.Once

	dropZone *dropZone
	input    *fileInput
	browse   *browseTrigger
	previews *previews
	counter  *counter
}

// NewPage creates a page whose patch queue holds up to buffer patches
// before senders block.
func NewPage(buffer int) *Page {
	p := &Page{
		out:  make(chan vdom.Patch, buffer),
		done: make(chan struct{}),
	}
	p.dropZone = &dropZone{page: p}
	p.input = &fileInput{page: p}
	p.browse = &browseTrigger{}
	p.previews = &previews{page: p, hids: vdom.NewHIDGenerator()}
	p.counter = &counter{page: p}
	return p
}

// Anchors returns the anchor set for binding a widget.
func (p *Page) Anchors() dom.Anchors {
	return dom.Anchors{
		DropZone:  p.dropZone,
		FileInput: p.input,
		Browse:    p.browse,
		Previews:  p.previews,
		Counter:   p.counter,
	}
}

// Patches returns the outbound patch queue.
func (p *Page) Patches() <-chan vdom.Patch { return p.out }

// Done is closed when the page is closed.
func (p *Page) Done() <-chan struct{} { return p.done }

// Close stops the page. Later patches are dropped.
func (p *Page) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// Emit dispatches a custom event on the client's window.
func (p *Page) Emit(name string, data any) {
	p.send(vdom.Patch{Op: vdom.PatchEvent, Name: name, Detail: data})
}

func (p *Page) send(patch vdom.Patch) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.out <- patch:
	case <-p.done:
	}
}

// Dispatch routes a browser message to the anchor it targets. It reports
// false for messages no anchor handles.
func (p *Page) Dispatch(msg Message, files []dom.File) bool {
	switch msg.Type {
	case MsgDragOver, MsgDragLeave, MsgDrop:
		p.dropZone.Dispatch(dom.Event{Type: msg.Type, Target: dom.SelectorDropZone, Files: files})
	case MsgChange:
		p.input.Dispatch(dom.Event{Type: msg.Type, Target: dom.SelectorFileInput, Files: files})
	case MsgClick:
		if msg.HID != "" {
			return p.previews.click(msg.HID)
		}
		if msg.Target != dom.SelectorBrowse {
			return false
		}
		p.browse.Dispatch(dom.Event{Type: msg.Type, Target: dom.SelectorBrowse})
	default:
		return false
	}
	return true
}

type dropZone struct {
	dom.Listeners
	page *Page
}

func (z *dropZone) AddClass(name string) {
	z.page.send(vdom.Patch{Op: vdom.PatchAddClass, Target: dom.SelectorDropZone, Value: name})
}

func (z *dropZone) RemoveClass(name string) {
	z.page.send(vdom.Patch{Op: vdom.PatchRemoveClass, Target: dom.SelectorDropZone, Value: name})
}

type fileInput struct {
	dom.Listeners
	page *Page
}

// SetFiles sends the selection as client file IDs, falling back to the
// name for handles that did not come from the page. The client rebuilds
// the input's FileList from the File objects it holds.
func (in *fileInput) SetFiles(files []dom.File) {
	refs := make([]string, len(files))
	for i, f := range files {
		refs[i] = f.Name()
		if rf, ok := f.(*remoteFile); ok && rf.id != "" {
			refs[i] = rf.id
		}
	}
	in.page.send(vdom.Patch{Op: vdom.PatchSetFiles, Target: dom.SelectorFileInput, Files: refs})
}

func (in *fileInput) Click() {
	in.page.send(vdom.Patch{Op: vdom.PatchClick, Target: dom.SelectorFileInput})
}

type browseTrigger struct {
	dom.Listeners
}

type counter struct {
	page *Page
}

func (c *counter) SetText(text string) {
	c.page.send(vdom.Patch{Op: vdom.PatchSetText, Target: dom.SelectorCounter, Value: text})
}

type previews struct {
	page *Page
	hids *vdom.HIDGenerator

	mu    sync.Mutex
	cards []*vdom.VNode
}

func (p *previews) Append(card *vdom.VNode) dom.Node {
	vdom.AssignHIDs(card, p.hids)

	p.mu.Lock()
	p.cards = append(p.cards, card)
	p.mu.Unlock()

	p.page.send(vdom.Patch{
		Op:     vdom.PatchInsertNode,
		Target: dom.SelectorPreviews,
		HID:    card.HID,
		HTML:   vdom.RenderHTML(card),
	})
	return &cardNode{previews: p, card: card}
}

func (p *previews) Clear() {
	p.mu.Lock()
	p.cards = nil
	p.mu.Unlock()

	p.page.send(vdom.Patch{Op: vdom.PatchClear, Target: dom.SelectorPreviews})
}

func (p *previews) click(hid string) bool {
	p.mu.Lock()
	var target *vdom.VNode
	for _, card := range p.cards {
		if n := vdom.Find(card, hid); n != nil {
			target = n
			break
		}
	}
	p.mu.Unlock()

	fn, ok := target.Handler(dom.EventClick)
	if !ok {
		return false
	}
	fn()
	return true
}

func (p *previews) remove(card *vdom.VNode) {
	p.mu.Lock()
	found := false
	for i, c := range p.cards {
		if c == card {
			p.cards = append(p.cards[:i], p.cards[i+1:]...)
			found = true
			break
		}
	}
	p.mu.Unlock()

	if found {
		p.page.send(vdom.Patch{Op: vdom.PatchRemoveNode, HID: card.HID})
	}
}

type cardNode struct {
	previews *previews
	card     *vdom.VNode
}

func (n *cardNode) Remove() {
	n.previews.remove(n.card)
}
