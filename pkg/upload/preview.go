package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/imgupload/pkg/dom"
	"github.com/vango-dev/imgupload/pkg/vdom"
	"golang.org/x/sync/errgroup"
)

// Preview is a decoded preview of an accepted file.
type Preview struct {
	// Index is the file's position in the ProcessFiles input.
	Index int

	File *File

	// DataURL is the file contents as a base64 data URL.
	DataURL string
}

// Batch is the outcome of one ProcessFiles call.
type Batch struct {
	// Accepted are the files added to the collection, in input order.
	Accepted []*File

	// Errors are the rejections, in detection order.
	Errors ValidationErrors

	tasks []*previewTask
}

// Wait blocks until every preview of the batch has finished or ctx is
// done. It returns the finished previews sorted by input index and the
// first decode error.
func (b *Batch) Wait(ctx context.Context) ([]Preview, error) {
	var g errgroup.Group
	for _, t := range b.tasks {
		g.Go(func() error {
			return t.wait(ctx)
		})
	}
	err := g.Wait()

	var out []Preview
	for _, t := range b.tasks {
		if p, ok := t.result(); ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, err
}

type previewTask struct {
	done    chan struct{}
	preview Preview
	err     error
}

func (t *previewTask) wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *previewTask) result() (Preview, bool) {
	select {
	case <-t.done:
		return t.preview, t.err == nil
	default:
		return Preview{}, false
	}
}

// createPreviews starts one decoding goroutine per file.
func (w *Widget) createPreviews(files []*File, indexes []int) []*previewTask {
	tasks := make([]*previewTask, len(files))
	for i, f := range files {
		t := &previewTask{
			done:    make(chan struct{}),
			preview: Preview{Index: indexes[i], File: f},
		}
		tasks[i] = t
		go w.runPreview(t)
	}
	return tasks
}

// runPreview decodes the file and attaches its card. A card is attached
// even if the file was removed while decoding.
func (w *Widget) runPreview(t *previewTask) {
	defer close(t.done)

	f := t.preview.File
	dataURL, err := encodeDataURL(f)
	if err != nil {
		t.err = fmt.Errorf("preview %q: %w", f.Name, err)
		w.logger.Warn("preview failed", "file", f.Name, "error", err)
		return
	}
	t.preview.DataURL = dataURL

	container := w.anchors.Previews
	if container == nil {
		return
	}
	card := &attachedCard{}
	card.set(container.Append(w.previewCard(f, dataURL, card)))
}

// previewCard builds the card markup; its remove button drops the file
// from the collection and detaches the card.
func (w *Widget) previewCard(f *File, dataURL string, card *attachedCard) *vdom.VNode {
	remove := func() {
		w.RemoveFile(f.Name)
		card.remove()
	}

	return vdom.Div(vdom.Class("col-6", "col-md-4", "col-lg-3", "mb-3"),
		vdom.Div(vdom.Class("image-preview"),
			vdom.Img(vdom.Src(dataURL), vdom.Class("img-fluid", "rounded"), vdom.Alt(f.Name)),
			vdom.Button(
				vdom.Type("button"),
				vdom.Class("remove-btn"),
				vdom.Data("filename", f.Name),
				vdom.AriaLabel("Remove "+f.Name),
				vdom.OnClick(remove),
				vdom.I(vdom.Class("bi", "bi-x")),
			),
			vdom.Div(vdom.Class("file-info", "small", "mt-1"),
				vdom.Div(vdom.Class("text-truncate"), f.Name),
				vdom.Div(vdom.Class("text-muted"), FormatBytes(f.Size)),
			),
		),
	)
}

// attachedCard holds the node handle of an attached card. The remove
// button can fire before Append has returned on some hosts.
type attachedCard struct {
	mu      sync.Mutex
	node    dom.Node
	removed bool
}

func (c *attachedCard) set(n dom.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.node = n
	if c.removed && n != nil {
		n.Remove()
	}
}

func (c *attachedCard) remove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = true
	if c.node != nil {
		c.node.Remove()
	}
}

// encodeDataURL reads the file and encodes it as a base64 data URL.
func encodeDataURL(f *File) (string, error) {
	rc, err := f.Handle.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var b strings.Builder
	b.Grow(len("data:;base64,") + len(contentType) + base64.StdEncoding.EncodedLen(int(f.Size)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &b)
	if _, err := io.Copy(enc, rc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}
