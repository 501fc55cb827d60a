package liveview

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/vango-dev/imgupload/pkg/dom"
)

// Inbound message types sent by the client script.
const (
	MsgDragOver  = dom.EventDragOver
	MsgDragLeave = dom.EventDragLeave
	MsgDrop      = dom.EventDrop
	MsgChange    = dom.EventChange
	MsgClick     = dom.EventClick
	MsgUpload    = "upload"
	MsgClear     = "clear"
	MsgRemove    = "remove"
)

// Events emitted to the page besides toasts.
const (
	EventConfig = "upload:config"
	EventResult = "upload:result"
)

// Message is a browser event as sent by the client script.
type Message struct {
	Type   string     `json:"type"`
	Target string     `json:"target,omitempty"`
	HID    string     `json:"hid,omitempty"`
	Name   string     `json:"name,omitempty"`
	Files  []WireFile `json:"files,omitempty"`
}

// WireFile is a file reported by the browser. ID is assigned by the
// client and names the browser File object in setFiles patches, so files
// that share a name stay distinct. Data is the base64 file content. The
// client omits it for files that cannot be accepted, so they can still be
// reported as rejected.
type WireFile struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"data,omitempty"`
}

var errNoContent = errors.New("liveview: file content was not sent")

// remoteFile is the dom.File handle for a WireFile.
type remoteFile struct {
	id          string
	name        string
	contentType string
	size        int64
	data        []byte
}

func (f *remoteFile) Name() string { return f.name }
func (f *remoteFile) Type() string { return f.contentType }
func (f *remoteFile) Size() int64  { return f.size }

func (f *remoteFile) Open() (io.ReadCloser, error) {
	if f.data == nil {
		return nil, errNoContent
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// decodeFiles converts wire files into handles. With content present the
// size is the decoded length, not the declared one.
func decodeFiles(in []WireFile) ([]dom.File, error) {
	out := make([]dom.File, 0, len(in))
	for _, wf := range in {
		f := &remoteFile{id: wf.ID, name: wf.Name, contentType: wf.Type, size: wf.Size}
		if wf.Data != "" {
			data, err := base64.StdEncoding.DecodeString(wf.Data)
			if err != nil {
				return nil, fmt.Errorf("decode %q: %w", wf.Name, err)
			}
			f.data = data
			f.size = int64(len(data))
		} else if wf.Size == 0 {
			f.data = []byte{}
		}
		out = append(out, f)
	}
	return out, nil
}
