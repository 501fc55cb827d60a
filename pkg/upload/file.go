package upload

import "github.com/vango-dev/imgupload/pkg/dom"

// File is a file accepted into the collection.
type File struct {
	// Name is the original filename.
	Name string

	// ContentType is the MIME type reported by the page.
	ContentType string

	// Size is the file size in bytes.
	Size int64

	// Handle is the page's handle to the file contents.
	Handle dom.File
}

func newFile(h dom.File) *File {
	return &File{
		Name:        h.Name(),
		ContentType: h.Type(),
		Size:        h.Size(),
		Handle:      h,
	}
}

// handles returns the page handles of files, in order.
func handles(files []*File) []dom.File {
	out := make([]dom.File, len(files))
	for i, f := range files {
		out[i] = f.Handle
	}
	return out
}
