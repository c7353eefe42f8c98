package viewer

import (
	"errors"
	"fmt"
)

// Kind classifies reader failures.
type Kind int

const (
	// InvalidFileType is a selected file that is not a PDF.
	InvalidFileType Kind = iota + 1
	// DecodeFailure is a PDF that could not be opened.
	DecodeFailure
	// PageRenderFailure is a single page that failed to render.
	PageRenderFailure
	// ExportFailure is any failure while writing an export.
	ExportFailure
	// NoDocument is an action that needs an open document.
	NoDocument
)

func (k Kind) String() string {
	switch k {
	case InvalidFileType:
		return "invalid file type"
	case DecodeFailure:
		return "decode failure"
	case PageRenderFailure:
		return "page render failure"
	case ExportFailure:
		return "export failure"
	case NoDocument:
		return "no document"
	}
	return "unknown"
}

// Error is a reader failure surfaced to the user.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Notice is a blocking message for the user.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// NoticeFor returns the message shown for err.
func NoticeFor(err error) Notice {
	kind, _ := KindOf(err)
	switch kind {
	case InvalidFileType:
		return Notice{Title: "Invalid file", Message: "Please select a valid PDF file.", Error: true}
	case DecodeFailure:
		return Notice{Title: "Open failed", Message: "Error loading PDF file. Please try another file.", Error: true}
	case PageRenderFailure:
		return Notice{Title: "Render failed", Message: "Error rendering page. The page may be damaged.", Error: true}
	case ExportFailure:
		return Notice{Title: "Export failed", Message: "Error exporting PDF. Please try again.", Error: true}
	case NoDocument:
		return Notice{Title: "No document", Message: "Please load a PDF first!", Error: true}
	}
	return Notice{Title: "Error", Message: err.Error(), Error: true}
}
