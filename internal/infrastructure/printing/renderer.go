// Package printing renders printable documents: an html/template produces the
// page and headless Chrome turns it into a PDF.
package printing

import (
	"context"
	"time"
)

// PaperSize names a supported sheet format
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeLetter PaperSize = "LETTER"
)

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// IsValid reports whether the paper size is supported
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4 || p == PaperSizeLetter
}

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins returns 15mm on every side
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 15, Bottom: 15, Left: 15}
}

// RenderRequest is an HTML page to turn into a PDF
type RenderRequest struct {
	HTML       string
	Title      string
	PaperSize  PaperSize
	Landscape  bool
	Margins    Margins
	FooterHTML string        // repeated on every page, optional
	Timeout    time.Duration // zero uses the renderer default
}

// RenderResult is a rendered PDF
type RenderResult struct {
	PDFData        []byte
	RenderDuration time.Duration
}

// PDFRenderer converts HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Error codes of RenderError
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeBusy             = "RENDERER_BUSY"
)

// RenderError is returned by renderers
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
