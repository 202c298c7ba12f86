// Package extract converts uploaded documents into plain text.
//
// Supported kinds:
//   - pdf            — page-ordered text extraction (pure Go)
//   - docx           — Microsoft Word (archive/zip → word/document.xml)
//   - png, jpg, jpeg — optical character recognition via a pluggable engine
//
// The dispatcher owns kind detection, strategy selection and failure
// containment; it never retries, and a strategy fault can not escape as a
// process fault.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the closed set of content kinds the dispatcher can handle.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindDOCX  Kind = "docx"
	KindImage Kind = "image"
)

// Strategy converts one document kind into plain text. An empty string is a
// valid success for inputs with no recognizable text.
type Strategy interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Dispatcher maps content kinds to extraction strategies.
type Dispatcher struct {
	strategies map[Kind]Strategy
}

// NewDispatcher wires the default strategy table. The OCR engine is the slow,
// replaceable seam; pass a different implementation to swap it out.
func NewDispatcher(engine OCREngine) *Dispatcher {
	return &Dispatcher{
		strategies: map[Kind]Strategy{
			KindPDF:   pdfStrategy{},
			KindDOCX:  docxStrategy{},
			KindImage: imageStrategy{engine: engine},
		},
	}
}

// DetectKind maps a filename to a dispatchable kind by its lowercased
// extension. Anything outside the table is ErrUnsupportedType.
func DetectKind(filename string) (Kind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "pdf":
		return KindPDF, nil
	case "docx":
		return KindDOCX, nil
	case "png", "jpg", "jpeg":
		return KindImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// Extract runs the strategy for the given kind. Strategy panics are recovered
// and reported as an *Error; callers compose their own retry and timeout
// policy around this call.
func (d *Dispatcher) Extract(ctx context.Context, kind Kind, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s, ok := d.strategies[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{Kind: kind, Cause: fmt.Errorf("strategy fault: %v", r)}
		}
	}()

	text, err = s.Extract(ctx, data)
	if err != nil {
		return "", asExtractionError(kind, err)
	}
	return text, nil
}
