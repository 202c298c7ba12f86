package extract

import (
	"context"
	"fmt"
	"strings"
)

// OCREngine recognizes text in a raster image. Implementations should return
// lines in reading order; recognition of hundreds of milliseconds to seconds
// is expected, so callers bound the context.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// imageStrategy delegates to the configured OCR engine. An image with no
// recognizable text extracts to an empty string, which is a success.
type imageStrategy struct {
	engine OCREngine
}

func (s imageStrategy) Extract(ctx context.Context, data []byte) (string, error) {
	if s.engine == nil {
		return "", fmt.Errorf("no OCR engine configured")
	}

	text, err := s.engine.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
