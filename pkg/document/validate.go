package document

import (
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// PDFMime is the only accepted content type.
const PDFMime = "application/pdf"

// ErrNotPDF is returned for input that is not a PDF document.
var ErrNotPDF = errors.New("not a PDF file")

// Validate sniffs data and rejects anything that is not a PDF.
func Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty input: %w", ErrNotPDF)
	}
	if mt := mimetype.Detect(data); !mt.Is(PDFMime) {
		return fmt.Errorf("detected %s: %w", mt.String(), ErrNotPDF)
	}
	return nil
}

// ReadFile reads a PDF from disk, checking its content type first.
func ReadFile(path string) ([]byte, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	if !mt.Is(PDFMime) {
		return nil, fmt.Errorf("%s is %s: %w", path, mt.String(), ErrNotPDF)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}
	return data, nil
}
