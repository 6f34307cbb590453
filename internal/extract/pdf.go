package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls the text layer out of PDFs in-process
type PDFExtractor struct{}

// Extract concatenates the plain text of every page in page order with no separator.
// Scanned PDFs without a text layer yield an empty string, which scores zero.
func (PDFExtractor) Extract(ctx context.Context, filename string, data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF %s: %v", filename, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", filename, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d of %s: %w", i, filename, err)
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}
