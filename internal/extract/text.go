package extract

import (
	"bytes"
	"context"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainTextExtractor reads text documents as UTF-8
type PlainTextExtractor struct{}

// Extract strips a UTF-8 byte order mark and replaces invalid sequences with U+FFFD
func (PlainTextExtractor) Extract(_ context.Context, _ string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
