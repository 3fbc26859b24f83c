package extract

import (
	"bytes"
	"context"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"mga-chatbot/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text reads a plain-text file as a single document. Files that are not
// valid UTF-8 are decoded as Windows-1252, the usual encoding of text
// exported from older office tools.
func Text(_ context.Context, file domain.RawFile) ([]domain.Document, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: file.Path, Err: err}
	}
	return single(file, decodeText(data)), nil
}

func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return normalizeNewlines(string(data))
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return normalizeNewlines(strings.ToValidUTF8(string(data), "�"))
	}
	return normalizeNewlines(string(decoded))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
