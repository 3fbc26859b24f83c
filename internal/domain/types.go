// Package domain defines the chatbot's core types and error taxonomy.
package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Format is the extension-derived tag of a raw file.
type Format string

// Supported raw file formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SupportedFormats lists every format that has an extractor.
var SupportedFormats = []Format{FormatPDF, FormatDOCX, FormatTXT, FormatXLSX, FormatCSV}

// FormatFromName derives the format tag from a file name.
// The second return value is false if the extension is not supported.
func FormatFromName(name string) (Format, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return Format(ext), false
}

// Identity is an authenticated user. Team names the user's partition.
type Identity struct {
	Username string `json:"username"`
	Team     string `json:"team"`
}

// Partition is an isolated per-team storage scope.
type Partition struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	RootPath string `json:"-"`
}

// RawFile is an uploaded file owned by exactly one partition.
type RawFile struct {
	Partition string    `json:"partition"`
	Name      string    `json:"name"`
	Format    Format    `json:"format"`
	Path      string    `json:"-"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
}

// Document is text extracted from a raw file. Segment is the zero-based
// position of the text within its source (a page for PDFs, else 0).
type Document struct {
	Source  RawFile
	Segment int
	Text    string
}

// Chunk is a contiguous window of a document's text.
type Chunk struct {
	ID     string
	Source Document
	Seq    int
	Text   string
}

// SourceName returns the file name the chunk was extracted from.
func (c Chunk) SourceName() string {
	return c.Source.Source.Name
}

// Partition returns the partition the chunk's source file belongs to.
func (c Chunk) Partition() string {
	return c.Source.Source.Partition
}
