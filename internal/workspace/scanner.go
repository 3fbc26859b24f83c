package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mga-chatbot/internal/domain"
)

// ListFiles returns the files currently stored in the partition, sorted by name.
// Hidden files (including in-flight uploads) and subdirectories are ignored.
// Files with unsupported extensions are listed with their raw extension as format.
func (m *Manager) ListFiles(ctx context.Context, p domain.Partition) ([]domain.RawFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(p.RootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.IOError{Op: "list", Path: p.RootPath, Err: err}
	}

	files := make([]domain.RawFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		format, _ := domain.FormatFromName(entry.Name())
		files = append(files, domain.RawFile{
			Partition: p.Name,
			Name:      entry.Name(),
			Format:    format,
			Path:      filepath.Join(p.RootPath, entry.Name()),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Fingerprint identifies a file set. Two listings of an unchanged partition
// produce the same fingerprint; any upload, replacement or removal changes it.
func Fingerprint(files []domain.RawFile) string {
	sorted := make([]domain.RawFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	for _, f := range sorted {
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", f.Name, f.Size, f.ModTime.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}
