package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/storage"
)

// Manager maps identities to team partitions and stores uploaded files in them.
// Each partition is a directory named after the team under the base directory.
type Manager struct {
	baseDir    string
	partitions storage.PartitionStore
	files      storage.FileStore
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]domain.Partition // by team name
}

// NewManager creates a workspace manager rooted at baseDir, creating it if needed.
func NewManager(baseDir string, partitions storage.PartitionStore, files storage.FileStore) (*Manager, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, &domain.IOError{Op: "mkdir", Path: abs, Err: err}
	}

	return &Manager{
		baseDir:    abs,
		partitions: partitions,
		files:      files,
		logger:     slog.Default(),
		now:        time.Now,
		cache:      make(map[string]domain.Partition),
	}, nil
}

// BaseDir returns the absolute directory that holds all partitions.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// EnsurePartition returns the identity's partition, creating its directory
// and metadata row on first use. It is safe to call repeatedly.
func (m *Manager) EnsurePartition(ctx context.Context, id domain.Identity) (domain.Partition, error) {
	if err := validateTeamName(id.Team); err != nil {
		return domain.Partition{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.cache[id.Team]; ok {
		// The directory may have been removed out of band.
		if _, err := os.Stat(p.RootPath); err == nil {
			return p, nil
		}
	}

	root := filepath.Join(m.baseDir, id.Team)
	if err := os.MkdirAll(root, 0755); err != nil {
		return domain.Partition{}, &domain.IOError{Op: "mkdir", Path: root, Err: err}
	}

	rec, err := m.partitions.GetOrCreateByName(ctx, id.Team, root)
	if err != nil {
		return domain.Partition{}, &domain.IOError{Op: "register partition", Path: root, Err: err}
	}

	p := domain.Partition{ID: rec.ID, Name: rec.Name, RootPath: root}
	m.cache[id.Team] = p

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "partition ready",
		"partition", p.Name,
		"root", root,
	)
	return p, nil
}

// StoreFile writes r into the partition under the base name of name,
// replacing any file with the same name. The write goes through a temporary
// file so readers never observe a partial upload.
func (m *Manager) StoreFile(ctx context.Context, p domain.Partition, name string, r io.Reader) (domain.RawFile, error) {
	logger := contextutil.LoggerFromContext(ctx)

	base, err := sanitizeFileName(name)
	if err != nil {
		return domain.RawFile{}, err
	}
	format, ok := domain.FormatFromName(base)
	if !ok {
		return domain.RawFile{}, &domain.UnsupportedFormatError{Name: base, Extension: string(format)}
	}

	dest := filepath.Join(p.RootPath, base)
	tmp, err := os.CreateTemp(p.RootPath, ".upload-*")
	if err != nil {
		return domain.RawFile{}, &domain.IOError{Op: "create", Path: dest, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if err != nil {
		_ = tmp.Close()
		return domain.RawFile{}, &domain.IOError{Op: "write", Path: dest, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.RawFile{}, &domain.IOError{Op: "sync", Path: dest, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return domain.RawFile{}, &domain.IOError{Op: "close", Path: dest, Err: err}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return domain.RawFile{}, &domain.IOError{Op: "rename", Path: dest, Err: err}
	}
	committed = true

	info, err := os.Stat(dest)
	if err != nil {
		return domain.RawFile{}, &domain.IOError{Op: "stat", Path: dest, Err: err}
	}

	uploader := ""
	if id, ok := contextutil.IdentityFromContext(ctx); ok {
		uploader = id.Username
	}
	rec := &storage.FileRecord{
		PartitionID: p.ID,
		Name:        base,
		Format:      string(format),
		Size:        size,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		UploadedBy:  uploader,
		UploadedAt:  m.now(),
	}
	if err := m.files.Upsert(ctx, rec); err != nil {
		return domain.RawFile{}, &domain.IOError{Op: "record", Path: dest, Err: err}
	}

	logger.InfoContext(ctx, "file stored",
		"partition", p.Name,
		"file", base,
		"size", size,
		"hash", rec.Hash,
	)

	return domain.RawFile{
		Partition: p.Name,
		Name:      base,
		Format:    format,
		Path:      dest,
		Size:      size,
		ModTime:   info.ModTime(),
	}, nil
}

// FileRecords returns the upload metadata recorded for the partition.
func (m *Manager) FileRecords(ctx context.Context, p domain.Partition) ([]storage.FileRecord, error) {
	records, err := m.files.ListByPartition(ctx, p.ID)
	if err != nil {
		return nil, &domain.IOError{Op: "list records", Path: p.RootPath, Err: err}
	}
	return records, nil
}

// ErrInvalidName is returned for upload names and team names that cannot be
// used as a single path component.
var ErrInvalidName = errors.New("invalid name")

func validateTeamName(team string) error {
	if team == "" || team == "." || team == ".." || strings.ContainsAny(team, `/\`) || strings.HasPrefix(team, ".") {
		return fmt.Errorf("%w: team %q", ErrInvalidName, team)
	}
	return nil
}

func sanitizeFileName(name string) (string, error) {
	// Browsers on Windows may send full client paths.
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "" || base == "." || base == "/" || base == ".." || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: file %q", ErrInvalidName, name)
	}
	return base, nil
}
