// Package storage persists uploaded files on local disk or in an S3
// compatible bucket. Both backends share naming and type checks.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/ports"
)

// URLPrefix is the path uploads are served from.
const URLPrefix = domain.UploadPath

// Backend writes and reads stored objects by key.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns domain.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Manager implements ports.FileStorage on top of a Backend.
type Manager struct {
	backend  Backend
	maxBytes int64
	logger   zerolog.Logger
	now      func() time.Time
}

var _ ports.FileStorage = (*Manager)(nil)

func NewManager(backend Backend, maxBytes int64, logger zerolog.Logger) *Manager {
	return &Manager{backend: backend, maxBytes: maxBytes, logger: logger, now: time.Now}
}

// Store checks size and type, then writes the upload under a fresh name.
func (m *Manager) Store(ctx context.Context, up ports.Upload) (domain.StoredFile, error) {
	if up.Content == nil {
		return domain.StoredFile{}, domain.ErrFileRequired
	}
	if m.maxBytes > 0 && up.Size > m.maxBytes {
		return domain.StoredFile{}, domain.ErrPayloadTooLarge
	}
	ext, mime, err := Detect(up.FileName, up.Content)
	if err != nil {
		return domain.StoredFile{}, err
	}

	key := ObjectName(up.Field, ext, m.now())
	if err := m.backend.Put(ctx, key, up.Content, up.Size, mime.String()); err != nil {
		return domain.StoredFile{}, fmt.Errorf("store %s: %w", key, err)
	}
	m.logger.Debug().Str("key", key).Int64("size", up.Size).Str("mime", mime.String()).Msg("upload stored")

	return domain.StoredFile{
		FileName:   up.FileName,
		FileURL:    URLPrefix + key,
		StorageKey: key,
		FileSize:   up.Size,
		FileType:   strings.TrimPrefix(ext, "."),
		MimeType:   mime.String(),
	}, nil
}

func (m *Manager) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, domain.ErrNotFound
	}
	rc, err := m.backend.Get(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return rc, err
}

// validKey rejects keys that could escape the flat upload namespace.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
