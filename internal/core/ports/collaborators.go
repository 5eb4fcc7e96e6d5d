package ports

import (
	"context"
	"io"
	"time"

	"github.com/recordhub/records-system/internal/core/domain"
)

// FileStorage checks, names and persists uploads.
type FileStorage interface {
	// Store returns domain.ErrPayloadTooLarge or domain.ErrUnsupportedFileType
	// for rejected uploads.
	Store(ctx context.Context, up Upload) (domain.StoredFile, error)
	// Open returns domain.ErrNotFound when the key is unknown.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Upload is a received multipart file before it is stored.
type Upload struct {
	Field    string
	FileName string
	Size     int64
	Content  io.ReadSeeker
}

// TokenDenylist remembers revoked bearer tokens until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// StatsCache holds the last computed dashboard payload. Get returns nil
// without error on a miss.
type StatsCache interface {
	Get(ctx context.Context) (*domain.DashboardStats, error)
	Set(ctx context.Context, stats *domain.DashboardStats) error
}

// Column is one column of an exported table.
type Column struct {
	Header string
	Width  float64
}

// Table is the renderer-independent shape of a report.
type Table struct {
	Title       string
	GeneratedAt time.Time
	Columns     []Column
	Rows        [][]string
}

// ReportRenderer turns a Table into a file of one output format.
type ReportRenderer interface {
	Render(w io.Writer, t *Table) error
	ContentType() string
	Extension() string
}
