package repository

import (
	"context"
	"time"

	"contentbot/internal/domain"
)

// ContentStore reads and writes the content document
type ContentStore interface {
	GetContent(ctx context.Context) (*domain.ContentSnapshot, error)
	UpdateContent(ctx context.Context, doc domain.Document) error
}

// BackupRepository stores content snapshots.
// Versions are 1-based positions in the newest-first list.
type BackupRepository interface {
	CreateBackup(ctx context.Context, filename string, data []byte) (*domain.Backup, error)
	ListBackups(ctx context.Context, limit int) ([]domain.Backup, error)
	LoadBackup(ctx context.Context, version int) (*domain.Backup, error)
	GetBackup(ctx context.Context, id int64) (*domain.Backup, error)
	CountBackups(ctx context.Context) (int, error)
}

// VisitSource reads visits from the analytics API
type VisitSource interface {
	GetRecentVisits(ctx context.Context, since, until time.Time) ([]domain.Visit, error)
	TestConnection(ctx context.Context) (*domain.SiteInfo, error)
}
