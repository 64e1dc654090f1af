package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contentbot/internal/domain"
)

// BackupRepo implements repository.BackupRepository
type BackupRepo struct {
	db *sql.DB
}

// NewBackupRepo creates a new backup repository
func NewBackupRepo(db *sql.DB) *BackupRepo {
	return &BackupRepo{db: db}
}

// CreateBackup stores a snapshot of the content document
func (r *BackupRepo) CreateBackup(ctx context.Context, filename string, data []byte) (*domain.Backup, error) {
	query := `
		INSERT INTO content_backups (filename, data, size)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	b := domain.Backup{Filename: filename, Size: len(data), Data: data}
	err := r.db.QueryRowContext(ctx, query, filename, string(data), len(data)).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	return &b, nil
}

// ListBackups returns backups newest first without their payload
func (r *BackupRepo) ListBackups(ctx context.Context, limit int) ([]domain.Backup, error) {
	query := `
		SELECT id, filename, size, created_at
		FROM content_backups
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []domain.Backup
	for rows.Next() {
		var b domain.Backup
		if err := rows.Scan(&b.ID, &b.Filename, &b.Size, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// LoadBackup returns the backup at the given 1-based position, newest first
func (r *BackupRepo) LoadBackup(ctx context.Context, version int) (*domain.Backup, error) {
	if version < 1 {
		return nil, domain.ErrInvalidVersion
	}
	query := `
		SELECT id, filename, data, size, created_at
		FROM content_backups
		ORDER BY created_at DESC, id DESC
		OFFSET $1
		LIMIT 1
	`
	var (
		b    domain.Backup
		data string
	)
	err := r.db.QueryRowContext(ctx, query, version-1).Scan(&b.ID, &b.Filename, &data, &b.Size, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("version %d: %w", version, domain.ErrBackupNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load backup: %w", err)
	}
	b.Data = []byte(data)
	return &b, nil
}

// GetBackup returns the backup with the given id
func (r *BackupRepo) GetBackup(ctx context.Context, id int64) (*domain.Backup, error) {
	query := `
		SELECT id, filename, data, size, created_at
		FROM content_backups
		WHERE id = $1
	`
	var (
		b    domain.Backup
		data string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Filename, &data, &b.Size, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backup %d: %w", id, domain.ErrBackupNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	b.Data = []byte(data)
	return &b, nil
}

// CountBackups returns the number of stored backups
func (r *BackupRepo) CountBackups(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_backups`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count backups: %w", err)
	}
	return count, nil
}
