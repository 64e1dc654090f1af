package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"contentbot/internal/domain"
	"contentbot/internal/repository"

	"go.uber.org/zap"
)

// DefaultBackupListLimit is how many backups /backups shows
const DefaultBackupListLimit = 10

// VersionService handles backups, rollback and diffs
type VersionService struct {
	store   repository.ContentStore
	backups repository.BackupRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewVersionService creates a new version service
func NewVersionService(store repository.ContentStore, backups repository.BackupRepository, logger *zap.Logger) *VersionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VersionService{
		store:   store,
		backups: backups,
		logger:  logger,
		now:     time.Now,
	}
}

// ListBackups returns the newest backups first
func (s *VersionService) ListBackups(ctx context.Context, limit int) ([]domain.Backup, error) {
	if limit <= 0 {
		limit = DefaultBackupListLimit
	}
	backups, err := s.backups.ListBackups(ctx, limit)
	if err != nil {
		return nil, domain.Upstream("backup", "list", err)
	}
	return backups, nil
}

// CountBackups returns the number of stored backups
func (s *VersionService) CountBackups(ctx context.Context) (int, error) {
	n, err := s.backups.CountBackups(ctx)
	if err != nil {
		return 0, domain.Upstream("backup", "count", err)
	}
	return n, nil
}

// LoadBackup returns backup number version, 1 being the newest
func (s *VersionService) LoadBackup(ctx context.Context, version int) (*domain.Backup, error) {
	if version < 1 {
		return nil, domain.ErrInvalidVersion
	}
	b, err := s.backups.LoadBackup(ctx, version)
	if err != nil {
		if domain.Classify(err) == domain.KindNotFound || domain.Classify(err) == domain.KindUserInput {
			return nil, err
		}
		return nil, domain.Upstream("backup", "load", err)
	}
	return b, nil
}

// GetBackup returns the backup with the given id
func (s *VersionService) GetBackup(ctx context.Context, id int64) (*domain.Backup, error) {
	b, err := s.backups.GetBackup(ctx, id)
	if err != nil {
		if domain.Classify(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.Upstream("backup", "load", err)
	}
	return b, nil
}

// Rollback restores the backup with the given id after backing up the current document.
// The id pins the snapshot; positions shift with every new backup.
func (s *VersionService) Rollback(ctx context.Context, id int64) (*domain.Backup, error) {
	target, err := s.GetBackup(ctx, id)
	if err != nil {
		return nil, err
	}

	var restored domain.Document
	if err := json.Unmarshal(target.Data, &restored); err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", target.Filename, err)
	}

	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := createBackup(ctx, s.backups, snapshot.Content, s.now(), s.logger); err != nil {
		return nil, err
	}

	if err := s.store.UpdateContent(ctx, restored); err != nil {
		return nil, err
	}

	s.logger.Info("Content rolled back",
		zap.Int64("backup_id", id),
		zap.String("filename", target.Filename),
	)
	return target, nil
}

// DiffLatest compares the current document with the newest backup
func (s *VersionService) DiffLatest(ctx context.Context) ([]domain.Change, *domain.Backup, error) {
	latest, err := s.LoadBackup(ctx, 1)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return nil, nil, err
	}
	current, err := json.Marshal(snapshot.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("encode content: %w", err)
	}

	changes, err := Diff(latest.Data, current)
	if err != nil {
		return nil, nil, err
	}
	return changes, latest, nil
}
