package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"contentbot/internal/domain"
	"contentbot/internal/repository"

	"go.uber.org/zap"
)

// UnknownCompany labels access codes without a matching profile
const UnknownCompany = "Unknown Company"

// SaveMode selects insert or replace semantics for SaveCase
type SaveMode int

const (
	SaveInsert SaveMode = iota
	SaveReplace
)

// ContentService handles case study business logic
type ContentService struct {
	store   repository.ContentStore
	backups repository.BackupRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewContentService creates a new content service
func NewContentService(store repository.ContentStore, backups repository.BackupRepository, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		store:   store,
		backups: backups,
		logger:  logger,
		now:     time.Now,
	}
}

// ContentStats summarizes the document
type ContentStats struct {
	FileSize     int64
	LastModified time.Time
	CaseStudies  int
	Profiles     int
	FetchedAt    time.Time
}

// GetContent returns the current snapshot
func (s *ContentService) GetContent(ctx context.Context) (*domain.ContentSnapshot, error) {
	return s.store.GetContent(ctx)
}

// ListCaseStudies returns case studies sorted by id
func (s *ContentService) ListCaseStudies(ctx context.Context) ([]domain.CaseSummary, error) {
	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return nil, err
	}

	studies := snapshot.Content.Global.CaseStudies
	out := make([]domain.CaseSummary, 0, len(studies))
	for id, study := range studies {
		title := id
		if study.Title != nil && *study.Title != "" {
			title = *study.Title
		}
		out = append(out, domain.CaseSummary{ID: id, Title: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CaseExists reports whether a case study with id exists
func (s *ContentService) CaseExists(ctx context.Context, id string) (bool, error) {
	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return false, err
	}
	_, ok := snapshot.Content.Global.CaseStudies[id]
	return ok, nil
}

// GetCase returns the stored case study as a draft
func (s *ContentService) GetCase(ctx context.Context, id string) (domain.CaseDraft, error) {
	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return domain.CaseDraft{}, err
	}
	study, ok := snapshot.Content.Global.CaseStudies[id]
	if !ok {
		return domain.CaseDraft{}, fmt.Errorf("%q: %w", id, domain.ErrCaseNotFound)
	}
	detail := snapshot.Content.Global.CaseDetails[id]
	return domain.DraftFromRecords(id, study, detail), nil
}

// SaveCase writes the draft into case_studies and case_details after backing up the current document
func (s *ContentService) SaveCase(ctx context.Context, draft domain.CaseDraft, mode SaveMode) error {
	if !IsValidCaseID(draft.ID) {
		return domain.ErrInvalidCaseID
	}

	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return err
	}
	doc := snapshot.Content

	_, exists := doc.Global.CaseStudies[draft.ID]
	switch {
	case mode == SaveInsert && exists:
		return fmt.Errorf("%q: %w", draft.ID, domain.ErrDuplicateCaseID)
	case mode == SaveReplace && !exists:
		return fmt.Errorf("%q: %w", draft.ID, domain.ErrCaseNotFound)
	}

	if _, err := s.backup(ctx, doc); err != nil {
		return err
	}

	study, detail := draft.Split()
	doc.Global.CaseStudies[draft.ID] = study
	doc.Global.CaseDetails[draft.ID] = detail

	if err := s.store.UpdateContent(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("Case study saved",
		zap.String("case_id", draft.ID),
		zap.Bool("replace", mode == SaveReplace),
	)
	return nil
}

// DeleteCase removes a case study from both maps after backing up the current document
func (s *ContentService) DeleteCase(ctx context.Context, id string) error {
	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return err
	}
	doc := snapshot.Content

	if _, ok := doc.Global.CaseStudies[id]; !ok {
		return fmt.Errorf("%q: %w", id, domain.ErrCaseNotFound)
	}

	if _, err := s.backup(ctx, doc); err != nil {
		return err
	}

	delete(doc.Global.CaseStudies, id)
	delete(doc.Global.CaseDetails, id)

	if err := s.store.UpdateContent(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("Case study deleted", zap.String("case_id", id))
	return nil
}

// Stats returns document statistics
func (s *ContentService) Stats(ctx context.Context) (*ContentStats, error) {
	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return nil, err
	}
	return &ContentStats{
		FileSize:     snapshot.Stats.FileSize,
		LastModified: snapshot.Stats.LastModified,
		CaseStudies:  len(snapshot.Content.Global.CaseStudies),
		Profiles:     len(snapshot.Content.Profiles),
		FetchedAt:    snapshot.Timestamp,
	}, nil
}

type profileMeta struct {
	Company string `json:"company"`
	Name    string `json:"name"`
	Meta    struct {
		Company string `json:"company"`
	} `json:"meta"`
}

// ResolveCompany returns the company of the profile keyed by code, or UnknownCompany
func (s *ContentService) ResolveCompany(ctx context.Context, code string) (string, error) {
	snapshot, err := s.store.GetContent(ctx)
	if err != nil {
		return UnknownCompany, err
	}

	raw, ok := snapshot.Content.Profiles[code]
	if !ok {
		return UnknownCompany, nil
	}

	var meta profileMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		s.logger.Warn("Failed to decode profile", zap.String("code", code), zap.Error(err))
		return UnknownCompany, nil
	}
	for _, name := range []string{meta.Company, meta.Meta.Company, meta.Name} {
		if name != "" {
			return name, nil
		}
	}
	return UnknownCompany, nil
}

func (s *ContentService) backup(ctx context.Context, doc domain.Document) (*domain.Backup, error) {
	return createBackup(ctx, s.backups, doc, s.now(), s.logger)
}

// BackupFilename names a snapshot taken at t
func BackupFilename(t time.Time) string {
	return "content_backup_" + t.UTC().Format("2006-01-02T15-04-05.000") + ".json"
}

func createBackup(ctx context.Context, repo repository.BackupRepository, doc domain.Document, now time.Time, logger *zap.Logger) (*domain.Backup, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	b, err := repo.CreateBackup(ctx, BackupFilename(now), data)
	if err != nil {
		return nil, domain.Upstream("backup", "create", err)
	}

	logger.Info("Backup created", zap.String("filename", b.Filename), zap.Int("size", b.Size))
	return b, nil
}
