package testutil

import (
	"time"

	"contentbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestDocument creates a document with one profile and the given case studies
func NewTestDocument(caseIDs ...string) domain.Document {
	doc := domain.NewDocument()
	doc.Profiles["acme"] = []byte(`{"company":"Acme Corp"}`)
	for _, id := range caseIDs {
		doc.Global.CaseStudies[id] = domain.CaseStudy{
			Title:   domain.StringPtr("Title " + id),
			Desc:    domain.StringPtr("Desc " + id),
			Metrics: domain.StringPtr("+10%"),
			Tags:    []string{"go", "bots"},
		}
		doc.Global.CaseDetails[id] = domain.CaseDetail{
			Challenge: domain.StringPtr("Challenge " + id),
			Approach:  []string{"plan", "build"},
			Solution:  domain.StringPtr("Solution " + id),
			Results:   []string{"faster"},
			Learnings: domain.StringPtr("Learnings " + id),
		}
	}
	return doc
}

// NewTestSnapshot wraps doc in a snapshot. Each call deep-copies doc so
// mutations by the code under test do not leak between calls.
func NewTestSnapshot(doc domain.Document) *domain.ContentSnapshot {
	clone, err := doc.Clone()
	if err != nil {
		panic(err)
	}
	return &domain.ContentSnapshot{
		Content: clone,
		Stats: domain.ContentStats{
			FileSize:     4096,
			LastModified: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

// NewTestBackup creates a backup record
func NewTestBackup(id int64, filename string, data []byte) *domain.Backup {
	return &domain.Backup{
		ID:        id,
		Filename:  filename,
		Size:      len(data),
		Data:      data,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
