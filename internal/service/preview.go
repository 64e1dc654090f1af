package service

import (
	"context"
	"strings"

	"contentbot/internal/domain"
	"contentbot/internal/format"
)

// PreviewCase renders a stored case study as Markdown
func (s *ContentService) PreviewCase(ctx context.Context, id string) (string, error) {
	draft, err := s.GetCase(ctx, id)
	if err != nil {
		return "", err
	}
	return FormatCase(draft), nil
}

// FormatCase renders draft as Markdown; values outside entities are escaped
func FormatCase(d domain.CaseDraft) string {
	var b strings.Builder
	b.WriteString("👁 " + format.Bold(valueOr(d.Title, d.ID)) + "\n")
	b.WriteString(format.Code(d.ID) + "\n")

	writeScalar(&b, "Description", d.Desc)
	writeScalar(&b, "Metrics", d.Metrics)
	if len(d.Tags) > 0 {
		b.WriteString("\n*Tags:* " + format.Escape(strings.Join(d.Tags, ", ")) + "\n")
	}
	writeScalar(&b, "Challenge", d.Challenge)
	writeList(&b, "Approach", d.Approach)
	writeScalar(&b, "Solution", d.Solution)
	writeList(&b, "Results", d.Results)
	writeScalar(&b, "Learnings", d.Learnings)
	return strings.TrimRight(b.String(), "\n")
}

func writeScalar(b *strings.Builder, label string, v *string) {
	if v == nil || *v == "" {
		return
	}
	b.WriteString("\n" + format.Bold(label+":") + "\n" + format.Escape(*v) + "\n")
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + format.Bold(label+":") + "\n" + format.List(items, "") + "\n")
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
