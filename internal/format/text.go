package format

import (
	"fmt"
	"strings"
	"time"
)

// Category emoji used in menus and headers
var categoryEmoji = map[string]string{
	"content":   "📝",
	"analytics": "📊",
	"system":    "⚙️",
	"help":      "❓",
	"workflow":  "🧭",
}

// Status prefixes
const (
	EmojiSuccess = "✅"
	EmojiError   = "❌"
	EmojiWarning = "⚠️"
	EmojiLoading = "⏳"
	EmojiBack    = "⬅️"
	EmojiHome    = "🏠"
	EmojiVisit   = "🔔"
)

// CategoryEmoji returns the emoji for a menu category
func CategoryEmoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return "•"
}

const progressWidth = 10

// ProgressBar renders "▓▓▓░░░░░░░ 3/10"
func ProgressBar(current, total int) string {
	if total <= 0 {
		return ""
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	filled := current * progressWidth / total
	return fmt.Sprintf("%s%s %d/%d",
		strings.Repeat("▓", filled),
		strings.Repeat("░", progressWidth-filled),
		current, total,
	)
}

// Bytes renders a byte count as B, KB or MB
func Bytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// Timestamp renders t in UTC for chat messages
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// Breadcrumbs joins titles into a trail
func Breadcrumbs(titles []string) string {
	return strings.Join(titles, " › ")
}

// List renders items as escaped bullet lines, or placeholder when empty
func List(items []string, placeholder string) string {
	if len(items) == 0 {
		return Escape(placeholder)
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(Escape(item))
	}
	return b.String()
}
