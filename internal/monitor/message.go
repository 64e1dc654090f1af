package monitor

import (
	"fmt"
	"strings"

	"contentbot/internal/domain"
	"contentbot/internal/format"
)

const maxListedPages = 10

// FormatVisit renders the notification for a visit with an access code
func FormatVisit(v domain.Visit, code, company string, pages []string) string {
	var b strings.Builder
	b.WriteString(format.EmojiVisit + " *New visit*\n\n")
	b.WriteString("🏢 Company: " + format.Escape(company) + "\n")
	b.WriteString("🔑 Access code: " + format.Code(code) + "\n")
	writeDetails(&b, v, pages)
	return b.String()
}

// FormatAnonymousVisit renders the notification for a visit without an access code
func FormatAnonymousVisit(v domain.Visit, pages []string) string {
	var b strings.Builder
	b.WriteString(format.EmojiVisit + " *New anonymous visit*\n\n")
	writeDetails(&b, v, pages)
	return b.String()
}

// FormatErrorWarning renders the admin warning sent after repeated check failures
func FormatErrorWarning(count int, err error) string {
	return fmt.Sprintf("%s *Visit monitor problems*\n\n%d checks failed in a row.\nLast error: %s",
		format.EmojiWarning, count, format.Escape(err.Error()))
}

func writeDetails(b *strings.Builder, v domain.Visit, pages []string) {
	location := joinNonEmpty(", ", v.City, v.Country)
	if location == "" {
		location = "unknown"
	}
	b.WriteString("📍 Location: " + format.Escape(location) + "\n")

	device := joinNonEmpty(" / ", v.DeviceType, v.OperatingSystem, v.Browser)
	if device != "" {
		b.WriteString("💻 Device: " + format.Escape(device) + "\n")
	}
	if v.Referrer != "" {
		b.WriteString("↪️ Referrer: " + format.Escape(v.Referrer) + "\n")
	}
	if v.ServerTimestamp > 0 {
		b.WriteString("🕒 Time: " + format.Escape(format.Timestamp(v.Time())) + "\n")
	}

	fmt.Fprintf(b, "\n📄 Pages (%d):\n", len(pages))
	for i, page := range pages {
		if i == maxListedPages {
			fmt.Fprintf(b, "… and %d more\n", len(pages)-maxListedPages)
			break
		}
		b.WriteString("• " + format.Escape(page) + "\n")
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
