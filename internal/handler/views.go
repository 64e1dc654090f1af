package handler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"contentbot/internal/callback"
	"contentbot/internal/domain"
	"contentbot/internal/format"
	"contentbot/internal/menu"
	"contentbot/internal/monitor"
	"contentbot/internal/service"
)

const (
	pageVisits    = "visits"
	visitsPerPage = 5
	visitsWindow  = 24 * time.Hour

	maxDiffLines = 25
)

func casesView(cases []domain.CaseSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Case studies* (%d)\n\n", len(cases))
	if len(cases) == 0 {
		b.WriteString("No case studies yet.")
		return b.String()
	}
	for _, c := range cases {
		b.WriteString("• " + format.Code(c.ID) + " " + format.Escape(c.Title) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func statsView(s *service.ContentStats, backups int) string {
	var b strings.Builder
	b.WriteString("📈 *Content statistics*\n\n")
	fmt.Fprintf(&b, "Case studies: %d\n", s.CaseStudies)
	fmt.Fprintf(&b, "Profiles: %d\n", s.Profiles)
	b.WriteString("File size: " + format.Bytes(s.FileSize) + "\n")
	b.WriteString("Last modified: " + format.Escape(format.Timestamp(s.LastModified)) + "\n")
	if backups >= 0 {
		fmt.Fprintf(&b, "Backups: %d\n", backups)
	}
	return strings.TrimRight(b.String(), "\n")
}

func monitorButtons(running bool) []menu.Button {
	toggle := menu.Button{Text: "▶️ Start", Data: callback.ActData(menu.CategoryAnalytics, menu.ActionStart)}
	if running {
		toggle = menu.Button{Text: "⏹ Stop", Data: callback.ActData(menu.CategoryAnalytics, menu.ActionStop)}
	}
	return []menu.Button{
		toggle,
		{Text: "🔄 Check now", Data: callback.ActData(menu.CategoryAnalytics, menu.ActionCheck)},
	}
}

func monitorStatusView(s monitor.Status) string {
	var b strings.Builder
	b.WriteString("📡 *Visit monitor*\n\n")
	state := "🔴 stopped"
	if s.Running() {
		state = "🟢 running"
	}
	b.WriteString("State: " + state + "\n")
	b.WriteString("Interval: " + s.Interval.String() + "\n")
	b.WriteString("Last check: " + format.Escape(format.Timestamp(s.LastCheck)) + "\n")
	b.WriteString("Last successful check: " + format.Escape(format.Timestamp(s.LastSuccessfulCheck)) + "\n")
	fmt.Fprintf(&b, "Notifications sent: %d\n", s.Notified)
	fmt.Fprintf(&b, "Remembered visits: %d\n", s.Remembered)
	if s.Checking {
		b.WriteString("A check is running now.\n")
	}
	if s.ErrorCount > 0 {
		fmt.Fprintf(&b, "\n%s Failed checks in a row: %d\n", format.EmojiWarning, s.ErrorCount)
	}
	if s.LastError != "" {
		b.WriteString("Last error: " + format.Escape(s.LastError) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func checkResultView(r monitor.CheckResult) string {
	var b strings.Builder
	b.WriteString("🔄 *Check finished*\n\n")
	fmt.Fprintf(&b, "Fetched: %d\n", r.Fetched)
	fmt.Fprintf(&b, "New: %d\n", r.New)
	fmt.Fprintf(&b, "Notified: %d (anonymous %d)\n", r.Notified, r.Anonymous)
	if r.Dropped > 0 {
		fmt.Fprintf(&b, "Dropped without pages: %d\n", r.Dropped)
	}
	if r.Failed > 0 {
		fmt.Fprintf(&b, "%s Failed to notify: %d\n", format.EmojiWarning, r.Failed)
	}
	return strings.TrimRight(b.String(), "\n")
}

func siteInfoView(info *domain.SiteInfo) string {
	var b strings.Builder
	b.WriteString(format.EmojiSuccess + " *Analytics connection works*\n\n")
	b.WriteString("Site: " + format.Escape(info.Name) + " (" + format.Escape(info.ID) + ")\n")
	if info.MainURL != "" {
		b.WriteString("URL: " + format.Escape(info.MainURL) + "\n")
	}
	if info.Timezone != "" {
		b.WriteString("Timezone: " + format.Escape(info.Timezone) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// visitsView renders one page of visits, newest first. page is clamped to the valid range.
func visitsView(visits []domain.Visit, page int) (string, []menu.Button) {
	sorted := append([]domain.Visit(nil), visits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ServerTimestamp > sorted[j].ServerTimestamp
	})

	pages := (len(sorted) + visitsPerPage - 1) / visitsPerPage
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 *Visits in the last 24h* (%d)\n", len(sorted))
	if len(sorted) == 0 {
		b.WriteString("\nNo visits.")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Page %d/%d\n", page, pages)

	start := (page - 1) * visitsPerPage
	end := start + visitsPerPage
	if end > len(sorted) {
		end = len(sorted)
	}
	for _, v := range sorted[start:end] {
		b.WriteString("\n" + visitLine(v))
	}

	var buttons []menu.Button
	if page > 1 {
		buttons = append(buttons, menu.Button{Text: "⬅️ Prev", Data: callback.PageData(pageVisits, page-1)})
	}
	if page < pages {
		buttons = append(buttons, menu.Button{Text: "Next ➡️", Data: callback.PageData(pageVisits, page+1)})
	}
	return b.String(), buttons
}

func visitLine(v domain.Visit) string {
	who := "anonymous"
	if code, _, ok := monitor.ExtractAccessCode(v); ok {
		who = format.Code(code)
	}
	where := strings.Trim(v.City+", "+v.Country, ", ")
	if where == "" {
		where = "unknown"
	}
	return fmt.Sprintf("🕒 %s · %s · %s · %d pages",
		format.Escape(v.Time().Format("Jan 2 15:04")),
		who,
		format.Escape(where),
		len(v.Pages()),
	)
}

type systemStatus struct {
	Uptime          time.Duration
	Users           int
	ActiveWorkflows int
	// Backups is negative when the count is unavailable
	Backups int
	Monitor *monitor.Status
}

func systemStatusView(s systemStatus) string {
	var b strings.Builder
	b.WriteString("💚 *Bot status*\n\n")
	b.WriteString("Uptime: " + s.Uptime.Truncate(time.Second).String() + "\n")
	fmt.Fprintf(&b, "Tracked users: %d\n", s.Users)
	fmt.Fprintf(&b, "Active workflows: %d\n", s.ActiveWorkflows)
	if s.Backups >= 0 {
		fmt.Fprintf(&b, "Backups: %d\n", s.Backups)
	} else {
		b.WriteString("Backups: unavailable\n")
	}
	switch {
	case s.Monitor == nil:
		b.WriteString("Visit monitor: not configured\n")
	case s.Monitor.Running():
		b.WriteString("Visit monitor: running\n")
	default:
		b.WriteString("Visit monitor: stopped\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func backupsView(backups []domain.Backup) string {
	var b strings.Builder
	b.WriteString("🗂 *Backups* (newest first)\n\n")
	if len(backups) == 0 {
		b.WriteString("No backups yet.")
		return b.String()
	}
	for i, bk := range backups {
		fmt.Fprintf(&b, "%d. %s · %s\n", i+1, format.Code(bk.Filename), format.Bytes(int64(bk.Size)))
	}
	b.WriteString("\nRestore one with /rollback <number>.")
	return b.String()
}

func diffView(changes []domain.Change, latest *domain.Backup) string {
	var b strings.Builder
	b.WriteString("🔍 *Changes since* " + format.Code(latest.Filename) + "\n\n")
	if len(changes) == 0 {
		b.WriteString("No changes.")
		return b.String()
	}

	symbols := map[domain.ChangeType]string{
		domain.ChangeAdded:   "➕",
		domain.ChangeRemoved: "➖",
		domain.ChangeChanged: "✏️",
	}
	for i, c := range changes {
		if i == maxDiffLines {
			fmt.Fprintf(&b, "… and %d more\n", len(changes)-maxDiffLines)
			break
		}
		b.WriteString(symbols[c.Type] + " " + format.Code(c.Path) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func commandsView() string {
	lines := []string{
		"/start - main menu",
		"/addcase - create a case study",
		"/editcase <id> - edit a case study",
		"/deletecase <id> - delete a case study",
		"/preview <id> - preview a case study",
		"/list - list case studies",
		"/backups - list backups",
		"/rollback <n> - restore backup n",
		"/diff - changes since the latest backup",
		"/status - bot status",
		"/monitor start|stop|status - visit monitor",
		"/visits - recent visits",
		"/cancel - cancel the current workflow",
	}
	return "⌨️ *Commands*\n\n" + format.Escape(strings.Join(lines, "\n")) +
		"\n\nIn the add wizard send " + format.Code("/skip") + " to leave a field empty; " +
		"in the edit wizard send " + format.Code("/keep") + " to keep its value."
}

func aboutView() string {
	return "ℹ️ *About*\n\n" +
		format.Escape("Remote console for the portfolio content.json. "+
			"Every change is backed up first and can be rolled back. "+
			"The visit monitor reports new visits with their access code.")
}
