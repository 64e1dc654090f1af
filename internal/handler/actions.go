package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"contentbot/internal/callback"
	"contentbot/internal/domain"
	"contentbot/internal/menu"
	"contentbot/internal/service"

	"go.uber.org/zap"
)

func (h *Handler) actionTable() map[string]map[string]actionFunc {
	return map[string]map[string]actionFunc{
		menu.CategoryContent: {
			menu.ActionList:    h.listCases,
			menu.ActionAdd:     h.addCase,
			menu.ActionEdit:    h.editCase,
			menu.ActionDelete:  h.deleteCase,
			menu.ActionPreview: h.previewCase,
			menu.ActionStats:   h.contentStats,
		},
		menu.CategoryAnalytics: {
			menu.ActionStatus: h.monitorStatus,
			menu.ActionStart:  h.monitorStart,
			menu.ActionStop:   h.monitorStop,
			menu.ActionVisits: func(ctx context.Context, req *Request, _ string) menu.Menu {
				return h.visitsPage(ctx, req, 1)
			},
			menu.ActionCheck: h.monitorCheck,
			menu.ActionTest:  h.analyticsTest,
		},
		menu.CategorySystem: {
			menu.ActionStatus:   h.systemStatus,
			menu.ActionBackups:  h.listBackups,
			menu.ActionRollback: h.rollback,
			menu.ActionDiff:     h.diff,
		},
		menu.CategoryHelp: {
			menu.ActionCommands: func(_ context.Context, req *Request, _ string) menu.Menu {
				return h.page(req, titleCommands, commandsView(), nil)
			},
			menu.ActionAbout: func(_ context.Context, req *Request, _ string) menu.Menu {
				return h.page(req, titleAbout, aboutView(), nil)
			},
		},
		menu.CategoryWorkflow: {
			menu.ActionCancel: func(_ context.Context, req *Request, _ string) menu.Menu {
				return h.engine.Cancel(req.UserID)
			},
			menu.ActionSkip: h.skipStep,
		},
	}
}

func (h *Handler) confirmedTable() map[string]map[string]actionFunc {
	return map[string]map[string]actionFunc{
		menu.CategoryContent: {menu.ActionDelete: h.doDeleteCase},
		menu.CategorySystem:  {menu.ActionRollback: h.doRollback},
	}
}

// startsWorkflow reports whether the action replaces the user's workflow
func startsWorkflow(category, action string) bool {
	switch category {
	case menu.CategoryContent:
		switch action {
		case menu.ActionAdd, menu.ActionEdit, menu.ActionDelete, menu.ActionPreview:
			return true
		}
	case menu.CategorySystem:
		return action == menu.ActionRollback
	}
	return false
}

func (h *Handler) listCases(ctx context.Context, req *Request, _ string) menu.Menu {
	cases, err := h.content.ListCaseStudies(ctx)
	if err != nil {
		return h.failure(req, "list cases", err)
	}
	actions := []menu.Button{
		{Text: "➕ Add", Data: callback.NavAction(menu.CategoryContent, menu.ActionAdd)},
		{Text: "👁 Preview", Data: callback.NavAction(menu.CategoryContent, menu.ActionPreview)},
	}
	return h.page(req, titleCases, casesView(cases), actions)
}

func (h *Handler) addCase(_ context.Context, req *Request, _ string) menu.Menu {
	return h.engine.StartAddCase(req.UserID)
}

func (h *Handler) editCase(ctx context.Context, req *Request, id string) menu.Menu {
	m, err := h.engine.StartEditCase(ctx, req.UserID, id)
	if err != nil {
		return h.failure(req, "edit case", err)
	}
	return m
}

// deleteCase prompts for an id, or asks to confirm deleting it
func (h *Handler) deleteCase(ctx context.Context, req *Request, id string) menu.Menu {
	if id == "" {
		return h.prompt(req, domain.WorkflowDeleteCasePrompt)
	}
	exists, err := h.content.CaseExists(ctx, id)
	if err != nil {
		return h.failure(req, "delete case", err)
	}
	if !exists {
		return h.failure(req, "delete case", fmt.Errorf("%q: %w", id, domain.ErrCaseNotFound))
	}
	return menu.Confirmation("delete case study "+strconv.Quote(id), h.tokens.ConfirmData(menu.CategoryContent, menu.ActionDelete, id))
}

func (h *Handler) doDeleteCase(ctx context.Context, req *Request, id string) menu.Menu {
	h.progress(req, "Backing up and deleting "+id+"…")
	if err := h.content.DeleteCase(ctx, id); err != nil {
		return h.failure(req, "delete case", err)
	}
	h.logger.Info("Case study deleted by admin", zap.Int64("user_id", req.UserID), zap.String("case_id", id))
	return h.success(req, "Case study "+strconv.Quote(id)+" deleted. A backup was taken first.", []menu.Button{
		{Text: "📋 List", Data: callback.ActData(menu.CategoryContent, menu.ActionList)},
	})
}

func (h *Handler) previewCase(ctx context.Context, req *Request, id string) menu.Menu {
	if id == "" {
		return h.prompt(req, domain.WorkflowPreviewCasePrompt)
	}
	text, err := h.content.PreviewCase(ctx, id)
	if err != nil {
		return h.failure(req, "preview case", err)
	}
	actions := []menu.Button{
		{Text: "✏️ Edit", Data: h.tokens.ConfirmData(menu.CategoryContent, menu.ActionEdit, id)},
		{Text: "🗑 Delete", Data: h.tokens.NavActionData(menu.CategoryContent, menu.ActionDelete, id)},
	}
	return h.page(req, titlePreview, text, actions)
}

func (h *Handler) contentStats(ctx context.Context, req *Request, _ string) menu.Menu {
	stats, err := h.content.Stats(ctx)
	if err != nil {
		return h.failure(req, "content stats", err)
	}
	backups, err := h.versions.CountBackups(ctx)
	if err != nil {
		h.logger.Warn("Failed to count backups", zap.Error(err))
		backups = -1
	}
	return h.page(req, titleStats, statsView(stats, backups), nil)
}

func (h *Handler) monitorStatus(_ context.Context, req *Request, _ string) menu.Menu {
	if h.poller == nil {
		return h.failure(req, "monitor status", domain.ErrMonitorDisabled)
	}
	return h.page(req, titleMonitor, monitorStatusView(h.poller.Status()), monitorButtons(h.poller.Running()))
}

func (h *Handler) monitorStart(_ context.Context, req *Request, _ string) menu.Menu {
	if h.poller == nil {
		return h.failure(req, "monitor start", domain.ErrMonitorDisabled)
	}
	if h.poller.Running() {
		return h.success(req, "Visit monitor is already running.", monitorButtons(true))
	}
	// The poller outlives this update; shutdown stops it explicitly
	if err := h.poller.Start(context.Background()); err != nil {
		return h.failure(req, "monitor start", err)
	}
	h.logger.Info("Visit monitor started by admin", zap.Int64("user_id", req.UserID))
	return h.success(req, "Visit monitor started. Checking every "+h.poller.Status().Interval.String()+".", monitorButtons(true))
}

func (h *Handler) monitorStop(_ context.Context, req *Request, _ string) menu.Menu {
	if h.poller == nil {
		return h.failure(req, "monitor stop", domain.ErrMonitorDisabled)
	}
	if !h.poller.Running() {
		return h.success(req, "Visit monitor is already stopped.", monitorButtons(false))
	}
	if err := h.poller.Stop(); err != nil {
		return h.failure(req, "monitor stop", err)
	}
	h.logger.Info("Visit monitor stopped by admin", zap.Int64("user_id", req.UserID))
	return h.success(req, "Visit monitor stopped.", monitorButtons(false))
}

func (h *Handler) monitorCheck(ctx context.Context, req *Request, _ string) menu.Menu {
	if h.poller == nil {
		return h.failure(req, "monitor check", domain.ErrMonitorDisabled)
	}
	h.progress(req, "Checking for new visits…")
	res, err := h.poller.CheckNow(ctx)
	if err != nil {
		return h.failure(req, "monitor check", err)
	}
	return h.page(req, titleMonitor, checkResultView(res), monitorButtons(h.poller.Running()))
}

func (h *Handler) analyticsTest(ctx context.Context, req *Request, _ string) menu.Menu {
	if h.visits == nil {
		return h.failure(req, "analytics test", domain.ErrMonitorDisabled)
	}
	info, err := h.visits.TestConnection(ctx)
	if err != nil {
		return h.failure(req, "analytics test", err)
	}
	return h.page(req, titleMonitor, siteInfoView(info), nil)
}

func (h *Handler) visitsPage(ctx context.Context, req *Request, page int) menu.Menu {
	if h.visits == nil {
		return h.failure(req, "visits", domain.ErrMonitorDisabled)
	}
	until := h.now()
	visits, err := h.visits.GetRecentVisits(ctx, until.Add(-visitsWindow), until)
	if err != nil {
		return h.failure(req, "visits", err)
	}
	text, buttons := visitsView(visits, page)
	return h.page(req, titleVisits, text, buttons)
}

func (h *Handler) systemStatus(ctx context.Context, req *Request, _ string) menu.Menu {
	status := systemStatus{
		Uptime:          h.now().Sub(h.startedAt),
		Users:           h.store.Count(),
		ActiveWorkflows: h.store.ActiveWorkflows(),
		Backups:         -1,
	}
	if h.poller != nil {
		ms := h.poller.Status()
		status.Monitor = &ms
	}
	if n, err := h.versions.CountBackups(ctx); err != nil {
		h.logger.Warn("Failed to count backups", zap.Error(err))
	} else {
		status.Backups = n
	}
	return h.page(req, titleStatus, systemStatusView(status), nil)
}

func (h *Handler) listBackups(ctx context.Context, req *Request, _ string) menu.Menu {
	backups, err := h.versions.ListBackups(ctx, service.DefaultBackupListLimit)
	if err != nil {
		return h.failure(req, "list backups", err)
	}
	actions := []menu.Button{
		{Text: "⏪ Rollback", Data: callback.NavAction(menu.CategorySystem, menu.ActionRollback)},
		{Text: "🔍 Diff", Data: callback.ActData(menu.CategorySystem, menu.ActionDiff)},
	}
	return h.page(req, titleBackups, backupsView(backups), actions)
}

// rollback prompts for a version, or asks to confirm restoring it
func (h *Handler) rollback(ctx context.Context, req *Request, version string) menu.Menu {
	if version == "" {
		return h.prompt(req, domain.WorkflowRollbackPrompt)
	}
	n, err := parseVersion(version)
	if err != nil {
		return h.failure(req, "rollback", err)
	}
	target, err := h.versions.LoadBackup(ctx, n)
	if err != nil {
		return h.failure(req, "rollback", err)
	}
	description := fmt.Sprintf("restore backup #%d (%s) over the current content", n, target.Filename)
	// The confirmation carries the backup id; numbers shift when a new backup lands
	return menu.Confirmation(description, h.tokens.ConfirmData(menu.CategorySystem, menu.ActionRollback, strconv.FormatInt(target.ID, 10)))
}

func (h *Handler) doRollback(ctx context.Context, req *Request, backupID string) menu.Menu {
	id, err := strconv.ParseInt(strings.TrimSpace(backupID), 10, 64)
	if err != nil || id < 1 {
		return h.failure(req, "rollback", domain.ErrBackupNotFound)
	}
	h.progress(req, "Restoring backup…")
	restored, err := h.versions.Rollback(ctx, id)
	if err != nil {
		return h.failure(req, "rollback", err)
	}
	h.logger.Info("Content rolled back by admin",
		zap.Int64("user_id", req.UserID),
		zap.Int64("backup_id", id),
		zap.String("filename", restored.Filename),
	)
	return h.success(req, "Content restored from "+restored.Filename+". The previous content was backed up first.", []menu.Button{
		{Text: "🔍 Diff", Data: callback.ActData(menu.CategorySystem, menu.ActionDiff)},
	})
}

func (h *Handler) diff(ctx context.Context, req *Request, _ string) menu.Menu {
	changes, latest, err := h.versions.DiffLatest(ctx)
	if err != nil {
		return h.failure(req, "diff", err)
	}
	return h.page(req, titleDiff, diffView(changes, latest), nil)
}

func (h *Handler) skipStep(ctx context.Context, req *Request, _ string) menu.Menu {
	out := h.engine.Skip(ctx, req.UserID)
	if !out.Handled {
		return h.failure(req, "skip", out.Err)
	}
	return out.Menu
}

func (h *Handler) prompt(req *Request, kind domain.WorkflowKind) menu.Menu {
	m, err := h.engine.StartPrompt(req.UserID, kind)
	if err != nil {
		return h.failure(req, "prompt", err)
	}
	return m
}

func parseVersion(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, domain.ErrInvalidVersion
	}
	return n, nil
}
