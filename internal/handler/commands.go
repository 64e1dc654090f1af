package handler

import (
	"context"
	"strings"

	"contentbot/internal/menu"

	"go.uber.org/zap"
)

// Command names without the leading slash
const (
	cmdStart      = "start"
	cmdMenu       = "menu"
	cmdCancel     = "cancel"
	cmdHelp       = "help"
	cmdAddCase    = "addcase"
	cmdEditCase   = "editcase"
	cmdDeleteCase = "deletecase"
	cmdPreview    = "preview"
	cmdList       = "list"
	cmdBackups    = "backups"
	cmdRollback   = "rollback"
	cmdDiff       = "diff"
	cmdStatus     = "status"
	cmdMonitor    = "monitor"
	cmdVisits     = "visits"
)

func (h *Handler) commandTable() map[string]commandFunc {
	// action adapts a category action to a command taking its payload as the target
	action := func(category, name string) commandFunc {
		return func(ctx context.Context, req *Request, payload string) menu.Menu {
			return h.runAction(ctx, req, category, name, payload)
		}
	}

	return map[string]commandFunc{
		cmdStart:  h.start,
		cmdMenu:   func(_ context.Context, req *Request, _ string) menu.Menu { return h.mainMenu(req.UserID) },
		cmdCancel: func(_ context.Context, req *Request, _ string) menu.Menu { return h.engine.Cancel(req.UserID) },
		cmdHelp: func(_ context.Context, req *Request, _ string) menu.Menu {
			return h.page(req, titleCommands, commandsView(), nil)
		},
		cmdAddCase:    action(menu.CategoryContent, menu.ActionAdd),
		cmdEditCase:   action(menu.CategoryContent, menu.ActionEdit),
		cmdDeleteCase: action(menu.CategoryContent, menu.ActionDelete),
		cmdPreview:    action(menu.CategoryContent, menu.ActionPreview),
		cmdList:       action(menu.CategoryContent, menu.ActionList),
		cmdBackups:    action(menu.CategorySystem, menu.ActionBackups),
		cmdRollback:   action(menu.CategorySystem, menu.ActionRollback),
		cmdDiff:       action(menu.CategorySystem, menu.ActionDiff),
		cmdStatus:     action(menu.CategorySystem, menu.ActionStatus),
		cmdMonitor:    h.monitorCommand,
		cmdVisits:     action(menu.CategoryAnalytics, menu.ActionVisits),
	}
}

// runCommand runs a slash command and renders its menu
func (h *Handler) runCommand(ctx context.Context, req *Request, name, payload string) {
	fn, ok := h.commands[name]
	if !ok {
		h.show(req, menu.Error("Unknown command /"+name+". Send /help for the list.", nil, true))
		return
	}
	h.logger.Info("Command received",
		zap.Int64("user_id", req.UserID),
		zap.String("command", name),
	)
	h.store.SetLastAction(req.UserID, "/"+name)
	h.show(req, fn(ctx, req, payload))
}

// dispatchText runs command text such as "/deletecase proj_x"
func (h *Handler) dispatchText(ctx context.Context, req *Request, text string) {
	name, payload, _ := strings.Cut(strings.TrimSpace(text), " ")
	name = strings.TrimPrefix(name, "/")
	// Commands may be addressed as /list@botname in groups
	name, _, _ = strings.Cut(name, "@")
	h.runCommand(ctx, req, name, strings.TrimSpace(payload))
}

// start resets the user's state and shows the main menu
func (h *Handler) start(_ context.Context, req *Request, _ string) menu.Menu {
	h.logger.Info("User started bot",
		zap.Int64("user_id", req.UserID),
		zap.String("username", req.Username),
	)
	h.store.Init(req.UserID)
	return menu.Main("")
}

func (h *Handler) monitorCommand(ctx context.Context, req *Request, payload string) menu.Menu {
	sub := strings.ToLower(strings.TrimSpace(payload))
	switch sub {
	case "", menu.ActionStatus:
		return h.runAction(ctx, req, menu.CategoryAnalytics, menu.ActionStatus, "")
	case menu.ActionStart, menu.ActionStop, menu.ActionCheck, menu.ActionTest:
		return h.runAction(ctx, req, menu.CategoryAnalytics, sub, "")
	}
	return h.failure(req, "monitor", errUsage("/monitor start|stop|status|check|test"))
}
