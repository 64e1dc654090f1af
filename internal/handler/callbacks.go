package handler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"unicode"

	"contentbot/internal/callback"
	"contentbot/internal/domain"
	"contentbot/internal/menu"

	"go.uber.org/zap"
)

// cleanCallbackData trims callback data and drops non-printable runes before it
// is parsed as nav_, conf_, act_ or page_ data. Token extras (~id) pass through unchanged.
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(ctx context.Context, req *Request) {
	// Answer first so the client stops the spinner whatever happens next
	h.delivery.Ack(&req.Target)

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic while routing callback",
				zap.Int64("user_id", req.UserID),
				zap.String("data", req.Data),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			h.show(req, menu.NavigationError())
		}
	}()

	data := cleanCallbackData(req.Data)
	h.logger.Debug("Processing callback",
		zap.Int64("user_id", req.UserID),
		zap.String("data", data),
	)
	h.store.SetLastAction(req.UserID, data)
	req.retry = data

	intent, err := callback.Parse(data)
	if err != nil {
		h.logger.Warn("Unhandled callback", zap.String("data", data), zap.Error(err))
		h.show(req, menu.Error("This button is no longer supported.", nil, true))
		return
	}

	h.show(req, h.route(ctx, req, intent))
}

func (h *Handler) route(ctx context.Context, req *Request, intent callback.Intent) menu.Menu {
	switch in := intent.(type) {
	case callback.Navigate:
		return h.routeNavigate(ctx, req, in)
	case callback.Confirm:
		return h.routeConfirm(ctx, req, in)
	case callback.Act:
		return h.routeAct(ctx, req, in)
	case callback.Paginate:
		return h.routePage(ctx, req, in)
	}
	return menu.NotImplemented(intent.Namespace())
}

func (h *Handler) routeNavigate(ctx context.Context, req *Request, nav callback.Navigate) menu.Menu {
	if nav.IsCategoryAction() {
		action, extra, _ := strings.Cut(nav.Action, callback.Delimiter)
		extra, err := h.tokens.Resolve(extra)
		if err != nil {
			return h.failure(req, "navigate", err)
		}
		if h.store.IsInActiveWorkflow(req.UserID) {
			return menu.ConfirmAction(nav.Category, action, h.tokens.ConfirmData(nav.Category, action, extra))
		}
		return h.runAction(ctx, req, nav.Category, action, extra)
	}

	switch nav.Target {
	case callback.TargetMain:
		return h.mainMenu(req.UserID)
	case callback.TargetBack:
		return h.goBack(req)
	}

	c, ok := menu.CategoryForTarget(nav.Target)
	if !ok {
		return h.failure(req, "navigate", fmt.Errorf("%w: %s", domain.ErrUnknownAction, nav.Target))
	}
	return h.categoryMenu(req, c.Key, c.Title)
}

// categoryMenu renders a category with breadcrumbs that include it
func (h *Handler) categoryMenu(req *Request, key, title string) menu.Menu {
	crumbs := h.store.Breadcrumbs(req.UserID)
	if crumbs[len(crumbs)-1] != title {
		crumbs = append(crumbs, title)
	}
	m, err := menu.CategoryMenu(key, crumbs)
	if err != nil {
		return h.failure(req, "category", err)
	}
	return m
}

// goBack pops the stack until it reaches a menu that can be redrawn: a category or the root.
// Result views only exist while shown and are skipped.
func (h *Handler) goBack(req *Request) menu.Menu {
	for {
		res, ok := h.store.GoBack(req.UserID)
		if !ok || res.Title == domain.MainMenuTitle {
			return h.mainMenu(req.UserID)
		}
		if c, ok := menu.CategoryForState(res.State); ok && c.Title == res.Title {
			m, err := menu.CategoryMenu(c.Key, res.Breadcrumbs)
			if err != nil {
				return h.failure(req, "back", err)
			}
			return m
		}
	}
}

func (h *Handler) routeConfirm(ctx context.Context, req *Request, conf callback.Confirm) menu.Menu {
	if !conf.Confirmed() {
		return h.goBack(req)
	}

	extra, err := h.tokens.Resolve(conf.Extra)
	if err != nil {
		return h.failure(req, "confirm", err)
	}

	if h.store.IsInActiveWorkflow(req.UserID) {
		st := h.store.GetOrInit(req.UserID)
		h.logger.Info("Workflow discarded by confirmed action",
			zap.Int64("user_id", req.UserID),
			zap.String("workflow", string(st.ActiveCommand)),
			zap.String("action", conf.Category+"_"+conf.Action),
		)
		h.store.ClearWorkflow(req.UserID)
	} else {
		h.popConfirmation(req.UserID)
	}

	if fn, ok := h.confirmed[conf.Category][conf.Action]; ok && extra != "" {
		return fn(ctx, req, extra)
	}
	return h.runAction(ctx, req, conf.Category, conf.Action, extra)
}

func (h *Handler) popConfirmation(userID int64) {
	st, ok := h.store.Get(userID)
	if !ok {
		return
	}
	history := st.Navigation.MenuHistory
	if len(history) > 0 && history[len(history)-1] == menu.ConfirmTitle {
		h.store.GoBack(userID)
	}
}

func (h *Handler) routeAct(ctx context.Context, req *Request, act callback.Act) menu.Menu {
	if startsWorkflow(act.Category, act.Action) && h.store.IsInActiveWorkflow(req.UserID) {
		return menu.ConfirmAction(act.Category, act.Action, h.tokens.ConfirmData(act.Category, act.Action, ""))
	}
	return h.runAction(ctx, req, act.Category, act.Action, "")
}

func (h *Handler) routePage(ctx context.Context, req *Request, p callback.Paginate) menu.Menu {
	switch p.Context {
	case pageVisits:
		return h.visitsPage(ctx, req, p.Page)
	}
	return menu.NotImplemented("pagination of " + p.Context)
}

// runAction looks up category/action in the action table and runs it
func (h *Handler) runAction(ctx context.Context, req *Request, category, action, extra string) menu.Menu {
	fn, ok := h.actions[category][action]
	if !ok {
		return h.failure(req, "action", fmt.Errorf("%w: %s/%s", domain.ErrUnknownAction, category, action))
	}
	h.logger.Debug("Running action",
		zap.Int64("user_id", req.UserID),
		zap.String("category", category),
		zap.String("action", action),
		zap.String("extra", extra),
	)
	if req.retry == "" {
		req.retry = callback.ActData(category, action)
		if extra != "" {
			req.retry = h.tokens.NavActionData(category, action, extra)
		}
	}
	return fn(ctx, req, extra)
}
