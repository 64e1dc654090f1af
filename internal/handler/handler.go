package handler

import (
	"context"
	"strings"
	"time"

	"contentbot/internal/callback"
	"contentbot/internal/conversation"
	"contentbot/internal/delivery"
	"contentbot/internal/domain"
	"contentbot/internal/menu"
	"contentbot/internal/monitor"
	"contentbot/internal/repository"
	"contentbot/internal/service"
	"contentbot/internal/state"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// DefaultRequestTimeout bounds the upstream calls made for one update
const DefaultRequestTimeout = 60 * time.Second

// Deps are the collaborators of the handler
type Deps struct {
	Store    *state.Store
	Engine   *conversation.Engine
	Delivery *delivery.Strategy
	Content  *service.ContentService
	Versions *service.VersionService
	// Monitor and Visits are nil when the analytics API is not configured
	Monitor *monitor.Poller
	Visits  repository.VisitSource
	Tokens  *callback.Registry
	Logger  *zap.Logger
}

// Handler manages all bot interactions
type Handler struct {
	store    *state.Store
	engine   *conversation.Engine
	delivery *delivery.Strategy
	content  *service.ContentService
	versions *service.VersionService
	poller   *monitor.Poller
	visits   repository.VisitSource
	tokens   *callback.Registry
	logger   *zap.Logger

	commands map[string]commandFunc
	actions  map[string]map[string]actionFunc
	// confirmed holds the destructive actions, reachable only from a confirmation
	confirmed map[string]map[string]actionFunc

	timeout   time.Duration
	startedAt time.Time
	now       func() time.Time
}

// commandFunc handles a slash command; payload is the text after the command
type commandFunc func(ctx context.Context, req *Request, payload string) menu.Menu

// actionFunc handles a category action; extra is the optional target id
type actionFunc func(ctx context.Context, req *Request, extra string) menu.Menu

// NewHandler creates a new handler instance
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		store:     deps.Store,
		engine:    deps.Engine,
		delivery:  deps.Delivery,
		content:   deps.Content,
		versions:  deps.Versions,
		poller:    deps.Monitor,
		visits:    deps.Visits,
		tokens:    deps.Tokens,
		logger:    logger,
		timeout:   DefaultRequestTimeout,
		startedAt: time.Now(),
		now:       time.Now,
	}
	h.commands = h.commandTable()
	h.actions = h.actionTable()
	h.confirmed = h.confirmedTable()
	return h
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers(bot *tele.Bot) {
	for name := range h.commands {
		name := name
		bot.Handle("/"+name, h.wrap(func(ctx context.Context, req *Request) {
			h.runCommand(ctx, req, name, req.Payload)
		}))
	}

	// Text messages, including wizard tokens like /skip that are not registered commands
	bot.Handle(tele.OnText, h.wrap(h.handleText))

	// Callback queries (inline buttons)
	bot.Handle(tele.OnCallback, h.wrap(h.handleCallback))
}

// OnPanic renders the navigation error menu; used by the recover middleware
func (h *Handler) OnPanic(c tele.Context) error {
	req := newRequest(c)
	h.delivery.Render(req.Target, menu.NavigationError())
	return nil
}

// Commands lists the registered slash commands for the bot's command menu
func Commands() []tele.Command {
	return []tele.Command{
		{Text: "start", Description: "Open the main menu"},
		{Text: "addcase", Description: "Create a case study"},
		{Text: "editcase", Description: "Edit a case study"},
		{Text: "deletecase", Description: "Delete a case study"},
		{Text: "preview", Description: "Preview a case study"},
		{Text: "list", Description: "List case studies"},
		{Text: "backups", Description: "List backups"},
		{Text: "rollback", Description: "Restore a backup"},
		{Text: "diff", Description: "Compare content with the latest backup"},
		{Text: "status", Description: "Bot status"},
		{Text: "monitor", Description: "Visit monitor: start, stop or status"},
		{Text: "visits", Description: "Recent visits"},
		{Text: "cancel", Description: "Cancel the current workflow"},
		{Text: "help", Description: "Show help"},
	}
}

// Request is one update reduced to what the handlers need
type Request struct {
	UserID   int64
	Username string
	Text     string
	// Payload is the text after a slash command
	Payload string
	// Data is the raw callback data of a pressed button
	Data   string
	Target delivery.Target

	// retry is the callback data that reruns the current action
	retry string
}

func newRequest(c tele.Context) *Request {
	req := &Request{}
	if sender := c.Sender(); sender != nil {
		req.UserID = sender.ID
		req.Username = sender.Username
	}
	req.Target.UserID = req.UserID
	req.Target.ChatID = req.UserID
	if chat := c.Chat(); chat != nil {
		req.Target.ChatID = chat.ID
	}

	if cb := c.Callback(); cb != nil {
		req.Data = cb.Data
		req.Target.CallbackID = cb.ID
		if cb.Message != nil {
			req.Target.MessageID = cb.Message.ID
		}
		return req
	}

	req.Text = strings.TrimSpace(c.Text())
	if msg := c.Message(); msg != nil {
		req.Payload = strings.TrimSpace(msg.Payload)
	}
	return req
}

func (h *Handler) wrap(fn func(ctx context.Context, req *Request)) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		fn(ctx, newRequest(c))
		return nil
	}
}

// show moves the navigation stack to m and delivers it
func (h *Handler) show(req *Request, m menu.Menu) delivery.Result {
	h.navigate(req.UserID, m)
	res := h.delivery.Render(req.Target, m)
	if !res.Success {
		h.logger.Error("Failed to render menu",
			zap.Int64("user_id", req.UserID),
			zap.String("action", res.Action),
		)
	}
	return res
}

func (h *Handler) navigate(userID int64, m menu.Menu) {
	switch {
	case m.State == domain.MenuMain:
		h.store.ResetNavigation(userID)
	case m.Title != "":
		current := m.State
		if current == "" {
			current = h.store.GetOrInit(userID).Navigation.CurrentMenu
		}
		h.store.EnterMenu(userID, current, m.Title, 0)
	}
}

// mainMenu renders the root menu, noting a workflow that is still running
func (h *Handler) mainMenu(userID int64) menu.Menu {
	st := h.store.GetOrInit(userID)
	if st.InActiveWorkflow() {
		return menu.Main("workflow in progress: " + string(st.ActiveCommand) + ". Send /cancel to drop it.")
	}
	return menu.Main("")
}

// progress replaces the pressed menu with a loading message while a slow action runs
func (h *Handler) progress(req *Request, message string) {
	if !req.Target.FromCallback() {
		return
	}
	h.delivery.Render(req.Target, menu.Loading(message))
}

// page renders a titled result view
func (h *Handler) page(req *Request, title, markdown string, actions []menu.Button) menu.Menu {
	m := menu.Page(markdown, actions, h.store.AtRoot(req.UserID))
	m.Title = title
	return m
}

func (h *Handler) success(req *Request, message string, actions []menu.Button) menu.Menu {
	m := menu.Success(message, actions, h.store.AtRoot(req.UserID))
	m.Title = titleResult
	return m
}

// failure logs err and renders it with a way back to a safe menu
func (h *Handler) failure(req *Request, op string, err error) menu.Menu {
	kind := domain.Classify(err)
	fields := []zap.Field{zap.Int64("user_id", req.UserID), zap.String("op", op), zap.Error(err)}
	switch kind {
	case domain.KindUpstream, domain.KindInternal:
		h.logger.Error("Action failed", fields...)
	default:
		h.logger.Debug("Action rejected", fields...)
	}

	var actions []menu.Button
	if kind == domain.KindUpstream && req.retry != "" {
		actions = append(actions, menu.RetryButton(req.retry))
	}
	m := menu.Error(userMessage(err), actions, h.store.AtRoot(req.UserID))
	m.Title = titleError
	return m
}

// View titles pushed on the navigation stack
const (
	titleCases    = "Case Studies"
	titlePreview  = "Case Preview"
	titleStats    = "Content Stats"
	titleMonitor  = "Monitor"
	titleVisits   = "Recent Visits"
	titleBackups  = "Backups"
	titleDiff     = "Diff"
	titleStatus   = "Status"
	titleCommands = "Commands"
	titleAbout    = "About"
	titleResult   = "Result"
	titleError    = "Error"
)
