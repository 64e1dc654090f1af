package delivery

import (
	"errors"
	"strings"

	"contentbot/internal/format"
	"contentbot/internal/menu"
	"contentbot/internal/state"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Apology is sent without formatting when nothing else could be delivered
const Apology = "Sorry, something went wrong. Send /start to open the menu again."

// Render actions
const (
	ActionEdited    = "edited"
	ActionUnchanged = "unchanged"
	ActionSent      = "sent"
	ActionFallback  = "fallback"
	ActionFailed    = "failed"
)

// Target identifies where a menu is rendered
type Target struct {
	UserID int64
	ChatID int64
	// MessageID is the message whose button was pressed, zero for text commands
	MessageID  int
	CallbackID string
	// Acked is set once the callback query has been answered
	Acked bool
}

// FromCallback reports whether the interaction came from a pressed button
func (t Target) FromCallback() bool {
	return t.CallbackID != "" && t.MessageID != 0
}

// Result describes how a menu was delivered
type Result struct {
	Success   bool
	Action    string
	MessageID int
}

// Strategy delivers menus by editing the live message first and sending a new one otherwise
type Strategy struct {
	messenger Messenger
	store     *state.Store
	logger    *zap.Logger
}

// NewStrategy creates a delivery strategy
func NewStrategy(messenger Messenger, store *state.Store, logger *zap.Logger) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{
		messenger: messenger,
		store:     store,
		logger:    logger,
	}
}

// Options returns the send options for m
func Options(m menu.Menu) *tele.SendOptions {
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	}
	if len(m.Keyboard) > 0 {
		opts.ReplyMarkup = m.Markup()
	}
	return opts
}

// Render delivers m to the target. It never panics and never returns an error;
// the result tells the caller what happened.
func (s *Strategy) Render(t Target, m menu.Menu) Result {
	opts := Options(m)
	if err := format.CheckMarkdown(m.Text); err != nil {
		s.logger.Error("Menu text is not valid Markdown, sending it plain",
			zap.Int64("user_id", t.UserID),
			zap.Error(err),
		)
		opts.ParseMode = tele.ModeDefault
	}

	if t.FromCallback() {
		err := s.messenger.Edit(t.ChatID, t.MessageID, m.Text, opts)
		switch {
		case err == nil:
			s.ack(&t)
			s.track(t.UserID, t.MessageID)
			return Result{Success: true, Action: ActionEdited, MessageID: t.MessageID}
		case IsNotModified(err):
			s.logger.Debug("Message already up to date", zap.Int64("user_id", t.UserID))
			s.ack(&t)
			s.track(t.UserID, t.MessageID)
			return Result{Success: true, Action: ActionUnchanged, MessageID: t.MessageID}
		default:
			s.logger.Warn("Failed to edit message, sending new",
				zap.Int64("user_id", t.UserID),
				zap.Int("message_id", t.MessageID),
				zap.Error(err),
			)
			s.ack(&t)
		}
	}

	id, err := s.messenger.Send(t.ChatID, m.Text, opts)
	if err == nil {
		s.track(t.UserID, id)
		return Result{Success: true, Action: ActionSent, MessageID: id}
	}
	s.logger.Warn("Failed to send message", zap.Int64("user_id", t.UserID), zap.Error(err))

	return s.apologize(t)
}

// Ack answers the callback query once
func (s *Strategy) Ack(t *Target) {
	s.ack(t)
}

func (s *Strategy) ack(t *Target) {
	if t.CallbackID == "" || t.Acked {
		return
	}
	t.Acked = true
	if err := s.messenger.Respond(t.CallbackID, ""); err != nil {
		s.logger.Debug("Failed to answer callback", zap.Int64("user_id", t.UserID), zap.Error(err))
	}
}

func (s *Strategy) apologize(t Target) (res Result) {
	res = Result{Action: ActionFailed}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while sending apology", zap.Any("panic", r))
		}
	}()

	id, err := s.messenger.Send(t.ChatID, Apology, nil)
	if err != nil {
		s.logger.Error("Failed to deliver anything", zap.Int64("user_id", t.UserID), zap.Error(err))
		return res
	}
	s.track(t.UserID, id)
	return Result{Action: ActionFallback, MessageID: id}
}

func (s *Strategy) track(userID int64, messageID int) {
	if s.store == nil {
		return
	}
	s.store.SetMessageID(userID, messageID)
}

// IsNotModified reports whether the edit was rejected because nothing changed
func IsNotModified(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, tele.ErrMessageNotModified) ||
		strings.Contains(err.Error(), "message is not modified")
}
