package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// AdminNotifier pushes Markdown messages to the admin's private chat
type AdminNotifier struct {
	messenger Messenger
	adminID   int64
	logger    *zap.Logger
}

// NewAdminNotifier creates a notifier for adminID
func NewAdminNotifier(messenger Messenger, adminID int64, logger *zap.Logger) *AdminNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminNotifier{
		messenger: messenger,
		adminID:   adminID,
		logger:    logger,
	}
}

// Notify sends text to the admin
func (n *AdminNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, DisableWebPagePreview: true}
	if _, err := n.messenger.Send(n.adminID, text, opts); err != nil {
		return fmt.Errorf("notify admin: %w", err)
	}
	n.logger.Debug("Admin notified", zap.Int64("admin_id", n.adminID))
	return nil
}
