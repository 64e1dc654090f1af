package handler

import (
	"context"
	"strings"

	"contentbot/internal/menu"

	"go.uber.org/zap"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(ctx context.Context, req *Request) {
	out := h.engine.Handle(ctx, req.UserID, req.Text)

	if !out.Handled {
		// Unregistered commands and free text outside a workflow
		if strings.HasPrefix(req.Text, "/") {
			h.show(req, menu.Error("Unknown command. Send /help for the list.", nil, true))
			return
		}
		h.show(req, h.mainMenu(req.UserID))
		return
	}

	if out.Err != nil {
		h.logger.Debug("Workflow input not accepted",
			zap.Int64("user_id", req.UserID),
			zap.Error(out.Err),
		)
	}

	if out.Forward != "" {
		h.logger.Info("Prompt forwarded",
			zap.Int64("user_id", req.UserID),
			zap.String("command", out.Forward),
		)
		h.dispatchText(ctx, req, out.Forward)
		return
	}

	h.show(req, out.Menu)
}
