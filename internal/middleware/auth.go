package middleware

import (
	"contentbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// DeniedText is shown to users who are not allowed to use the console
const DeniedText = "⛔ This bot is private."

// AdminOnly lets only the configured admin through
func AdminOnly(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender != nil && authService.IsAuthorized(sender.ID) {
				return next(c)
			}

			var userID int64
			if sender != nil {
				userID = sender.ID
			}
			logger.Warn("Unauthorized access attempt",
				zap.Int64("user_id", userID),
				zap.String("text", c.Text()),
			)

			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: DeniedText, ShowAlert: true})
			}
			if c.Chat() == nil {
				return nil
			}
			return c.Send(DeniedText)
		}
	}
}
