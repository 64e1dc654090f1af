package middleware

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Recover catches panics in handlers, logs them and calls onPanic if set
func Recover(logger *zap.Logger, onPanic tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				var userID int64
				if c.Sender() != nil {
					userID = c.Sender().ID
				}
				logger.Error("Panic recovered",
					zap.Any("panic", r),
					zap.Int64("user_id", userID),
					zap.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("panic: %v", r)
				if onPanic != nil {
					if herr := onPanic(c); herr != nil {
						logger.Warn("Failed to report panic to user", zap.Error(herr))
					}
				}
			}()
			return next(c)
		}
	}
}
