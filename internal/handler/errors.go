package handler

import (
	"errors"
	"strings"

	"contentbot/internal/domain"
)

// errUsage reports a malformed command
type errUsage string

func (e errUsage) Error() string {
	return "usage: " + string(e)
}

// userMessage turns err into text for an error menu
func userMessage(err error) string {
	var upstream *domain.UpstreamError
	var usage errUsage

	switch {
	case errors.Is(err, domain.ErrMonitorDisabled):
		return "The analytics API is not configured."
	case errors.Is(err, domain.ErrCheckInProgress):
		return "A visit check is already running. Try again in a moment."
	case errors.Is(err, domain.ErrExpiredCallback):
		return "This button has expired. Open the menu again."
	case errors.As(err, &usage):
		return "Usage: " + string(usage)
	case errors.As(err, &upstream):
		return "The " + upstream.Service + " service failed (" + upstream.Op + "). Please try again later."
	}

	switch domain.Classify(err) {
	case domain.KindUserInput, domain.KindNotFound, domain.KindRouting:
		return capitalize(err.Error())
	case domain.KindTransport:
		return "Telegram request failed. Please try again."
	}
	return "Unexpected error: " + err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
