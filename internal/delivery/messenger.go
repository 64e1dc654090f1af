// Package delivery renders menus into the chat.
package delivery

import (
	"strconv"

	tele "gopkg.in/telebot.v3"
)

// Messenger is the chat transport used by the console
type Messenger interface {
	Send(chatID int64, text string, opts *tele.SendOptions) (int, error)
	Edit(chatID int64, messageID int, text string, opts *tele.SendOptions) error
	Delete(chatID int64, messageID int) error
	Respond(callbackID, text string) error
}

// TelegramMessenger implements Messenger on top of a telebot bot
type TelegramMessenger struct {
	bot *tele.Bot
}

// NewTelegramMessenger creates a messenger for bot
func NewTelegramMessenger(bot *tele.Bot) *TelegramMessenger {
	return &TelegramMessenger{bot: bot}
}

// Send sends a new message and returns its id
func (m *TelegramMessenger) Send(chatID int64, text string, opts *tele.SendOptions) (int, error) {
	var msg *tele.Message
	var err error
	if opts == nil {
		msg, err = m.bot.Send(tele.ChatID(chatID), text)
	} else {
		msg, err = m.bot.Send(tele.ChatID(chatID), text, opts)
	}
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Edit replaces the text and keyboard of an existing message
func (m *TelegramMessenger) Edit(chatID int64, messageID int, text string, opts *tele.SendOptions) error {
	stored := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	var err error
	if opts == nil {
		_, err = m.bot.Edit(stored, text)
	} else {
		_, err = m.bot.Edit(stored, text, opts)
	}
	return err
}

// Delete removes a message
func (m *TelegramMessenger) Delete(chatID int64, messageID int) error {
	return m.bot.Delete(tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID})
}

// Respond acknowledges a callback query, optionally with a toast text
func (m *TelegramMessenger) Respond(callbackID, text string) error {
	cb := &tele.Callback{ID: callbackID}
	if text == "" {
		return m.bot.Respond(cb)
	}
	return m.bot.Respond(cb, &tele.CallbackResponse{Text: text})
}
