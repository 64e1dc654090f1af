// Package menu builds the console's inline menus.
//
// Every function is pure: it only turns its arguments into text and a keyboard.
package menu

import (
	"fmt"
	"strings"

	"contentbot/internal/callback"
	"contentbot/internal/domain"
	"contentbot/internal/format"

	tele "gopkg.in/telebot.v3"
)

// MaxPerRow is the number of action buttons per keyboard row
const MaxPerRow = 3

// ConfirmTitle is pushed on the navigation stack while a confirmation is shown
const ConfirmTitle = "Confirm Action"

// Button is an inline keyboard button carrying raw callback data
type Button struct {
	Text string
	Data string
}

// Menu is a rendered message with its keyboard
type Menu struct {
	Text     string
	Keyboard [][]Button
	// State and Title describe where the navigation stack should be after rendering.
	// An empty State with a Title keeps the current menu state.
	State domain.MenuState
	Title string
}

// Markup converts the keyboard into telebot markup
func (m Menu) Markup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	if len(m.Keyboard) == 0 {
		return markup
	}
	rows := make([][]tele.InlineButton, 0, len(m.Keyboard))
	for _, row := range m.Keyboard {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		rows = append(rows, r)
	}
	markup.InlineKeyboard = rows
	return markup
}

// Buttons returns all buttons in display order
func (m Menu) Buttons() []Button {
	var out []Button
	for _, row := range m.Keyboard {
		out = append(out, row...)
	}
	return out
}

// Chunk splits buttons into rows of at most n
func Chunk(buttons []Button, n int) [][]Button {
	if n <= 1 {
		n = 1
	}
	var rows [][]Button
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, append([]Button(nil), buttons[i:end]...))
	}
	return rows
}

// MainButton returns the standard "Main Menu" button
func MainButton() Button {
	return Button{Text: format.EmojiHome + " Main Menu", Data: callback.Nav(callback.TargetMain)}
}

// BackButton returns the standard "Back" button
func BackButton() Button {
	return Button{Text: format.EmojiBack + " Back", Data: callback.Nav(callback.TargetBack)}
}

// RetryButton reruns the action behind data
func RetryButton(data string) Button {
	return Button{Text: "🔄 Retry", Data: data}
}

// Main renders the root menu. A non-empty notice is shown under the welcome text.
func Main(notice string) Menu {
	var text strings.Builder
	text.WriteString(format.EmojiHome + " *Portfolio Content Console*\n\n")
	text.WriteString("Manage case studies, watch visits and keep backups.\n")
	if notice != "" {
		text.WriteString("\n" + format.EmojiWarning + " " + format.Escape(notice) + "\n")
	}
	text.WriteString("\nChoose a category:")

	buttons := make([]Button, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, Button{
			Text: format.CategoryEmoji(c.Key) + " " + c.Title,
			Data: callback.Nav(c.Key),
		})
	}

	return Menu{
		Text:     text.String(),
		Keyboard: Chunk(buttons, 2),
		State:    domain.MenuMain,
		Title:    domain.MainMenuTitle,
	}
}

// CategoryMenu renders the action list of a category
func CategoryMenu(key string, breadcrumbs []string) (Menu, error) {
	c, ok := LookupCategory(key)
	if !ok {
		return Menu{}, fmt.Errorf("%w: category %q", domain.ErrUnknownAction, key)
	}

	var text strings.Builder
	if len(breadcrumbs) > 0 {
		text.WriteString("📍 " + format.Escape(format.Breadcrumbs(breadcrumbs)) + "\n\n")
	}
	text.WriteString(format.CategoryEmoji(c.Key) + " " + format.Bold(c.Title) + "\n\n")
	text.WriteString(format.Escape(c.Description))

	buttons := make([]Button, 0, len(c.Actions))
	for _, a := range c.Actions {
		buttons = append(buttons, Button{Text: a.Label, Data: callback.ActData(c.Key, a.Key)})
	}
	rows := Chunk(buttons, MaxPerRow)
	rows = append(rows, []Button{BackButton(), MainButton()})

	return Menu{
		Text:     text.String(),
		Keyboard: rows,
		State:    c.State,
		Title:    c.Title,
	}, nil
}

// Confirmation renders a Confirm/Cancel prompt. confirmData is the callback sent on Confirm.
func Confirmation(description, confirmData string) Menu {
	text := format.EmojiWarning + " *Please confirm*\n\n" +
		"You are about to " + format.Escape(description) + ".\n\n" +
		"Any unfinished workflow will be discarded."

	return Menu{
		Text: text,
		Keyboard: [][]Button{{
			{Text: format.EmojiSuccess + " Confirm", Data: confirmData},
			{Text: format.EmojiError + " Cancel", Data: callback.Nav(callback.TargetBack)},
		}},
		Title: ConfirmTitle,
	}
}

// ConfirmAction renders the confirmation for a category action
func ConfirmAction(category, action, confirmData string) Menu {
	description := category + " " + action
	if a, ok := LookupAction(category, action); ok {
		description = a.Confirm
	}
	return Confirmation(description, confirmData)
}

// Success renders a success message; message is escaped
func Success(message string, actions []Button, atRoot bool) Menu {
	return result(format.EmojiSuccess+" "+format.Escape(message), actions, atRoot)
}

// Error renders an error message; message is escaped
func Error(message string, actions []Button, atRoot bool) Menu {
	return result(format.EmojiError+" *Error*\n\n"+format.Escape(message), actions, atRoot)
}

// Loading renders a transient progress message
func Loading(message string) Menu {
	return Menu{Text: format.EmojiLoading + " " + format.Escape(message)}
}

// Page renders preformatted Markdown with actions and standard navigation
func Page(markdown string, actions []Button, atRoot bool) Menu {
	return result(markdown, actions, atRoot)
}

// NavigationError is shown when routing a callback failed
func NavigationError() Menu {
	return Menu{
		Text: format.EmojiError + " *Navigation error*\n\nSomething went wrong. Please try again.",
		Keyboard: [][]Button{{
			RetryButton(callback.Nav(callback.TargetMain)),
		}},
		State: domain.MenuMain,
		Title: domain.MainMenuTitle,
	}
}

// NotImplemented is shown for known namespaces without a handler
func NotImplemented(what string) Menu {
	return Error("Feature not implemented: "+what, nil, true)
}

// Prompt renders a wizard step
type Prompt struct {
	Title     string
	Step      int
	Total     int
	Question  string
	Hint      string
	AllowSkip bool
	SkipLabel string
	// Current is the existing value shown by edit wizards
	Current string
}

// WizardStep renders a wizard prompt with progress, cancel and optional skip buttons
func WizardStep(p Prompt) Menu {
	var text strings.Builder
	text.WriteString(format.CategoryEmoji(CategoryWorkflow) + " " + format.Bold(p.Title) + "\n")
	if p.Total > 0 {
		text.WriteString(format.ProgressBar(p.Step, p.Total) + "\n")
	}
	text.WriteString("\n" + format.Escape(p.Question))
	if p.Current != "" {
		text.WriteString("\n\nCurrent: " + format.Escape(p.Current))
	}
	if p.Hint != "" {
		text.WriteString("\n\n💡 " + format.Escape(p.Hint))
	}

	row := []Button{{Text: format.EmojiError + " Cancel", Data: callback.ActData(CategoryWorkflow, ActionCancel)}}
	if p.AllowSkip {
		label := p.SkipLabel
		if label == "" {
			label = "⏭ Skip"
		}
		row = append(row, Button{Text: label, Data: callback.ActData(CategoryWorkflow, ActionSkip)})
	}

	return Menu{
		Text:     text.String(),
		Keyboard: [][]Button{row},
		State:    domain.MenuActiveWorkflow,
	}
}

func result(text string, actions []Button, atRoot bool) Menu {
	var rows [][]Button
	if len(actions) > 0 {
		rows = Chunk(actions, MaxPerRow)
	}
	nav := make([]Button, 0, 2)
	if !atRoot {
		nav = append(nav, BackButton())
	}
	nav = append(nav, MainButton())
	rows = append(rows, nav)

	return Menu{Text: text, Keyboard: rows}
}
