package menu

import (
	"contentbot/internal/callback"
	"contentbot/internal/domain"
	"contentbot/internal/state"
)

// Category keys
const (
	CategoryContent   = "content"
	CategoryAnalytics = "analytics"
	CategorySystem    = "system"
	CategoryHelp      = "help"
	CategoryWorkflow  = "workflow"
)

// Action keys
const (
	ActionList     = "list"
	ActionAdd      = "add"
	ActionEdit     = "edit"
	ActionDelete   = "delete"
	ActionPreview  = "preview"
	ActionStats    = "stats"
	ActionStatus   = "status"
	ActionStart    = "start"
	ActionStop     = "stop"
	ActionTest     = "test"
	ActionVisits   = "visits"
	ActionCheck    = "check"
	ActionBackups  = "backups"
	ActionRollback = "rollback"
	ActionDiff     = "diff"
	ActionCommands = "commands"
	ActionAbout    = "about"
	ActionCancel   = "cancel"
	ActionSkip     = "skip"
)

// Action is a button inside a category menu
type Action struct {
	Key   string
	Label string
	// Confirm describes the action on a confirmation menu
	Confirm string
}

// Category is one of the four top-level menus
type Category struct {
	Key         string
	Title       string
	Description string
	State       domain.MenuState
	Actions     []Action
}

var categories = []Category{
	{
		Key:         CategoryContent,
		Title:       state.TitleContent,
		Description: "Manage case studies stored in content.json.",
		State:       domain.MenuContent,
		Actions: []Action{
			{Key: ActionList, Label: "📋 List", Confirm: "list all case studies"},
			{Key: ActionAdd, Label: "➕ Add", Confirm: "start creating a new case study"},
			{Key: ActionEdit, Label: "✏️ Edit", Confirm: "edit an existing case study"},
			{Key: ActionDelete, Label: "🗑 Delete", Confirm: "delete a case study"},
			{Key: ActionPreview, Label: "👁 Preview", Confirm: "preview a case study"},
			{Key: ActionStats, Label: "📈 Stats", Confirm: "show content statistics"},
		},
	},
	{
		Key:         CategoryAnalytics,
		Title:       state.TitleAnalytics,
		Description: "Visit notifications from the analytics API.",
		State:       domain.MenuAnalytics,
		Actions: []Action{
			{Key: ActionStatus, Label: "📡 Status", Confirm: "show monitor status"},
			{Key: ActionStart, Label: "▶️ Start", Confirm: "start the visit monitor"},
			{Key: ActionStop, Label: "⏹ Stop", Confirm: "stop the visit monitor"},
			{Key: ActionVisits, Label: "👥 Visits", Confirm: "list recent visits"},
			{Key: ActionCheck, Label: "🔄 Check now", Confirm: "check for new visits now"},
			{Key: ActionTest, Label: "🔌 Test", Confirm: "test the analytics connection"},
		},
	},
	{
		Key:         CategorySystem,
		Title:       state.TitleSystem,
		Description: "Backups, rollback and bot health.",
		State:       domain.MenuSystem,
		Actions: []Action{
			{Key: ActionStatus, Label: "💚 Status", Confirm: "show bot status"},
			{Key: ActionBackups, Label: "🗂 Backups", Confirm: "list backups"},
			{Key: ActionRollback, Label: "⏪ Rollback", Confirm: "roll content back to a backup"},
			{Key: ActionDiff, Label: "🔍 Diff", Confirm: "compare content with the latest backup"},
		},
	},
	{
		Key:         CategoryHelp,
		Title:       state.TitleHelp,
		Description: "How to use this console.",
		State:       domain.MenuHelp,
		Actions: []Action{
			{Key: ActionCommands, Label: "⌨️ Commands", Confirm: "show commands"},
			{Key: ActionAbout, Label: "ℹ️ About", Confirm: "show information about the bot"},
		},
	},
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Key] = c
	}
	return m
}()

// LookupCategory finds a category by key
func LookupCategory(key string) (Category, bool) {
	c, ok := categoryIndex[key]
	return c, ok
}

// LookupAction finds an action of a category
func LookupAction(category, action string) (Action, bool) {
	c, ok := categoryIndex[category]
	if !ok {
		return Action{}, false
	}
	for _, a := range c.Actions {
		if a.Key == action {
			return a, true
		}
	}
	return Action{}, false
}

// CategoryForTarget maps a nav target onto its category key
func CategoryForTarget(target string) (Category, bool) {
	switch target {
	case callback.TargetContent, callback.TargetAnalytics, callback.TargetSystem, callback.TargetHelp:
		return LookupCategory(target)
	}
	return Category{}, false
}

// CategoryForState maps a menu state onto its category
func CategoryForState(st domain.MenuState) (Category, bool) {
	for _, c := range categories {
		if c.State == st {
			return c, true
		}
	}
	return Category{}, false
}
