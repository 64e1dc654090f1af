package state

import "contentbot/internal/domain"

// Category display titles; they double as navigation stack entries
const (
	TitleContent   = "Content Management"
	TitleAnalytics = "Analytics"
	TitleSystem    = "System"
	TitleHelp      = "Help"
)

var titleToMenu = map[string]domain.MenuState{
	TitleContent:   domain.MenuContent,
	TitleAnalytics: domain.MenuAnalytics,
	TitleSystem:    domain.MenuSystem,
	TitleHelp:      domain.MenuHelp,
}

// MenuForTitle resolves a stack title back to its menu state
func MenuForTitle(title string) domain.MenuState {
	if menu, ok := titleToMenu[title]; ok {
		return menu
	}
	return domain.MenuMain
}

// BackResult describes where GoBack landed
type BackResult struct {
	State       domain.MenuState
	Title       string
	History     []string
	Breadcrumbs []string
}

// EnterMenu pushes title unless it is already on top of the stack.
// A zero messageID keeps the previous one.
func (s *Store) EnterMenu(userID int64, menu domain.MenuState, title string, messageID int) {
	s.Update(userID, func(st *domain.UserState) {
		nav := &st.Navigation
		if top := nav.MenuHistory[len(nav.MenuHistory)-1]; top != title {
			nav.MenuHistory = append(nav.MenuHistory, title)
			nav.Breadcrumbs = append(nav.Breadcrumbs, title)
		}
		nav.CurrentMenu = menu
		if messageID != 0 {
			nav.MessageID = messageID
		}
	})
}

// GoBack pops the top of the stack. It returns false when the user is already at the root.
func (s *Store) GoBack(userID int64) (BackResult, bool) {
	var (
		res BackResult
		ok  bool
	)
	s.Update(userID, func(st *domain.UserState) {
		nav := &st.Navigation
		if len(nav.MenuHistory) <= 1 {
			return
		}
		nav.MenuHistory = nav.MenuHistory[:len(nav.MenuHistory)-1]
		nav.Breadcrumbs = nav.Breadcrumbs[:len(nav.Breadcrumbs)-1]

		title := nav.MenuHistory[len(nav.MenuHistory)-1]
		nav.CurrentMenu = MenuForTitle(title)

		res = BackResult{
			State:       nav.CurrentMenu,
			Title:       title,
			History:     append([]string(nil), nav.MenuHistory...),
			Breadcrumbs: append([]string(nil), nav.Breadcrumbs...),
		}
		ok = true
	})
	return res, ok
}

// ResetNavigation puts the user back on the main menu with a single-entry stack
func (s *Store) ResetNavigation(userID int64) {
	s.Update(userID, func(st *domain.UserState) {
		messageID := st.Navigation.MessageID
		st.Navigation = domain.NewNavigation(s.now())
		st.Navigation.MessageID = messageID
	})
}

// IsInActiveWorkflow reports whether the user has an active command or step
func (s *Store) IsInActiveWorkflow(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	return ok && st.InActiveWorkflow()
}

// Breadcrumbs returns the user's breadcrumb trail
func (s *Store) Breadcrumbs(userID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	if !ok {
		return []string{domain.MainMenuTitle}
	}
	return append([]string(nil), st.Navigation.Breadcrumbs...)
}

// AtRoot reports whether the user's stack holds only the main menu
func (s *Store) AtRoot(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	return !ok || len(st.Navigation.MenuHistory) <= 1
}
