package domain

import "time"

// WorkflowKind identifies the multi-step workflow a user is in
type WorkflowKind string

const (
	WorkflowNone              WorkflowKind = ""
	WorkflowAddCase           WorkflowKind = "add_case"
	WorkflowEditCase          WorkflowKind = "edit_case"
	WorkflowEditCasePrompt    WorkflowKind = "edit_case_prompt"
	WorkflowDeleteCasePrompt  WorkflowKind = "delete_case_prompt"
	WorkflowPreviewCasePrompt WorkflowKind = "preview_case_prompt"
	WorkflowRollbackPrompt    WorkflowKind = "rollback_prompt"
)

// IsPrompt reports whether the workflow collects a single value and forwards it to a command
func (k WorkflowKind) IsPrompt() bool {
	switch k {
	case WorkflowEditCasePrompt, WorkflowDeleteCasePrompt, WorkflowPreviewCasePrompt, WorkflowRollbackPrompt:
		return true
	}
	return false
}

// StepID identifies a step inside a workflow
type StepID string

const (
	StepNone      StepID = ""
	StepCaseID    StepID = "id"
	StepTitle     StepID = "title"
	StepDesc      StepID = "desc"
	StepMetrics   StepID = "metrics"
	StepTags      StepID = "tags"
	StepChallenge StepID = "challenge"
	StepApproach  StepID = "approach"
	StepSolution  StepID = "solution"
	StepResults   StepID = "results"
	StepLearnings StepID = "learnings"
	StepInput     StepID = "input"
)

// MenuState is the navigation node a user is looking at
type MenuState string

const (
	MenuMain           MenuState = "main_menu"
	MenuContent        MenuState = "content_category"
	MenuAnalytics      MenuState = "analytics_category"
	MenuSystem         MenuState = "system_category"
	MenuHelp           MenuState = "help_category"
	MenuActiveWorkflow MenuState = "active_workflow"
)

// MainMenuTitle is the root entry of every navigation stack
const MainMenuTitle = "Main Menu"

// NavigationContext holds the menu stack of a user
type NavigationContext struct {
	CurrentMenu     MenuState
	MenuHistory     []string
	Breadcrumbs     []string
	MessageID       int
	LastAction      string
	LastInteraction time.Time
}

// UserState represents user's current interaction state
type UserState struct {
	UserID        int64
	ActiveCommand WorkflowKind
	CurrentStep   StepID
	WorkflowData  map[string]any
	StartedAt     time.Time
	Navigation    NavigationContext
}

// NewUserState returns an idle state positioned at the main menu
func NewUserState(userID int64, now time.Time) *UserState {
	return &UserState{
		UserID:       userID,
		WorkflowData: make(map[string]any),
		StartedAt:    now,
		Navigation:   NewNavigation(now),
	}
}

// NewNavigation returns a navigation context holding only the main menu
func NewNavigation(now time.Time) NavigationContext {
	return NavigationContext{
		CurrentMenu:     MenuMain,
		MenuHistory:     []string{MainMenuTitle},
		Breadcrumbs:     []string{MainMenuTitle},
		LastInteraction: now,
	}
}

// InActiveWorkflow reports whether a workflow is running
func (s *UserState) InActiveWorkflow() bool {
	return s.ActiveCommand != WorkflowNone || s.CurrentStep != StepNone
}

// Clone returns a deep copy safe to hand out of the store
func (s *UserState) Clone() *UserState {
	out := *s
	out.WorkflowData = make(map[string]any, len(s.WorkflowData))
	for k, v := range s.WorkflowData {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out.WorkflowData[k] = v
	}
	out.Navigation.MenuHistory = append([]string(nil), s.Navigation.MenuHistory...)
	out.Navigation.Breadcrumbs = append([]string(nil), s.Navigation.Breadcrumbs...)
	return &out
}
