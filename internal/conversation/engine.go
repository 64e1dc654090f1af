package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contentbot/internal/callback"
	"contentbot/internal/domain"
	"contentbot/internal/menu"
	"contentbot/internal/service"
	"contentbot/internal/state"

	"go.uber.org/zap"
)

// CaseStore is the part of the content service the wizards need
type CaseStore interface {
	CaseExists(ctx context.Context, id string) (bool, error)
	GetCase(ctx context.Context, id string) (domain.CaseDraft, error)
	SaveCase(ctx context.Context, draft domain.CaseDraft, mode service.SaveMode) error
}

// Outcome is the result of feeding one message to the engine
type Outcome struct {
	// Handled is false when the user had no active workflow
	Handled bool
	Menu    menu.Menu
	// Forward is the command text a prompt workflow resolved to
	Forward string
	// Done is true once the workflow finished and its state was cleared
	Done bool
	Err  error
}

// Engine advances per-user workflows stored in the state store
type Engine struct {
	store  *state.Store
	cases  CaseStore
	tokens *callback.Registry
	logger *zap.Logger
}

// NewEngine creates a conversation engine
func NewEngine(store *state.Store, cases CaseStore, tokens *callback.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		cases:  cases,
		tokens: tokens,
		logger: logger,
	}
}

// StartAddCase begins the add-case wizard
func (e *Engine) StartAddCase(userID int64) menu.Menu {
	w := AddCase()
	e.store.StartWorkflow(userID, w.Kind, w.Steps[0].ID, nil)
	e.logger.Info("Workflow started", zap.Int64("user_id", userID), zap.String("workflow", string(w.Kind)))
	return e.stepMenu(w, 0, nil, "")
}

// StartEditCase begins the edit-case wizard prepopulated from the stored case study
func (e *Engine) StartEditCase(ctx context.Context, userID int64, id string) (menu.Menu, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return e.StartPrompt(userID, domain.WorkflowEditCasePrompt)
	}

	draft, err := e.cases.GetCase(ctx, id)
	if err != nil {
		return menu.Menu{}, err
	}

	w := EditCase()
	data := dataFromDraft(draft)
	e.store.StartWorkflow(userID, w.Kind, w.Steps[0].ID, data)
	e.logger.Info("Workflow started",
		zap.Int64("user_id", userID),
		zap.String("workflow", string(w.Kind)),
		zap.String("case_id", id),
	)
	return e.stepMenu(w, 0, data, ""), nil
}

// StartPrompt begins a single-field prompt workflow
func (e *Engine) StartPrompt(userID int64, kind domain.WorkflowKind) (menu.Menu, error) {
	p, ok := PromptFor(kind)
	if !ok {
		return menu.Menu{}, fmt.Errorf("prompt %q: %w", kind, domain.ErrUnknownAction)
	}
	e.store.StartWorkflow(userID, kind, domain.StepInput, nil)
	return promptMenu(p, ""), nil
}

// Cancel drops the user's workflow and returns the main menu
func (e *Engine) Cancel(userID int64) menu.Menu {
	st := e.store.GetOrInit(userID)
	e.store.ClearWorkflow(userID)

	notice := "Nothing to cancel."
	if st.InActiveWorkflow() {
		notice = "Workflow cancelled."
		e.logger.Info("Workflow cancelled", zap.Int64("user_id", userID), zap.String("workflow", string(st.ActiveCommand)))
	}
	return menu.Main(notice)
}

// Skip applies the skip or keep token to the current step
func (e *Engine) Skip(ctx context.Context, userID int64) Outcome {
	st, ok := e.store.Get(userID)
	if !ok {
		return Outcome{Err: domain.ErrNoWorkflowToSkip}
	}
	w, ok := WizardFor(st.ActiveCommand)
	if !ok {
		return Outcome{Err: domain.ErrNoWorkflowToSkip}
	}
	return e.Handle(ctx, userID, w.SkipToken)
}

// Handle feeds one text message to the user's active workflow
func (e *Engine) Handle(ctx context.Context, userID int64, text string) Outcome {
	st, ok := e.store.Get(userID)
	if !ok || !st.InActiveWorkflow() {
		return Outcome{}
	}

	if p, ok := PromptFor(st.ActiveCommand); ok {
		return e.handlePrompt(userID, p, text)
	}

	w, ok := WizardFor(st.ActiveCommand)
	if !ok {
		e.store.ClearWorkflow(userID)
		return Outcome{
			Handled: true,
			Menu:    menu.Error("Unknown workflow. It has been reset.", nil, true),
			Err:     fmt.Errorf("workflow %q: %w", st.ActiveCommand, domain.ErrUnknownAction),
		}
	}

	idx := w.Index(st.CurrentStep)
	if idx < 0 {
		e.store.ClearWorkflow(userID)
		return Outcome{
			Handled: true,
			Menu:    menu.Error("Unknown step. The workflow has been reset.", nil, true),
			Err:     fmt.Errorf("step %q: %w", st.CurrentStep, domain.ErrUnknownAction),
		}
	}

	return e.handleStep(ctx, userID, w, idx, st.WorkflowData, text)
}

func (e *Engine) handlePrompt(userID int64, p PromptConfig, text string) Outcome {
	input := strings.TrimSpace(text)
	if input == "" {
		return Outcome{Handled: true, Menu: promptMenu(p, "Input cannot be empty."), Err: domain.ErrEmptyInput}
	}

	e.store.ClearWorkflow(userID)
	return Outcome{Handled: true, Forward: p.CommandText(input), Done: true}
}

func (e *Engine) handleStep(ctx context.Context, userID int64, w Wizard, idx int, data map[string]any, text string) Outcome {
	step := w.Steps[idx]
	input := strings.TrimSpace(text)

	value, keep, err := e.parse(ctx, w, step, input)
	if err != nil {
		e.logger.Debug("Step input rejected",
			zap.Int64("user_id", userID),
			zap.String("step", string(step.ID)),
			zap.Error(err),
		)
		return Outcome{Handled: true, Menu: e.stepMenu(w, idx, data, errorText(err)), Err: err}
	}

	if !keep {
		data[step.Field()] = value
	}

	if idx+1 < len(w.Steps) {
		next := w.Steps[idx+1].ID
		if keep {
			e.store.Advance(userID, "", nil, next)
		} else {
			e.store.Advance(userID, step.Field(), value, next)
		}
		return Outcome{Handled: true, Menu: e.stepMenu(w, idx+1, data, "")}
	}

	return e.complete(ctx, userID, w, idx, data)
}

func (e *Engine) parse(ctx context.Context, w Wizard, step Step, input string) (any, bool, error) {
	if input == "" {
		return nil, false, domain.ErrEmptyInput
	}

	if input == w.SkipToken {
		if step.Required {
			return nil, false, errStepRequired
		}
		if w.KeepOnSkip {
			return nil, true, nil
		}
		if step.Kind == FieldList {
			return []string{}, false, nil
		}
		return nil, false, nil
	}

	if step.ID == domain.StepCaseID {
		if !service.IsValidCaseID(input) {
			return nil, false, domain.ErrInvalidCaseID
		}
		exists, err := e.cases.CaseExists(ctx, input)
		if err != nil {
			return nil, false, err
		}
		if exists {
			return nil, false, domain.ErrDuplicateCaseID
		}
		return input, false, nil
	}

	if step.Kind == FieldList {
		return service.ParseList(input, ""), false, nil
	}
	return input, false, nil
}

func (e *Engine) complete(ctx context.Context, userID int64, w Wizard, idx int, data map[string]any) Outcome {
	draft := draftFromData(data)

	mode := service.SaveInsert
	if w.KeepOnSkip {
		mode = service.SaveReplace
	}

	if err := e.cases.SaveCase(ctx, draft, mode); err != nil {
		e.logger.Error("Failed to save case study",
			zap.Int64("user_id", userID),
			zap.String("case_id", draft.ID),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrDuplicateCaseID) || errors.Is(err, domain.ErrCaseNotFound) {
			e.store.ClearWorkflow(userID)
			return Outcome{Handled: true, Done: true, Menu: menu.Error(errorText(err), nil, true), Err: err}
		}
		return Outcome{Handled: true, Menu: e.stepMenu(w, idx, data, errorText(err)), Err: err}
	}

	e.store.ClearWorkflow(userID)
	e.logger.Info("Workflow completed",
		zap.Int64("user_id", userID),
		zap.String("workflow", string(w.Kind)),
		zap.String("case_id", draft.ID),
	)

	verb := "created"
	if w.KeepOnSkip {
		verb = "updated"
	}
	actions := []menu.Button{
		{Text: "👁 Preview", Data: e.tokens.ConfirmData(menu.CategoryContent, menu.ActionPreview, draft.ID)},
		{Text: "✏️ Edit", Data: e.tokens.ConfirmData(menu.CategoryContent, menu.ActionEdit, draft.ID)},
		{Text: "➕ Add another", Data: callback.ActData(menu.CategoryContent, menu.ActionAdd)},
	}
	return Outcome{
		Handled: true,
		Done:    true,
		Menu:    menu.Success(fmt.Sprintf("Case study %q %s.", draft.ID, verb), actions, true),
	}
}

func (e *Engine) stepMenu(w Wizard, idx int, data map[string]any, problem string) menu.Menu {
	step := w.Steps[idx]
	hint := step.Hint
	if !step.Required {
		hint = strings.TrimSpace(hint + " " + w.SkipHint)
	}
	question := step.Question
	if problem != "" {
		question = problem + "\n\n" + question
	}

	var current string
	if w.KeepOnSkip {
		current = describe(data[step.Field()])
	}

	return menu.WizardStep(menu.Prompt{
		Title:     w.Title,
		Step:      idx + 1,
		Total:     len(w.Steps),
		Question:  question,
		Hint:      hint,
		AllowSkip: idx > 0 && !step.Required,
		SkipLabel: w.SkipLabel,
		Current:   current,
	})
}

func promptMenu(p PromptConfig, problem string) menu.Menu {
	question := p.Question
	if problem != "" {
		question = problem + "\n\n" + question
	}
	return menu.WizardStep(menu.Prompt{Title: p.Title, Question: question})
}

var errStepRequired = errors.New("this step cannot be skipped")

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCaseID):
		return "Invalid id. Use lowercase letters, digits and underscores only."
	case errors.Is(err, domain.ErrDuplicateCaseID):
		return "A case study with this id already exists."
	case errors.Is(err, domain.ErrEmptyInput):
		return "Input cannot be empty."
	case errors.Is(err, domain.ErrCaseNotFound):
		return "Case study not found."
	case errors.Is(err, errStepRequired):
		return "This step cannot be skipped."
	}
	return "Error: " + err.Error()
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) == 0 {
			return "(empty)"
		}
		return strings.Join(t, ", ")
	}
	return "(empty)"
}
