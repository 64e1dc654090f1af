// Package conversation drives the case study wizards and single-field prompts.
package conversation

import (
	"strings"

	"contentbot/internal/domain"
)

// Skip tokens typed by the user instead of a value
const (
	SkipToken = "/skip"
	KeepToken = "/keep"
)

// FieldKind selects how a step parses its answer
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldList
)

// Step describes one wizard step. The position in its table is the step number.
type Step struct {
	ID       domain.StepID
	Kind     FieldKind
	Question string
	Hint     string
	Required bool
}

// Field is the WorkflowData key the step writes
func (s Step) Field() string {
	return string(s.ID)
}

// Wizard is an ordered step table plus its skip semantics
type Wizard struct {
	Kind      domain.WorkflowKind
	Title     string
	Steps     []Step
	SkipToken string
	SkipLabel string
	SkipHint  string
	// KeepOnSkip leaves the prepopulated value in place instead of clearing it
	KeepOnSkip bool
}

var caseFields = []Step{
	{ID: domain.StepTitle, Kind: FieldText, Question: "Enter the case study title."},
	{ID: domain.StepDesc, Kind: FieldText, Question: "Enter a short description."},
	{ID: domain.StepMetrics, Kind: FieldText, Question: "Enter the key metrics, for example +40% conversion."},
	{ID: domain.StepTags, Kind: FieldList, Question: "Enter tags separated by commas."},
	{ID: domain.StepChallenge, Kind: FieldText, Question: "Describe the challenge."},
	{ID: domain.StepApproach, Kind: FieldList, Question: "List the approach steps separated by commas."},
	{ID: domain.StepSolution, Kind: FieldText, Question: "Describe the solution."},
	{ID: domain.StepResults, Kind: FieldList, Question: "List the results separated by commas."},
	{ID: domain.StepLearnings, Kind: FieldText, Question: "Describe the learnings."},
}

var addCase = Wizard{
	Kind:  domain.WorkflowAddCase,
	Title: "New case study",
	Steps: append([]Step{{
		ID:       domain.StepCaseID,
		Kind:     FieldText,
		Question: "Enter a unique id for the case study.",
		Hint:     "Lowercase letters, digits and underscores, e.g. fintech_app",
		Required: true,
	}}, caseFields...),
	SkipToken: SkipToken,
	SkipLabel: "⏭ Skip",
	SkipHint:  "Send /skip to leave this field empty.",
}

var editCase = Wizard{
	Kind:       domain.WorkflowEditCase,
	Title:      "Edit case study",
	Steps:      caseFields,
	SkipToken:  KeepToken,
	SkipLabel:  "⏭ Keep",
	SkipHint:   "Send /keep to keep the current value.",
	KeepOnSkip: true,
}

// AddCase returns the add-case wizard
func AddCase() Wizard { return addCase }

// EditCase returns the edit-case wizard
func EditCase() Wizard { return editCase }

// WizardFor returns the wizard of a multi-step workflow kind
func WizardFor(kind domain.WorkflowKind) (Wizard, bool) {
	switch kind {
	case domain.WorkflowAddCase:
		return addCase, true
	case domain.WorkflowEditCase:
		return editCase, true
	}
	return Wizard{}, false
}

// Index returns the position of step id in the wizard, or -1
func (w Wizard) Index(id domain.StepID) int {
	for i, s := range w.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Next returns the step after id, or StepNone at the end
func (w Wizard) Next(id domain.StepID) domain.StepID {
	i := w.Index(id)
	if i < 0 || i+1 >= len(w.Steps) {
		return domain.StepNone
	}
	return w.Steps[i+1].ID
}

// PromptConfig describes a single-field prompt workflow
type PromptConfig struct {
	Kind     domain.WorkflowKind
	Title    string
	Question string
	Command  string
}

var prompts = map[domain.WorkflowKind]PromptConfig{
	domain.WorkflowEditCasePrompt: {
		Kind: domain.WorkflowEditCasePrompt, Title: "Edit case study",
		Question: "Send the id of the case study to edit.", Command: "/editcase",
	},
	domain.WorkflowDeleteCasePrompt: {
		Kind: domain.WorkflowDeleteCasePrompt, Title: "Delete case study",
		Question: "Send the id of the case study to delete.", Command: "/deletecase",
	},
	domain.WorkflowPreviewCasePrompt: {
		Kind: domain.WorkflowPreviewCasePrompt, Title: "Preview case study",
		Question: "Send the id of the case study to preview.", Command: "/preview",
	},
	domain.WorkflowRollbackPrompt: {
		Kind: domain.WorkflowRollbackPrompt, Title: "Rollback",
		Question: "Send the backup number to restore, 1 being the newest.", Command: "/rollback",
	},
}

// PromptFor returns the prompt workflow of kind
func PromptFor(kind domain.WorkflowKind) (PromptConfig, bool) {
	p, ok := prompts[kind]
	return p, ok
}

// CommandText synthesizes the slash command a prompt answer stands for
func (p PromptConfig) CommandText(input string) string {
	return p.Command + " " + strings.TrimSpace(input)
}
