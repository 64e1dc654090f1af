package conversation

import "contentbot/internal/domain"

func dataFromDraft(d domain.CaseDraft) map[string]any {
	data := map[string]any{
		string(domain.StepCaseID):   d.ID,
		string(domain.StepTags):     d.Tags,
		string(domain.StepApproach): d.Approach,
		string(domain.StepResults):  d.Results,
	}
	scalars := map[domain.StepID]*string{
		domain.StepTitle:     d.Title,
		domain.StepDesc:      d.Desc,
		domain.StepMetrics:   d.Metrics,
		domain.StepChallenge: d.Challenge,
		domain.StepSolution:  d.Solution,
		domain.StepLearnings: d.Learnings,
	}
	for step, v := range scalars {
		if v == nil {
			data[string(step)] = nil
			continue
		}
		data[string(step)] = *v
	}
	return data
}

func draftFromData(data map[string]any) domain.CaseDraft {
	id, _ := data[string(domain.StepCaseID)].(string)
	return domain.CaseDraft{
		ID:        id,
		Title:     text(data, domain.StepTitle),
		Desc:      text(data, domain.StepDesc),
		Metrics:   text(data, domain.StepMetrics),
		Tags:      list(data, domain.StepTags),
		Challenge: text(data, domain.StepChallenge),
		Approach:  list(data, domain.StepApproach),
		Solution:  text(data, domain.StepSolution),
		Results:   list(data, domain.StepResults),
		Learnings: text(data, domain.StepLearnings),
	}
}

func text(data map[string]any, step domain.StepID) *string {
	s, ok := data[string(step)].(string)
	if !ok {
		return nil
	}
	return &s
}

func list(data map[string]any, step domain.StepID) []string {
	l, _ := data[string(step)].([]string)
	return l
}
