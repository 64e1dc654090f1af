package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const globalDataKey = "GLOBAL_DATA"

// CaseStudy is the summary card shown in the case study list
type CaseStudy struct {
	Title   *string  `json:"title"`
	Desc    *string  `json:"desc"`
	Metrics *string  `json:"metrics"`
	Tags    []string `json:"tags"`
}

// CaseDetail is the long form of a case study
type CaseDetail struct {
	Challenge *string  `json:"challenge"`
	Approach  []string `json:"approach"`
	Solution  *string  `json:"solution"`
	Results   []string `json:"results"`
	Learnings *string  `json:"learnings"`
}

// GlobalData is the shared section of the content document
type GlobalData struct {
	CaseStudies map[string]CaseStudy
	CaseDetails map[string]CaseDetail
	// Extra keeps keys this bot does not edit
	Extra map[string]json.RawMessage
}

// Document is the content.json served to the portfolio site.
// Top-level keys other than GLOBAL_DATA are personalized profiles keyed by access code.
type Document struct {
	Profiles map[string]json.RawMessage
	Global   GlobalData
}

// NewDocument returns an empty document with initialized maps
func NewDocument() Document {
	return Document{
		Profiles: make(map[string]json.RawMessage),
		Global: GlobalData{
			CaseStudies: make(map[string]CaseStudy),
			CaseDetails: make(map[string]CaseDetail),
			Extra:       make(map[string]json.RawMessage),
		},
	}
}

// UnmarshalJSON splits the document into profiles and GLOBAL_DATA
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = NewDocument()
	for key, value := range raw {
		if key != globalDataKey {
			d.Profiles[key] = value
			continue
		}
		if err := d.Global.unmarshal(value); err != nil {
			return fmt.Errorf("decode %s: %w", globalDataKey, err)
		}
	}
	return nil
}

// MarshalJSON writes profiles and GLOBAL_DATA back into one object
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Profiles)+1)
	for key, value := range d.Profiles {
		out[key] = value
	}
	global := make(map[string]any, len(d.Global.Extra)+2)
	for key, value := range d.Global.Extra {
		global[key] = value
	}
	global["case_studies"] = nonNilStudies(d.Global.CaseStudies)
	global["case_details"] = nonNilDetails(d.Global.CaseDetails)
	out[globalDataKey] = global
	return json.Marshal(out)
}

func (g *GlobalData) unmarshal(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		switch key {
		case "case_studies":
			if err := json.Unmarshal(value, &g.CaseStudies); err != nil {
				return fmt.Errorf("case_studies: %w", err)
			}
		case "case_details":
			if err := json.Unmarshal(value, &g.CaseDetails); err != nil {
				return fmt.Errorf("case_details: %w", err)
			}
		default:
			g.Extra[key] = value
		}
	}
	if g.CaseStudies == nil {
		g.CaseStudies = make(map[string]CaseStudy)
	}
	if g.CaseDetails == nil {
		g.CaseDetails = make(map[string]CaseDetail)
	}
	return nil
}

func nonNilStudies(m map[string]CaseStudy) map[string]CaseStudy {
	if m == nil {
		return map[string]CaseStudy{}
	}
	return m
}

func nonNilDetails(m map[string]CaseDetail) map[string]CaseDetail {
	if m == nil {
		return map[string]CaseDetail{}
	}
	return m
}

// Clone returns a deep copy of the document
func (d Document) Clone() (Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return Document{}, err
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return Document{}, err
	}
	return out, nil
}

// ContentStats describes the stored file
type ContentStats struct {
	FileSize     int64     `json:"fileSize"`
	LastModified time.Time `json:"lastModified"`
}

// ContentSnapshot is what the content API returns
type ContentSnapshot struct {
	Content   Document     `json:"content"`
	Stats     ContentStats `json:"stats"`
	Timestamp time.Time    `json:"timestamp"`
}

// CaseDraft is the set of fields collected by the case study wizards
type CaseDraft struct {
	ID        string
	Title     *string
	Desc      *string
	Metrics   *string
	Tags      []string
	Challenge *string
	Approach  []string
	Solution  *string
	Results   []string
	Learnings *string
}

// Split returns the two document records for the draft
func (d CaseDraft) Split() (CaseStudy, CaseDetail) {
	return CaseStudy{
			Title:   d.Title,
			Desc:    d.Desc,
			Metrics: d.Metrics,
			Tags:    nonNilList(d.Tags),
		}, CaseDetail{
			Challenge: d.Challenge,
			Approach:  nonNilList(d.Approach),
			Solution:  d.Solution,
			Results:   nonNilList(d.Results),
			Learnings: d.Learnings,
		}
}

// DraftFromRecords rebuilds a draft from stored records
func DraftFromRecords(id string, study CaseStudy, detail CaseDetail) CaseDraft {
	return CaseDraft{
		ID:        id,
		Title:     study.Title,
		Desc:      study.Desc,
		Metrics:   study.Metrics,
		Tags:      nonNilList(study.Tags),
		Challenge: detail.Challenge,
		Approach:  nonNilList(detail.Approach),
		Solution:  detail.Solution,
		Results:   nonNilList(detail.Results),
		Learnings: detail.Learnings,
	}
}

// CaseSummary is a row of the case study list
type CaseSummary struct {
	ID    string
	Title string
}

func nonNilList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
