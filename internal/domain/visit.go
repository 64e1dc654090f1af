package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Visit is a single site visit as reported by the analytics API
type Visit struct {
	ID               VisitID                   `json:"idVisit"`
	ServerTimestamp  int64                     `json:"serverTimestamp"`
	Country          string                    `json:"country"`
	City             string                    `json:"city"`
	DeviceType       string                    `json:"deviceType"`
	Browser          string                    `json:"browserName"`
	OperatingSystem  string                    `json:"operatingSystemName"`
	Referrer         string                    `json:"referrerName"`
	UserID           string                    `json:"userId"`
	URL              string                    `json:"url"`
	Dimension1       string                    `json:"dimension1"`
	CustomDimension1 string                    `json:"customDimension1"`
	CustomDimensions json.RawMessage           `json:"customDimensions"`
	CustomVariables  map[string]CustomVariable `json:"customVariables"`
	Actions          []VisitAction             `json:"actionDetails"`
}

// CustomVariable is one slot of the analytics custom variables map
type CustomVariable map[string]string

// VisitAction is a page view or event recorded during a visit
type VisitAction struct {
	Type          string `json:"type"`
	URL           string `json:"url"`
	PageTitle     string `json:"pageTitle"`
	EventCategory string `json:"eventCategory"`
	EventAction   string `json:"eventAction"`
	EventName     string `json:"eventName"`
}

// Time returns the server timestamp of the visit
func (v Visit) Time() time.Time {
	return time.Unix(v.ServerTimestamp, 0).UTC()
}

// Pages returns labels of the pages viewed during the visit
func (v Visit) Pages() []string {
	pages := make([]string, 0, len(v.Actions))
	for _, a := range v.Actions {
		if a.Type != "action" {
			continue
		}
		label := a.PageTitle
		if label == "" {
			label = a.URL
		}
		if label != "" {
			pages = append(pages, label)
		}
	}
	return pages
}

// SiteInfo is returned by the analytics connection test
type SiteInfo struct {
	ID       string `json:"idsite"`
	Name     string `json:"name"`
	MainURL  string `json:"main_url"`
	Timezone string `json:"timezone"`
}

// VisitID accepts both numeric and string ids from the analytics API
type VisitID string

// UnmarshalJSON decodes "123" and 123 alike
func (id *VisitID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = VisitID(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = VisitID(n.String())
	return nil
}
