package monitor

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"contentbot/internal/domain"
)

// Extractor tries to find the access code of a visit
type Extractor struct {
	Name    string
	Extract func(v domain.Visit) (string, bool)
}

// Extractors are tried in order until one finds a code
var Extractors = []Extractor{
	{Name: "custom_dimension", Extract: fromCustomDimension},
	{Name: "dimension", Extract: fromDimension},
	{Name: "custom_dimensions", Extract: fromCustomDimensions},
	{Name: "custom_variables", Extract: fromCustomVariables},
	{Name: "user_id", Extract: fromUserID},
	{Name: "url_query", Extract: fromURLQuery},
	{Name: "auth_event", Extract: fromAuthEvent},
}

// accessCodeParams are query parameters that carry an access code
var accessCodeParams = []string{"code", "access", "accessCode", "access_code", "ac"}

// ExtractAccessCode returns the first code found and the name of the extractor that found it
func ExtractAccessCode(v domain.Visit) (code, source string, ok bool) {
	for _, e := range Extractors {
		if code, ok := e.Extract(v); ok {
			return code, e.Name, true
		}
	}
	return "", "", false
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

func fromCustomDimension(v domain.Visit) (string, bool) {
	return nonEmpty(v.CustomDimension1)
}

func fromDimension(v domain.Visit) (string, bool) {
	return nonEmpty(v.Dimension1)
}

func fromCustomDimensions(v domain.Visit) (string, bool) {
	if len(v.CustomDimensions) == 0 {
		return "", false
	}

	var byKey map[string]any
	if err := json.Unmarshal(v.CustomDimensions, &byKey); err == nil {
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := byKey[k].(string); ok {
				if code, ok := nonEmpty(s); ok {
					return code, true
				}
			}
		}
		return "", false
	}

	var list []struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal(v.CustomDimensions, &list); err == nil {
		for _, d := range list {
			if s, ok := d.Value.(string); ok {
				if code, ok := nonEmpty(s); ok {
					return code, true
				}
			}
		}
	}
	return "", false
}

func fromCustomVariables(v domain.Visit) (string, bool) {
	slots := make([]string, 0, len(v.CustomVariables))
	for k := range v.CustomVariables {
		slots = append(slots, k)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		vars := v.CustomVariables[slot]
		for key, name := range vars {
			if !strings.HasPrefix(key, "customVariableName") || !isAccessCodeName(name) {
				continue
			}
			valueKey := "customVariableValue" + strings.TrimPrefix(key, "customVariableName")
			if code, ok := nonEmpty(vars[valueKey]); ok {
				return code, true
			}
		}
	}
	return "", false
}

func isAccessCodeName(name string) bool {
	n := strings.ToLower(strings.ReplaceAll(name, "_", ""))
	return n == "accesscode" || n == "code" || n == "access"
}

func fromUserID(v domain.Visit) (string, bool) {
	return nonEmpty(v.UserID)
}

func fromURLQuery(v domain.Visit) (string, bool) {
	urls := make([]string, 0, len(v.Actions)+1)
	urls = append(urls, v.URL)
	for _, a := range v.Actions {
		urls = append(urls, a.URL)
	}

	for _, raw := range urls {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		q := u.Query()
		for _, p := range accessCodeParams {
			if code, ok := nonEmpty(q.Get(p)); ok {
				return code, true
			}
		}
	}
	return "", false
}

func fromAuthEvent(v domain.Visit) (string, bool) {
	for _, a := range v.Actions {
		if a.Type != "event" {
			continue
		}
		if strings.EqualFold(a.EventCategory, "Authentication") && strings.EqualFold(a.EventAction, "AccessCode") {
			if code, ok := nonEmpty(a.EventName); ok {
				return code, true
			}
		}
	}
	return "", false
}
