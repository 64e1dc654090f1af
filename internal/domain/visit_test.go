package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected VisitID
	}{
		{name: "number", input: `{"idVisit": 1234}`, expected: "1234"},
		{name: "string", input: `{"idVisit": "abc"}`, expected: "abc"},
		{name: "null", input: `{"idVisit": null}`, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Visit
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.expected, v.ID)
		})
	}
}

func TestVisit_Pages(t *testing.T) {
	v := Visit{Actions: []VisitAction{
		{Type: "action", PageTitle: "Home", URL: "https://site/"},
		{Type: "event", EventCategory: "Authentication"},
		{Type: "action", URL: "https://site/cases"},
		{Type: "action"},
	}}

	assert.Equal(t, []string{"Home", "https://site/cases"}, v.Pages())
}
