package callback

import (
	"testing"

	"contentbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Intent
	}{
		{name: "nav main", input: "nav_main", expected: Navigate{Target: TargetMain}},
		{name: "nav back", input: "nav_back", expected: Navigate{Target: TargetBack}},
		{name: "nav category", input: "nav_analytics", expected: Navigate{Target: TargetAnalytics}},
		{name: "nav category action", input: "nav_content_add", expected: Navigate{Category: "content", Action: "add"}},
		{
			name:     "confirm with id",
			input:    "conf_content_delete_confirm_proj_x",
			expected: Confirm{Category: "content", Action: "delete", ConfirmType: ConfirmType, Extra: "proj_x"},
		},
		{
			name:     "confirm without id",
			input:    "conf_content_add_confirm",
			expected: Confirm{Category: "content", Action: "add", ConfirmType: ConfirmType},
		},
		{
			name:     "cancel",
			input:    "conf_system_rollback_cancel",
			expected: Confirm{Category: "system", Action: "rollback", ConfirmType: CancelType},
		},
		{name: "act", input: "act_content_list", expected: Act{Category: "content", Action: "list"}},
		{name: "page", input: "page_visits_3", expected: Paginate{Context: "visits", Page: 3}},
		{name: "surrounding whitespace", input: "  nav_main\n", expected: Navigate{Target: TargetMain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, intent)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"nav",
		"nav_unknown",
		"conf_content",
		"act_content",
		"act_content_list_extra",
		"page_visits",
		"page_visits_0",
		"page_visits_abc",
		"zzz_main",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.ErrorIs(t, err, domain.ErrUnknownCallback)
		})
	}
}

func TestBuilders_RoundTrip(t *testing.T) {
	for _, data := range []string{
		Nav(TargetMain),
		NavAction("system", "rollback"),
		ActData("analytics", "start"),
		ConfirmData("content", "edit", "long_case_id"),
		PageData("visits", 2),
	} {
		intent, err := Parse(data)
		require.NoError(t, err, data)
		assert.Equal(t, data, intent.String())
	}
}

func TestBuilders_Format(t *testing.T) {
	assert.Equal(t, "nav_main", Nav(TargetMain))
	assert.Equal(t, "act_content_list", ActData("content", "list"))
	assert.Equal(t, "conf_content_delete_confirm", ConfirmData("content", "delete", ""))
	assert.Equal(t, "page_visits_1", PageData("visits", 1))
}
