package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"contentbot/internal/domain"
	"contentbot/internal/format"
	"contentbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContentService_ListCaseStudies(t *testing.T) {
	store := new(testutil.MockContentStore)
	doc := testutil.NewTestDocument("beta", "alpha")
	doc.Global.CaseStudies["gamma"] = domain.CaseStudy{}
	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(doc), nil)

	service := NewContentService(store, new(testutil.MockBackupRepository), testutil.NewTestLogger())

	list, err := service.ListCaseStudies(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.CaseSummary{
		{ID: "alpha", Title: "Title alpha"},
		{ID: "beta", Title: "Title beta"},
		{ID: "gamma", Title: "gamma"},
	}, list)
}

func TestContentService_GetCase(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		expectedErr error
	}{
		{name: "existing", id: "alpha"},
		{name: "missing", id: "nope", expectedErr: domain.ErrCaseNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutil.MockContentStore)
			store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument("alpha")), nil)
			service := NewContentService(store, new(testutil.MockBackupRepository), nil)

			draft, err := service.GetCase(context.Background(), tt.id)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alpha", draft.ID)
			assert.Equal(t, "Title alpha", *draft.Title)
			assert.Equal(t, []string{"plan", "build"}, draft.Approach)
		})
	}
}

func TestContentService_SaveCase_Insert(t *testing.T) {
	store := new(testutil.MockContentStore)
	backups := new(testutil.MockBackupRepository)

	var order []string
	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument("alpha")), nil)
	backups.On("CreateBackup", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { order = append(order, "backup") }).
		Return(testutil.NewTestBackup(1, "b.json", []byte("{}")), nil)

	var saved domain.Document
	store.On("UpdateContent", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			order = append(order, "update")
			saved = args.Get(1).(domain.Document)
		}).
		Return(nil)

	service := NewContentService(store, backups, nil)
	draft := domain.CaseDraft{ID: "proj_x", Title: domain.StringPtr("Demo")}

	err := service.SaveCase(context.Background(), draft, SaveInsert)

	require.NoError(t, err)
	assert.Equal(t, []string{"backup", "update"}, order)
	assert.Contains(t, saved.Global.CaseStudies, "alpha")

	data, err := json.Marshal(saved.Global.CaseStudies["proj_x"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Demo","desc":null,"metrics":null,"tags":[]}`, string(data))
	assert.Contains(t, saved.Global.CaseDetails, "proj_x")
}

func TestContentService_SaveCase_Errors(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		mode        SaveMode
		expectedErr error
	}{
		{name: "duplicate insert", id: "alpha", mode: SaveInsert, expectedErr: domain.ErrDuplicateCaseID},
		{name: "replace missing", id: "nope", mode: SaveReplace, expectedErr: domain.ErrCaseNotFound},
		{name: "invalid id", id: "Bad-ID", mode: SaveInsert, expectedErr: domain.ErrInvalidCaseID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(testutil.MockContentStore)
			backups := new(testutil.MockBackupRepository)
			store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument("alpha")), nil)

			service := NewContentService(store, backups, nil)
			err := service.SaveCase(context.Background(), domain.CaseDraft{ID: tt.id}, tt.mode)

			assert.ErrorIs(t, err, tt.expectedErr)
			backups.AssertNotCalled(t, "CreateBackup", mock.Anything, mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything)
		})
	}
}

func TestContentService_SaveCase_BackupFailureAbortsUpdate(t *testing.T) {
	store := new(testutil.MockContentStore)
	backups := new(testutil.MockBackupRepository)
	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument()), nil)
	backups.On("CreateBackup", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	service := NewContentService(store, backups, nil)
	err := service.SaveCase(context.Background(), domain.CaseDraft{ID: "new_one"}, SaveInsert)

	require.Error(t, err)
	assert.Equal(t, domain.KindUpstream, domain.Classify(err))
	store.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything)
}

func TestContentService_DeleteCase(t *testing.T) {
	store := new(testutil.MockContentStore)
	backups := new(testutil.MockBackupRepository)
	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument("alpha", "beta")), nil)
	backups.On("CreateBackup", mock.Anything, mock.Anything, mock.Anything).Return(testutil.NewTestBackup(1, "b.json", nil), nil)
	store.On("UpdateContent", mock.Anything, mock.MatchedBy(func(doc domain.Document) bool {
		_, studyLeft := doc.Global.CaseStudies["alpha"]
		_, detailLeft := doc.Global.CaseDetails["alpha"]
		_, otherKept := doc.Global.CaseStudies["beta"]
		return !studyLeft && !detailLeft && otherKept
	})).Return(nil)

	service := NewContentService(store, backups, nil)

	require.NoError(t, service.DeleteCase(context.Background(), "alpha"))
	store.AssertExpectations(t)
	backups.AssertExpectations(t)
}

func TestContentService_DeleteCase_NotFound(t *testing.T) {
	store := new(testutil.MockContentStore)
	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument()), nil)

	service := NewContentService(store, new(testutil.MockBackupRepository), nil)

	assert.ErrorIs(t, service.DeleteCase(context.Background(), "ghost"), domain.ErrCaseNotFound)
}

func TestContentService_Stats(t *testing.T) {
	store := new(testutil.MockContentStore)
	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument("a", "b")), nil)

	stats, err := NewContentService(store, nil, nil).Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.CaseStudies)
	assert.Equal(t, 1, stats.Profiles)
	assert.Equal(t, int64(4096), stats.FileSize)
}

func TestContentService_ResolveCompany(t *testing.T) {
	doc := testutil.NewTestDocument()
	doc.Profiles["nested"] = []byte(`{"meta":{"company":"Nested Inc"}}`)
	doc.Profiles["named"] = []byte(`{"name":"Named LLC"}`)
	doc.Profiles["empty"] = []byte(`{}`)

	tests := []struct {
		code     string
		expected string
	}{
		{code: "acme", expected: "Acme Corp"},
		{code: "nested", expected: "Nested Inc"},
		{code: "named", expected: "Named LLC"},
		{code: "empty", expected: UnknownCompany},
		{code: "missing", expected: UnknownCompany},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			store := new(testutil.MockContentStore)
			store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(doc), nil)

			company, err := NewContentService(store, nil, nil).ResolveCompany(context.Background(), tt.code)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, company)
		})
	}
}

func TestContentService_PreviewCase(t *testing.T) {
	store := new(testutil.MockContentStore)
	svc := NewContentService(store, new(testutil.MockBackupRepository), testutil.NewTestLogger())

	store.On("GetContent", mock.Anything).Return(testutil.NewTestSnapshot(testutil.NewTestDocument("proj_x")), nil)

	text, err := svc.PreviewCase(context.Background(), "proj_x")
	require.NoError(t, err)
	assert.Contains(t, text, "*Title proj_x*")
	assert.Contains(t, text, "`proj_x`")
	assert.Contains(t, text, "*Approach:*\n• plan\n• build")
	assert.Contains(t, text, "*Tags:* go, bots")
	assert.NoError(t, format.CheckMarkdown(text))
}

func TestFormatCase_SkipsEmptyFields(t *testing.T) {
	text := FormatCase(domain.CaseDraft{ID: "bare", Tags: []string{}})

	assert.Contains(t, text, "*bare*")
	assert.NotContains(t, text, "Description")
	assert.NotContains(t, text, "Tags")
}

func TestFormatCase_ParsesAsLegacyMarkdown(t *testing.T) {
	tricky := "5* rating_x `code` [link"
	tests := []struct {
		name  string
		draft domain.CaseDraft
		title string
	}{
		{name: "title with asterisk", draft: domain.CaseDraft{ID: "proj_x", Title: &tricky}, title: "*5 rating_x `code` [link*"},
		{name: "id fallback with underscore", draft: domain.CaseDraft{ID: "fintech_app"}, title: "*fintech_app*"},
		{
			name: "every field",
			draft: domain.CaseDraft{
				ID: "all_fields", Title: &tricky, Desc: &tricky, Metrics: &tricky, Challenge: &tricky,
				Solution: &tricky, Learnings: &tricky,
				Tags: []string{"a_b", "c*d"}, Approach: []string{"x_y"}, Results: []string{"`z`"},
			},
			title: "*5 rating_x `code` [link*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := FormatCase(tt.draft)

			assert.Contains(t, text, tt.title)
			assert.NoError(t, format.CheckMarkdown(text))
		})
	}
}
