package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"contentbot/internal/domain"
	"contentbot/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, get http.HandlerFunc, post http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	if get != nil {
		r.Get(contentPath, get)
	}
	if post != nil {
		r.Post(contentPath, post)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetContent(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"content": {"acme": {"company": "Acme"}, "GLOBAL_DATA": {"case_studies": {"a": {"title": "A", "tags": []}}, "case_details": {}}},
			"stats": {"fileSize": 2048, "lastModified": "2026-01-01T00:00:00Z"},
			"timestamp": "2026-01-02T00:00:00Z"
		}`))
	}, nil)

	client := NewClient(srv.URL+"/", "secret", srv.Client(), testutil.NewTestLogger())
	snapshot, err := client.GetContent(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2048), snapshot.Stats.FileSize)
	assert.Contains(t, snapshot.Content.Profiles, "acme")
	assert.Equal(t, "A", *snapshot.Content.Global.CaseStudies["a"].Title)
}

func TestClient_GetContent_ServerError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, nil)

	client := NewClient(srv.URL, "", srv.Client(), nil)
	_, err := client.GetContent(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.KindUpstream, domain.Classify(err))
	assert.Contains(t, err.Error(), "500")
}

func TestClient_UpdateContent(t *testing.T) {
	var received map[string]json.RawMessage
	srv := newServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	doc := domain.NewDocument()
	doc.Global.CaseStudies["proj_x"] = domain.CaseStudy{Title: domain.StringPtr("Demo"), Tags: []string{}}

	client := NewClient(srv.URL, "", srv.Client(), nil)
	err := client.UpdateContent(context.Background(), doc)

	require.NoError(t, err)
	require.Contains(t, received, "content")
	assert.Contains(t, string(received["content"]), `"proj_x"`)
}

func TestClient_UpdateContent_Rejected(t *testing.T) {
	srv := newServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "invalid json"}`))
	})

	client := NewClient(srv.URL, "", srv.Client(), nil)
	err := client.UpdateContent(context.Background(), domain.NewDocument())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}
