package analytics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"net/http/httptest"
	"testing"
	"time"

	"contentbot/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post(apiPath, handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetRecentVisits_FiltersWindow(t *testing.T) {
	since := time.Unix(1000, 0)
	until := time.Unix(2000, 0)

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Live.getLastVisitsDetails", r.URL.Query().Get("method"))
		assert.Equal(t, "3", r.URL.Query().Get("idSite"))
		assert.Equal(t, "1000", r.URL.Query().Get("minTimestamp"))
		assert.Equal(t, "range", r.URL.Query().Get("period"))
		assert.Equal(t, "0", r.URL.Query().Get("filter_offset"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "tok", r.PostForm.Get("token_auth"))

		fmt.Fprint(w, `[
			{"idVisit": 1, "serverTimestamp": 1000},
			{"idVisit": 2, "serverTimestamp": 1500, "actionDetails": [{"type": "action", "pageTitle": "Home"}]},
			{"idVisit": "3", "serverTimestamp": 2000},
			{"idVisit": 4, "serverTimestamp": 2001}
		]`)
	})

	client := NewClient(srv.URL, "3", "tok", srv.Client(), nil)
	visits, err := client.GetRecentVisits(context.Background(), since, until)

	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, domain.VisitID("2"), visits[0].ID)
	assert.Equal(t, []string{"Home"}, visits[0].Pages())
	assert.Equal(t, domain.VisitID("3"), visits[1].ID)
}

func TestClient_GetRecentVisits_APIError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": "error", "message": "token invalid"}`)
	})

	client := NewClient(srv.URL, "1", "", srv.Client(), nil)
	_, err := client.GetRecentVisits(context.Background(), time.Time{}, time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token invalid")
	assert.Equal(t, domain.KindUpstream, domain.Classify(err))
}

func TestClient_TestConnection(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object", body: `{"idsite": "1", "name": "Portfolio", "main_url": "https://example.com"}`},
		{name: "array", body: `[{"idsite": "1", "name": "Portfolio", "main_url": "https://example.com"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "SitesManager.getSiteFromId", r.URL.Query().Get("method"))
				fmt.Fprint(w, tt.body)
			})

			client := NewClient(srv.URL, "1", "", srv.Client(), nil)
			site, err := client.TestConnection(context.Background())

			require.NoError(t, err)
			assert.Equal(t, "Portfolio", site.Name)
			assert.Equal(t, "https://example.com", site.MainURL)
		})
	}
}

func TestClient_TestConnection_HTTPError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := NewClient(srv.URL, "1", "", srv.Client(), nil)
	_, err := client.TestConnection(context.Background())

	assert.Error(t, err)
}

func TestClient_GetRecentVisits_WindowAcrossMidnight(t *testing.T) {
	since := time.Date(2026, 3, 4, 23, 50, 0, 0, time.UTC)
	until := time.Date(2026, 3, 5, 0, 10, 0, 0, time.UTC)

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "range", q.Get("period"))
		assert.Equal(t, "2026-03-03,2026-03-06", q.Get("date"))

		fmt.Fprintf(w, `[
			{"idVisit": 1, "serverTimestamp": %d},
			{"idVisit": 2, "serverTimestamp": %d}
		]`, since.Add(5*time.Minute).Unix(), until.Add(-5*time.Minute).Unix())
	})

	client := NewClient(srv.URL, "1", "", srv.Client(), nil)
	visits, err := client.GetRecentVisits(context.Background(), since, until)

	require.NoError(t, err)
	assert.Len(t, visits, 2)
}

func TestClient_GetRecentVisits_PagesUntilShortPage(t *testing.T) {
	until := time.Unix(1_000_000, 0)
	var offsets []string

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("filter_offset")
		offsets = append(offsets, offset)
		start, err := strconv.Atoi(offset)
		assert.NoError(t, err)

		size := visitsPageSize
		if start >= 2*visitsPageSize {
			size = 3
		}
		items := make([]string, 0, size)
		for i := 0; i < size; i++ {
			items = append(items, fmt.Sprintf(`{"idVisit": %d, "serverTimestamp": %d}`, start+i, until.Unix()-int64(start+i)))
		}
		// The first visit of each page repeats the last one of the previous page
		if start > 0 {
			items[0] = fmt.Sprintf(`{"idVisit": %d, "serverTimestamp": %d}`, start-1, until.Unix()-int64(start-1))
		}
		fmt.Fprint(w, "["+strings.Join(items, ",")+"]")
	})

	client := NewClient(srv.URL, "1", "", srv.Client(), nil)
	visits, err := client.GetRecentVisits(context.Background(), time.Time{}, until)

	require.NoError(t, err)
	assert.Equal(t, []string{"0", "100", "200"}, offsets)
	assert.Len(t, visits, 2*visitsPageSize+3-2)
}

func TestDateRange(t *testing.T) {
	until := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-03,2026-03-06", dateRange(time.Time{}, until))
	assert.Equal(t, "2026-02-28,2026-03-06", dateRange(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), until))
}
