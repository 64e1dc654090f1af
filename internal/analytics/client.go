// Package analytics reads visits from a Matomo-compatible analytics API.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"contentbot/internal/domain"

	"go.uber.org/zap"
)

const (
	apiPath         = "/index.php"
	maxErrorBodyLen = 512

	// visitsPageSize is the filter_limit of one visits request
	visitsPageSize = 100
	// maxVisitPages caps paging when the API keeps returning full pages
	maxVisitPages = 50
	dateLayout    = "2006-01-02"
)

// Client implements repository.VisitSource
type Client struct {
	baseURL string
	siteID  string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates an analytics API client
func NewClient(baseURL, siteID, token string, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		siteID:  siteID,
		token:   token,
		http:    httpClient,
		logger:  logger,
	}
}

type apiError struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// GetRecentVisits returns visits with since < serverTimestamp <= until.
// It pages through the whole window; a zero since means one day before until.
func (c *Client) GetRecentVisits(ctx context.Context, since, until time.Time) ([]domain.Visit, error) {
	var (
		out      []domain.Visit
		seen     = make(map[domain.VisitID]struct{})
		received int
	)
	for page := 0; page < maxVisitPages; page++ {
		visits, err := c.visitsPage(ctx, since, until, page*visitsPageSize)
		if err != nil {
			return nil, err
		}
		received += len(visits)

		for _, v := range visits {
			ts := v.Time()
			if !since.IsZero() && !ts.After(since) {
				continue
			}
			if ts.After(until) {
				continue
			}
			// Visits arriving while paging shift later pages
			if v.ID != "" {
				if _, dup := seen[v.ID]; dup {
					continue
				}
				seen[v.ID] = struct{}{}
			}
			out = append(out, v)
		}

		if len(visits) < visitsPageSize {
			c.logger.Debug("Fetched visits",
				zap.Int("received", received),
				zap.Int("in_window", len(out)),
				zap.Int("pages", page+1),
				zap.Time("since", since),
				zap.Time("until", until),
			)
			return out, nil
		}
	}

	c.logger.Warn("Visit paging stopped at the page cap",
		zap.Int("pages", maxVisitPages),
		zap.Int("in_window", len(out)),
	)
	return out, nil
}

// visitsPage requests one page of visits for the calendar days covering the window
func (c *Client) visitsPage(ctx context.Context, since, until time.Time, offset int) ([]domain.Visit, error) {
	params := url.Values{}
	params.Set("method", "Live.getLastVisitsDetails")
	params.Set("period", "range")
	params.Set("date", dateRange(since, until))
	params.Set("filter_limit", strconv.Itoa(visitsPageSize))
	params.Set("filter_offset", strconv.Itoa(offset))
	if !since.IsZero() {
		params.Set("minTimestamp", strconv.FormatInt(since.Unix(), 10))
	}

	body, err := c.call(ctx, params)
	if err != nil {
		return nil, domain.Upstream("analytics", "visits", err)
	}

	var visits []domain.Visit
	if err := json.Unmarshal(body, &visits); err != nil {
		return nil, domain.Upstream("analytics", "visits", fmt.Errorf("decode visits: %w", err))
	}
	return visits, nil
}

// dateRange covers since..until in UTC padded by a day on both ends,
// so the site's timezone never cuts visits off at midnight
func dateRange(since, until time.Time) string {
	if since.IsZero() {
		since = until.AddDate(0, 0, -1)
	}
	from := since.UTC().AddDate(0, 0, -1).Format(dateLayout)
	to := until.UTC().AddDate(0, 0, 1).Format(dateLayout)
	return from + "," + to
}

// TestConnection fetches the configured site's info
func (c *Client) TestConnection(ctx context.Context) (*domain.SiteInfo, error) {
	params := url.Values{}
	params.Set("method", "SitesManager.getSiteFromId")

	body, err := c.call(ctx, params)
	if err != nil {
		return nil, domain.Upstream("analytics", "test", err)
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var sites []domain.SiteInfo
		if err := json.Unmarshal(body, &sites); err != nil {
			return nil, domain.Upstream("analytics", "test", fmt.Errorf("decode site: %w", err))
		}
		if len(sites) == 0 {
			return nil, domain.Upstream("analytics", "test", fmt.Errorf("site %s not found", c.siteID))
		}
		return &sites[0], nil
	}

	var site domain.SiteInfo
	if err := json.Unmarshal(body, &site); err != nil {
		return nil, domain.Upstream("analytics", "test", fmt.Errorf("decode site: %w", err))
	}
	return &site, nil
}

func (c *Client) call(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("module", "API")
	params.Set("format", "JSON")
	params.Set("idSite", c.siteID)

	form := url.Values{}
	if c.token != "" {
		form.Set("token_auth", c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+apiPath+"?"+params.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var apiErr apiError
		if json.Unmarshal(trimmed, &apiErr) == nil && apiErr.Result == "error" {
			return nil, fmt.Errorf("api error: %s", apiErr.Message)
		}
	}
	return body, nil
}
