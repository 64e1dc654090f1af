// Package content talks to the portfolio site's content API.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"contentbot/internal/domain"

	"go.uber.org/zap"
)

const (
	contentPath     = "/api/content"
	maxErrorBodyLen = 512
)

// Client implements repository.ContentStore over HTTP
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a content API client
func NewClient(baseURL, token string, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
		logger:  logger,
	}
}

type updateRequest struct {
	Content domain.Document `json:"content"`
}

type updateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// GetContent fetches the current document with file stats
func (c *Client) GetContent(ctx context.Context) (*domain.ContentSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, domain.Upstream("content", "get", err)
	}

	var snapshot domain.ContentSnapshot
	if err := c.do(req, &snapshot); err != nil {
		return nil, domain.Upstream("content", "get", err)
	}
	return &snapshot, nil
}

// UpdateContent replaces the document
func (c *Client) UpdateContent(ctx context.Context, doc domain.Document) error {
	body, err := json.Marshal(updateRequest{Content: doc})
	if err != nil {
		return domain.Upstream("content", "update", fmt.Errorf("encode document: %w", err))
	}

	req, err := c.newRequest(ctx, http.MethodPost, body)
	if err != nil {
		return domain.Upstream("content", "update", err)
	}

	var resp updateResponse
	if err := c.do(req, &resp); err != nil {
		return domain.Upstream("content", "update", err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "update rejected"
		}
		return domain.Upstream("content", "update", fmt.Errorf("%s", msg))
	}

	c.logger.Info("Content updated", zap.Int("bytes", len(body)))
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+contentPath, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
