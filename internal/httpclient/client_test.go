package httpclient

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestShouldRetry(t *testing.T) {
	dialErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "dial", err: dialErr, expected: true},
		{name: "wrapped dial", err: &url.Error{Op: "Get", URL: "http://x", Err: dialErr}, expected: true},
		{name: "read error", err: &net.OpError{Op: "read", Err: errors.New("reset")}, expected: false},
		{name: "plain", err: errors.New("bad"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldRetry(tt.err))
		})
	}
}

func TestRetryTransport_RetriesDialErrors(t *testing.T) {
	var calls atomic.Int32
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	client := New(Options{Base: base, MaxRetries: 2, RetryBackoff: time.Millisecond})
	resp, err := client.Get("http://example.invalid/")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryTransport_ReplaysBody(t *testing.T) {
	var bodies []string
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(data))
		if len(bodies) == 1 {
			return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	client := New(Options{Base: base, MaxRetries: 1, RetryBackoff: time.Millisecond})
	resp, err := client.Post("http://example.invalid/", "application/json", strings.NewReader(`{"a":1}`))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{`{"a":1}`, `{"a":1}`}, bodies)
}

func TestRetryTransport_DoesNotRetryOtherErrors(t *testing.T) {
	var calls atomic.Int32
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("tls: bad certificate")
	})

	client := New(Options{Base: base, MaxRetries: 3, RetryBackoff: time.Millisecond})
	_, err := client.Get("http://example.invalid/")

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
