package callback

import (
	"fmt"
	"strings"
	"time"

	"contentbot/internal/domain"

	"github.com/google/uuid"
	"github.com/maypok86/otter"
)

const (
	tokenPrefix   = "~"
	tokenLen      = 8
	tokenCapacity = 10_000

	// DefaultTokenTTL bounds how long a shortened button stays usable
	DefaultTokenTTL = 30 * time.Minute
)

// Registry maps short tokens to identifiers too long to embed in callback data
type Registry struct {
	cache otter.Cache[string, string]
}

// NewRegistry creates a token registry whose entries expire after ttl
func NewRegistry(ttl time.Duration) (*Registry, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	cache, err := otter.MustBuilder[string, string](tokenCapacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token cache: %w", err)
	}
	return &Registry{cache: cache}, nil
}

// ConfirmData builds a confirm callback, shortening extra when the result would be too long
func (r *Registry) ConfirmData(category, action, extra string) string {
	data := ConfirmData(category, action, extra)
	if len(data) <= MaxDataLen || r == nil {
		return data
	}
	return ConfirmData(category, action, r.register(extra))
}

// NavActionData builds nav_{category}_{action}_{extra}, shortening extra the same way
func (r *Registry) NavActionData(category, action, extra string) string {
	data := NavAction(category, action+Delimiter+extra)
	if len(data) <= MaxDataLen || r == nil {
		return data
	}
	return NavAction(category, action+Delimiter+r.register(extra))
}

// Resolve turns a shortened extra back into the original value.
// Values that were never shortened are returned unchanged.
func (r *Registry) Resolve(extra string) (string, error) {
	if !strings.HasPrefix(extra, tokenPrefix) {
		return extra, nil
	}
	if r == nil {
		return "", domain.ErrExpiredCallback
	}
	value, ok := r.cache.Get(strings.TrimPrefix(extra, tokenPrefix))
	if !ok {
		return "", domain.ErrExpiredCallback
	}
	return value, nil
}

// Close releases the cache
func (r *Registry) Close() {
	if r != nil {
		r.cache.Close()
	}
}

func (r *Registry) register(value string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLen]
	r.cache.Set(token, value)
	return tokenPrefix + token
}
