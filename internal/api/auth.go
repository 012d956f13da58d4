package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"shareit/internal/apperrors"
	"shareit/internal/config"
	"shareit/internal/metrics"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	clientKeyUnknown      = "unknown"
)

// HTTPAuth checks the API key pair of trusted callers and applies a per-client rate limit.
type HTTPAuth struct {
	cfg         config.APIAuthConfig
	clients     map[string]config.APIClientKey
	limiter     *rateLimiter
	keyHeader   string
	extraHeader string
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	clients := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		clients[k.Key] = k
	}

	return &HTTPAuth{
		cfg:         cfg.Auth,
		clients:     clients,
		limiter:     newRateLimiter(cfg.RateLimit),
		keyHeader:   headerOr(cfg.Auth.HeaderAPIKey, apiKeyHeaderDefault),
		extraHeader: headerOr(cfg.Auth.HeaderExtra, apiExtraHeaderDefault),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Enabled {
			if err := a.checkAuth(r); err != nil {
				apperrors.WriteError(w, err)
				return
			}
		}

		if a.limiter.enabled() && !a.limiter.allow(a.clientKey(r)) {
			metrics.IncRateLimited("server")
			apperrors.WriteError(w, apperrors.TooManyRequests("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.keyHeader))
	extra := strings.TrimSpace(r.Header.Get(a.extraHeader))
	if apiKey == "" || extra == "" {
		return apperrors.Unauthorized("missing api key headers")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return apperrors.Unauthorized("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return apperrors.Unauthorized("invalid extra header")
	}
	return nil
}

// clientKey identifies the caller for rate limiting: API key first, then remote host.
func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.keyHeader)); apiKey != "" {
		return apiKey
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

func headerOr(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}
