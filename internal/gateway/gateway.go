package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shareit/internal/apperrors"
	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/httpx"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// relayedHeaders are copied from the upstream response to the client.
var relayedHeaders = []string{"Content-Type", "Content-Disposition"}

// Gateway validates client input, applies per-user rate limits and proxies to the server.
type Gateway struct {
	cfg       config.GatewayConfig
	client    *Client
	limiter   domain.RateLimitRepository
	validator *validation.Validator
	logger    *zerolog.Logger
	router    *chi.Mux
	server    *http.Server
	now       func() time.Time
}

func New(cfg config.GatewayConfig, client *Client, limiter domain.RateLimitRepository, v *validation.Validator, logger *zerolog.Logger) *Gateway {
	g := &Gateway{
		cfg:       cfg,
		client:    client,
		limiter:   limiter,
		validator: v,
		logger:    logger,
		router:    chi.NewRouter(),
		now:       time.Now,
	}

	g.router.Use(httpx.RequestID)
	g.router.Use(httpx.AccessLog(logger, "gateway"))
	g.router.Use(middleware.Recoverer)
	g.router.Use(g.rateLimit)
	g.routes()

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           g.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return g
}

func (g *Gateway) routes() {
	r := g.router

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", g.createUser)
		r.Get("/", g.passThrough)
		r.Get("/{userId}", g.withPathID("userId"))
		r.Patch("/{userId}", g.updateUser)
		r.Delete("/{userId}", g.withPathID("userId"))
	})

	r.Route("/items", func(r chi.Router) {
		r.Post("/", g.createItem)
		r.Get("/", g.listOwnerItems)
		r.Get("/search", g.searchItems)
		r.Get("/{itemId}", g.getItem)
		r.Patch("/{itemId}", g.updateItem)
		r.Post("/{itemId}/comment", g.addComment)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", g.createBooking)
		r.Get("/", g.listBookings)
		r.Get("/owner", g.listBookings)
		r.Get("/owner/export", g.exportBookings)
		r.Get("/{bookingId}", g.getBooking)
		r.Patch("/{bookingId}", g.approveBooking)
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", g.createRequest)
		r.Get("/", g.withUser)
		r.Get("/all", g.listOtherRequests)
		r.Get("/{requestId}", g.getRequest)
	})
}

func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Str("upstream", g.cfg.ServerURL).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// rateLimit counts requests per caller within a fixed window. Anonymous calls are not limited.
func (g *Gateway) rateLimit(next http.Handler) http.Handler {
	window := time.Duration(g.cfg.RateLimit.WindowSeconds) * time.Second
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.limiter == nil || g.cfg.RateLimit.Requests <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := httpx.UserID(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := g.limiter.CheckRateLimit(r.Context(), userID, g.cfg.RateLimit.Requests, window)
		if err != nil {
			g.logger.Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncRateLimited("gateway")
			apperrors.WriteError(w, apperrors.TooManyRequests("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// forward relays the request upstream and copies the answer back verbatim.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	userID := strings.TrimSpace(r.Header.Get(models.UserIDHeader))
	resp, err := g.client.Do(r.Context(), r.Method, r.URL.Path, r.URL.RawQuery, userID, body)
	if err != nil {
		g.logger.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r.Context())).Msg("upstream call failed")
		apperrors.WriteError(w, apperrors.BadGateway("server is unavailable", err))
		return
	}
	defer resp.Body.Close()

	for _, h := range relayedHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		g.logger.Warn().Err(err).Msg("failed to relay upstream body")
	}
}

func (g *Gateway) fail(w http.ResponseWriter, err error) {
	apperrors.WriteError(w, err)
}
