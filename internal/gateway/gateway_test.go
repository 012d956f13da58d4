package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"shareit/internal/api"
	"shareit/internal/apperrors"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"
	"shareit/internal/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// upstream is a fake server that records every call and answers with a fixed response.
type upstream struct {
	mu     sync.Mutex
	calls  []recordedCall
	status int
	body   string
	server *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{status: http.StatusOK, body: `{"id":1}`}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		u.mu.Lock()
		u.calls = append(u.calls, recordedCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(raw),
		})
		u.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.status)
		_, _ = io.WriteString(w, u.body)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) recorded() []recordedCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]recordedCall(nil), u.calls...)
}

func gatewayConfig(serverURL string) config.GatewayConfig {
	return config.GatewayConfig{
		ServerURL:      serverURL,
		APIKey:         "gw-key",
		APIExtra:       "gw-extra",
		TimeoutSeconds: 5,
	}
}

func newTestGateway(t *testing.T, cfg config.GatewayConfig) *Gateway {
	t.Helper()
	logger := zerolog.Nop()
	return New(cfg, NewClient(cfg), nil, validation.New(), &logger)
}

func send(t *testing.T, h http.Handler, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != 0 {
		req.Header.Set(models.UserIDHeader, fmt.Sprint(userID))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGateway_RejectsInvalidInputLocally(t *testing.T) {
	up := newUpstream(t)
	g := newTestGateway(t, gatewayConfig(up.server.URL))
	now := time.Now()

	tests := []struct {
		name   string
		method string
		path   string
		userID int64
		body   any
	}{
		{"UserBadEmail", http.MethodPost, "/users", 0, models.UserCreate{Name: "ann", Email: "nope"}},
		{"UserBlankName", http.MethodPost, "/users", 0, models.UserCreate{Name: " ", Email: "ann@example.com"}},
		{"UserUpdateBadEmail", http.MethodPatch, "/users/1", 0, models.UserUpdate{Email: "nope"}},
		{"UserNonNumericID", http.MethodGet, "/users/abc", 0, nil},
		{"ItemMissingHeader", http.MethodPost, "/items", 0, map[string]any{"name": "x", "description": "y", "available": true}},
		{"ItemMissingAvailable", http.MethodPost, "/items", 1, map[string]any{"name": "x", "description": "y"}},
		{"ItemNegativeFrom", http.MethodGet, "/items?from=-1&size=5", 1, nil},
		{"CommentBlank", http.MethodPost, "/items/1/comment", 1, models.CommentCreate{Text: " "}},
		{"BookingInPast", http.MethodPost, "/bookings", 1, models.BookingCreate{
			ItemID: 1,
			Start:  models.NewDateTime(now.Add(-time.Hour)),
			End:    models.NewDateTime(now.Add(time.Hour)),
		}},
		{"BookingEqualDates", http.MethodPost, "/bookings", 1, models.BookingCreate{
			ItemID: 1,
			Start:  models.NewDateTime(now.Add(time.Hour)),
			End:    models.NewDateTime(now.Add(time.Hour)),
		}},
		{"BookingMissingItem", http.MethodPost, "/bookings", 1, models.BookingCreate{
			Start: models.NewDateTime(now.Add(time.Hour)),
			End:   models.NewDateTime(now.Add(2 * time.Hour)),
		}},
		{"ApproveWithoutFlag", http.MethodPatch, "/bookings/1", 1, nil},
		{"BookingsUnknownState", http.MethodGet, "/bookings?state=BOGUS", 1, nil},
		{"OwnerBookingsZeroSize", http.MethodGet, "/bookings/owner?from=0&size=0", 1, nil},
		{"RequestBlank", http.MethodPost, "/requests", 1, models.ItemRequestCreate{}},
		{"RequestsMissingHeader", http.MethodGet, "/requests", 0, nil},
		{"RequestsAllBadSize", http.MethodGet, "/requests/all?size=abc", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, g.Handler(), tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	assert.Empty(t, up.recorded(), "invalid requests never reach the server")
}

func TestGateway_UnknownStateMessage(t *testing.T) {
	up := newUpstream(t)
	g := newTestGateway(t, gatewayConfig(up.server.URL))

	rec := send(t, g.Handler(), http.MethodGet, "/bookings/owner?state=UNKNOWN", 1, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", body.Error)
}

func TestGateway_ForwardsValidRequests(t *testing.T) {
	up := newUpstream(t)
	g := newTestGateway(t, gatewayConfig(up.server.URL))

	payload := models.UserCreate{Name: "ann", Email: "ann@example.com"}
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"name":"ann","email":"ann@example.com"}`)))
	req.Header.Set(models.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	calls := up.recorded()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/users", call.Path)
	assert.Equal(t, "gw-key", call.Header.Get("x-api-key"))
	assert.Equal(t, "gw-extra", call.Header.Get("x-api-extra"))
	assert.Equal(t, "req-42", call.Header.Get(models.RequestIDHeader))
	assert.Equal(t, "application/json", call.Header.Get("Content-Type"))

	var forwarded models.UserCreate
	require.NoError(t, json.Unmarshal([]byte(call.Body), &forwarded))
	assert.Equal(t, payload, forwarded)
}

func TestGateway_ForwardsQueryAndIdentity(t *testing.T) {
	up := newUpstream(t)
	up.body = `[]`
	g := newTestGateway(t, gatewayConfig(up.server.URL))

	rec := send(t, g.Handler(), http.MethodGet, "/bookings/owner?state=PAST&from=2&size=3", 7, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	calls := up.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/bookings/owner", calls[0].Path)
	assert.Equal(t, "state=PAST&from=2&size=3", calls[0].Query)
	assert.Equal(t, "7", calls[0].Header.Get(models.UserIDHeader))
	assert.Empty(t, calls[0].Body)
}

func TestGateway_RelaysUpstreamErrors(t *testing.T) {
	up := newUpstream(t)
	up.status = http.StatusNotFound
	up.body = `{"error":"item 9 not found","code":"NOT_FOUND"}`
	g := newTestGateway(t, gatewayConfig(up.server.URL))

	rec := send(t, g.Handler(), http.MethodGet, "/items/9", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, up.body, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestGateway_BlankSearchAnsweredLocally(t *testing.T) {
	up := newUpstream(t)
	g := newTestGateway(t, gatewayConfig(up.server.URL))

	rec := send(t, g.Handler(), http.MethodGet, "/items/search?text=%20%20", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Empty(t, up.recorded())

	rec = send(t, g.Handler(), http.MethodGet, "/items/search?text=drill", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, up.recorded(), 1)
}

func TestGateway_SearchTextLength(t *testing.T) {
	up := newUpstream(t)
	up.body = `[]`
	g := newTestGateway(t, gatewayConfig(up.server.URL))

	long := url.QueryEscape(strings.Repeat("a", 51))
	rec := send(t, g.Handler(), http.MethodGet, "/items/search?text="+long, 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, up.recorded())

	// The limit counts characters, not bytes.
	cyrillic := url.QueryEscape(strings.Repeat("д", 50))
	rec = send(t, g.Handler(), http.MethodGet, "/items/search?text="+cyrillic, 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, up.recorded(), 1)
}

func TestGateway_UpstreamDown(t *testing.T) {
	up := newUpstream(t)
	serverURL := up.server.URL
	up.server.Close()
	g := newTestGateway(t, gatewayConfig(serverURL))

	rec := send(t, g.Handler(), http.MethodGet, "/users", 0, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGateway_RateLimit(t *testing.T) {
	up := newUpstream(t)
	cfg := gatewayConfig(up.server.URL)
	cfg.RateLimit = config.GatewayRateLimitConfig{Requests: 2, WindowSeconds: 60}

	s := miniredis.RunT(t)
	client := repository.NewRedisClient(config.RedisConfig{Address: s.Addr()})
	t.Cleanup(func() { repository.Close(client) })

	logger := zerolog.Nop()
	limiter := repository.NewFailoverRateLimitRepository(
		repository.NewRedisRateLimitRepository(client),
		repository.NewMemoryRateLimitRepository(),
		&logger,
	)
	g := New(cfg, NewClient(cfg), limiter, validation.New(), &logger)

	assert.Equal(t, http.StatusOK, send(t, g.Handler(), http.MethodGet, "/requests", 1, nil).Code)
	assert.Equal(t, http.StatusOK, send(t, g.Handler(), http.MethodGet, "/requests", 1, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, send(t, g.Handler(), http.MethodGet, "/requests", 1, nil).Code)
	assert.Equal(t, http.StatusOK, send(t, g.Handler(), http.MethodGet, "/requests", 2, nil).Code, "callers are counted separately")
	assert.Equal(t, http.StatusOK, send(t, g.Handler(), http.MethodGet, "/users", 0, nil).Code, "anonymous calls are not limited")

	s.FastForward(61 * time.Second)
	assert.Equal(t, http.StatusOK, send(t, g.Handler(), http.MethodGet, "/requests", 1, nil).Code)
}

// TestGateway_EndToEnd runs the gateway against a real server with authentication on.
func TestGateway_EndToEnd(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	v := validation.New()
	srv := api.NewServer(config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{{Key: "gw-key", Extra: "gw-extra", Name: "gateway"}},
		},
	}, api.Services{
		Users:    service.NewUserService(db, v, &logger),
		Items:    service.NewItemService(db, v, &logger),
		Bookings: service.NewBookingService(db, nil, v, &logger),
		Requests: service.NewItemRequestService(db, v, &logger),
	}, &logger)
	backend := httptest.NewServer(srv.Handler())
	t.Cleanup(backend.Close)

	g := newTestGateway(t, gatewayConfig(backend.URL))
	h := g.Handler()

	rec := send(t, h, http.MethodPost, "/users", 0, models.UserCreate{Name: "owner", Email: "owner@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var owner models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owner))

	rec = send(t, h, http.MethodPost, "/users", 0, models.UserCreate{Name: "booker", Email: "booker@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var booker models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booker))

	available := true
	rec = send(t, h, http.MethodPost, "/items", owner.ID, models.ItemCreate{Name: "Drill", Description: "18V", Available: &available})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))

	now := time.Now()
	rec = send(t, h, http.MethodPost, "/bookings", booker.ID, models.BookingCreate{
		ItemID: item.ID,
		Start:  models.NewDateTime(now.Add(time.Hour)),
		End:    models.NewDateTime(now.Add(2 * time.Hour)),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var booking models.BookingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, models.StatusWaiting, booking.Status)

	rec = send(t, h, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, models.StatusApproved, booking.Status)

	rec = send(t, h, http.MethodGet, "/bookings/owner/export", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bookings_")

	// Direct calls without the gateway's credentials are refused.
	direct := send(t, srv.Handler(), http.MethodGet, "/users", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, direct.Code)
}
