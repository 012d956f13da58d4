package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/apperrors"
	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Services bundles the business operations the HTTP layer exposes.
type Services struct {
	Users    domain.UserService
	Items    domain.ItemService
	Bookings domain.BookingService
	Requests domain.ItemRequestService
}

// Server is the REST/JSON front of the business services.
type Server struct {
	services Services
	logger   *zerolog.Logger
	router   *chi.Mux
	server   *http.Server
}

func NewServer(cfg config.APIConfig, services Services, logger *zerolog.Logger) *Server {
	s := &Server{
		services: services,
		logger:   logger,
		router:   chi.NewRouter(),
	}

	s.router.Use(httpx.RequestID)
	s.router.Use(httpx.AccessLog(logger, "server"))
	s.router.Use(middleware.Recoverer)
	s.routes(NewHTTPAuth(cfg))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.router,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	return s
}

// routes keeps /healthz outside the auth group so probes need no keys.
func (s *Server) routes(auth *HTTPAuth) {
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.Wrap)
		s.businessRoutes(r)
	})
}

func (s *Server) businessRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.createUser)
		r.Get("/", s.listUsers)
		r.Get("/{userId}", s.getUser)
		r.Patch("/{userId}", s.updateUser)
		r.Delete("/{userId}", s.deleteUser)
	})

	r.Route("/items", func(r chi.Router) {
		r.Post("/", s.createItem)
		r.Get("/", s.listOwnerItems)
		r.Get("/search", s.searchItems)
		r.Get("/{itemId}", s.getItem)
		r.Patch("/{itemId}", s.updateItem)
		r.Post("/{itemId}/comment", s.addComment)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.createBooking)
		r.Get("/", s.listBookerBookings)
		r.Get("/owner", s.listOwnerBookings)
		r.Get("/owner/export", s.exportOwnerBookings)
		r.Get("/{bookingId}", s.getBooking)
		r.Patch("/{bookingId}", s.approveBooking)
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", s.createRequest)
		r.Get("/", s.listOwnRequests)
		r.Get("/all", s.listOtherRequests)
		r.Get("/{requestId}", s.getRequest)
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// fail renders err and logs it when it is not a client error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r.Context())).Msg("request failed")
	}
	apperrors.WriteError(w, appErr)
}
