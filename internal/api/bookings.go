package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dto models.BookingCreate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Create(r.Context(), bookerID, dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, booking)
}

func (s *Server) approveBooking(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := httpx.PathID(r, "bookingId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	approved, err := httpx.Bool(r, "approved")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Approve(r.Context(), ownerID, bookingID, approved)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, booking)
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bookingID, err := httpx.PathID(r, "bookingId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	booking, err := s.services.Bookings.Get(r.Context(), userID, bookingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, booking)
}

func (s *Server) listBookerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.ListForBooker)
}

func (s *Server) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.services.Bookings.ListForOwner)
}

type bookingLister func(ctx context.Context, userID int64, state models.State, page *models.Page) ([]*models.BookingView, error)

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	state, err := httpx.State(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := httpx.Page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	bookings, err := list(r.Context(), userID, state, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookings)
}

// exportOwnerBookings streams the owner's bookings as a spreadsheet attachment.
func (s *Server) exportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	state, err := httpx.State(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Buffer so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := s.services.Bookings.ExportForOwner(r.Context(), ownerID, state, &buf); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings_%d.xlsx", ownerID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
