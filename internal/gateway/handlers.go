package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"shareit/internal/apperrors"
	"shareit/internal/httpx"
	"shareit/internal/models"
)

const (
	maxBodyBytes       = 1 << 20
	maxSearchTextRunes = 50
)

// readBody keeps the raw payload for forwarding and decodes it into dst for checking.
func readBody(r *http.Request, dst any) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Validation("failed to read body: %v", err)
	}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		return nil, apperrors.Validation("invalid JSON body: %v", err)
	}
	return raw, nil
}

// validated decodes a payload and runs its struct tags.
func (g *Gateway) validated(r *http.Request, dst any) ([]byte, error) {
	raw, err := readBody(r, dst)
	if err != nil {
		return nil, err
	}
	if err := g.validator.Struct(dst); err != nil {
		return nil, err
	}
	return raw, nil
}

func (g *Gateway) passThrough(w http.ResponseWriter, r *http.Request) {
	g.forward(w, r, nil)
}

func (g *Gateway) withUser(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) withPathID(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := httpx.PathID(r, name); err != nil {
			g.fail(w, err)
			return
		}
		g.forward(w, r, nil)
	}
}

func (g *Gateway) createUser(w http.ResponseWriter, r *http.Request) {
	raw, err := g.validated(r, &models.UserCreate{})
	if err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) updateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.PathID(r, "userId"); err != nil {
		g.fail(w, err)
		return
	}
	raw, err := g.validated(r, &models.UserUpdate{})
	if err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) createItem(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	raw, err := g.validated(r, &models.ItemCreate{})
	if err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) updateItem(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.PathID(r, "itemId"); err != nil {
		g.fail(w, err)
		return
	}
	raw, err := readBody(r, &models.ItemUpdate{})
	if err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) getItem(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.OptionalUserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.PathID(r, "itemId"); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) listOwnerItems(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.Page(r); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

// searchItems answers a blank query locally with an empty list.
func (g *Gateway) searchItems(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.Page(r); err != nil {
		g.fail(w, err)
		return
	}
	text := r.URL.Query().Get("text")
	if utf8.RuneCountInString(text) > maxSearchTextRunes {
		g.fail(w, apperrors.Validation("text must be at most %d characters", maxSearchTextRunes))
		return
	}
	if strings.TrimSpace(text) == "" {
		httpx.WriteJSON(w, http.StatusOK, []models.Item{})
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) addComment(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.PathID(r, "itemId"); err != nil {
		g.fail(w, err)
		return
	}
	raw, err := g.validated(r, &models.CommentCreate{})
	if err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) createBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	var dto models.BookingCreate
	raw, err := readBody(r, &dto)
	if err != nil {
		g.fail(w, err)
		return
	}
	if err := g.validator.Booking(dto, g.now()); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) approveBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.PathID(r, "bookingId"); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.Bool(r, "approved"); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) getBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.PathID(r, "bookingId"); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

// listBookings serves both the booker and the owner listings.
func (g *Gateway) listBookings(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.State(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.Page(r); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) exportBookings(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.State(r); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) createRequest(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	raw, err := g.validated(r, &models.ItemRequestCreate{})
	if err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, raw)
}

func (g *Gateway) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.Page(r); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}

func (g *Gateway) getRequest(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.UserID(r); err != nil {
		g.fail(w, err)
		return
	}
	if _, err := httpx.PathID(r, "requestId"); err != nil {
		g.fail(w, err)
		return
	}
	g.forward(w, r, nil)
}
