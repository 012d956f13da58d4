package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dto models.ItemCreate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.services.Items.Create(r.Context(), ownerID, dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := httpx.PathID(r, "itemId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dto models.ItemUpdate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.services.Items.Update(r.Context(), ownerID, itemID, dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

// getItem shows booking details only when the header names the owner.
func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	viewerID, err := httpx.OptionalUserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := httpx.PathID(r, "itemId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.services.Items.Get(r.Context(), itemID, viewerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (s *Server) listOwnerItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := httpx.Page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.services.Items.ListByOwner(r.Context(), ownerID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.services.Items.Search(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	itemID, err := httpx.PathID(r, "itemId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dto models.CommentCreate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	comment, err := s.services.Items.AddComment(r.Context(), authorID, itemID, dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comment)
}
