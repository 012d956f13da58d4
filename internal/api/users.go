package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var dto models.UserCreate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.services.Users.Create(r.Context(), dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.Users.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "userId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.services.Users.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "userId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dto models.UserUpdate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.services.Users.Update(r.Context(), id, dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "userId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.services.Users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
