package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	requestorID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dto models.ItemRequestCreate
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		s.fail(w, r, err)
		return
	}

	request, err := s.services.Requests.Create(r.Context(), requestorID, dto)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, request)
}

func (s *Server) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	requests, err := s.services.Requests.ListOwn(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, requests)
}

func (s *Server) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := httpx.Page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	requests, err := s.services.Requests.ListOthers(r.Context(), userID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, requests)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.UserID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	requestID, err := httpx.PathID(r, "requestId")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	request, err := s.services.Requests.Get(r.Context(), userID, requestID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, request)
}
