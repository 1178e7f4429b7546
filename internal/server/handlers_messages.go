package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

type askRequest struct {
	Message string `json:"message"`
}

func (s *Service) handleMessageAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	msg, err := s.chat.Ask(r.Context(), req.Message)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Service) handleMessagesRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseIntParam(q.Get("limit"), 0)
	offset := parseIntParam(q.Get("offset"), 0)

	msgs, err := s.chat.Recent(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Service) handleMessageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.chat.Stats(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleMessageGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Message not found"})
		return
	}

	msg, err := s.chat.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Service) handleMessageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Message not found"})
		return
	}

	if err := s.chat.Delete(r.Context(), id); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted successfully"})
}
