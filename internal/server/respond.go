package server

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/teamboard/teamboard/internal/chat"
	"github.com/teamboard/teamboard/internal/knowledge"
)

// errorBody is the JSON error envelope. Message carries optional detail.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service-layer errors onto HTTP statuses. Unmapped
// errors become an opaque 500; the detail stays in the log.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var kverr *knowledge.ValidationError
	var cverr *chat.ValidationError

	switch {
	case errors.As(err, &kverr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Message: kverr.Reason})
	case errors.As(err, &cverr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Message: cverr.Reason})
	case errors.Is(err, knowledge.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Knowledge base item not found"})
	case errors.Is(err, knowledge.ErrMessageNotFound), errors.Is(err, chat.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Message not found"})
	case errors.Is(err, chat.ErrAssistantUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "AI service temporarily unavailable"})
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}
