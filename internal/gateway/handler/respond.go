package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"agentui/internal/gateway/repository/media"
	"agentui/internal/gateway/service/chat"
	"agentui/internal/upstream"
)

const internalErrorMessage = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	_, _ = w.Write(raw)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain and upstream errors onto HTTP statuses.
// Upstream statuses are mirrored; anything unexpected becomes a generic 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *chat.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	case errors.Is(err, chat.ErrNotFound), errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, chat.ErrNoFile):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if status, msg, ok := upstream.StatusOf(err); ok {
		log.Printf("%s: upstream status %d: %s", op, status, msg)
		writeError(w, status, msg)
		return
	}
	log.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
