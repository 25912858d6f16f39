package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// FilesAPI is the remote file store the proxy forwards to.
type FilesAPI interface {
	List(ctx context.Context, userID string) (json.RawMessage, error)
	Delete(ctx context.Context, userID, fileID string) (json.RawMessage, error)
	Version(ctx context.Context, userID, fileID string, version int) (json.RawMessage, error)
}

// FilesHandler proxies the Files API so the browser talks to one origin.
// Parameters are validated before anything is sent upstream.
type FilesHandler struct {
	files FilesAPI
}

func NewFilesHandler(files FilesAPI) *FilesHandler {
	return &FilesHandler{files: files}
}

func (h *FilesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id parameter is required")
		return
	}
	raw, err := h.files.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "files proxy list", err)
		return
	}
	writeRawJSON(w, raw)
}

func (h *FilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	fileID := strings.TrimSpace(r.URL.Query().Get("file_id"))
	if userID == "" || fileID == "" {
		writeError(w, http.StatusBadRequest, "user_id and file_id parameters are required")
		return
	}
	raw, err := h.files.Delete(r.Context(), userID, fileID)
	if err != nil {
		writeServiceError(w, "files proxy delete", err)
		return
	}
	writeRawJSON(w, raw)
}

func (h *FilesHandler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	fileID := strings.TrimSpace(r.URL.Query().Get("file_id"))
	if userID == "" || fileID == "" {
		writeError(w, http.StatusBadRequest, "user_id and file_id parameters are required")
		return
	}
	version, ok := queryInt(r, "version", 0)
	if !ok || version < 1 {
		writeError(w, http.StatusBadRequest, "version must be a positive integer")
		return
	}
	raw, err := h.files.Version(r.Context(), userID, fileID, version)
	if err != nil {
		writeServiceError(w, "files proxy version", err)
		return
	}
	writeRawJSON(w, raw)
}
