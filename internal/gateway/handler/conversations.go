package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"agentui/internal/conversation"
	"agentui/internal/gateway/service/chat"
)

const DefaultMaxUploadBytes = 32 << 20

type ConversationHandler struct {
	svc            *chat.Service
	maxUploadBytes int64
}

func NewConversationHandler(svc *chat.Service, maxUploadBytes int64) *ConversationHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ConversationHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// conversationView is a conversation as the UI sees it: the file session is
// reduced to its metadata and the busy flag is attached.
type conversationView struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Title      string              `json:"title"`
	Supervisor string              `json:"supervisor"`
	Turns      []conversation.Turn `json:"turns"`
	File       chat.SessionView    `json:"file"`
	Busy       bool                `json:"busy"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func (h *ConversationHandler) view(c *conversation.Conversation) conversationView {
	turns := c.Turns
	if turns == nil {
		turns = []conversation.Turn{}
	}
	return conversationView{
		ID:         c.ID,
		UserID:     c.UserID,
		Title:      c.Title,
		Supervisor: c.Supervisor,
		Turns:      turns,
		File:       chat.ViewOf(c.Session),
		Busy:       h.svc.Busy(c.ID),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (h *ConversationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID     string `json:"user_id"`
		Supervisor string `json:"supervisor"`
	}
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.svc.Create(r.Context(), in.UserID, in.Supervisor)
	if err != nil {
		writeServiceError(w, "conversation create", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(c))
}

func (h *ConversationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summaries, err := h.svc.List(r.Context(), q.Get("user_id"), q.Get("q"))
	if err != nil {
		writeServiceError(w, "conversation list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": summaries,
	})
}

func (h *ConversationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "conversation get", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(c))
}

func (h *ConversationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, "conversation delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *ConversationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Query      string `json:"query"`
		Supervisor string `json:"supervisor"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := h.svc.Submit(r.Context(), r.PathValue("id"), in.Query, in.Supervisor)
	if err != nil {
		writeServiceError(w, "conversation submit", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation": h.view(res.Conversation),
		"warning":      res.Warning,
		"open_viewer":  res.OpenViewer,
	})
}

func (h *ConversationHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, "conversation cancel", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleAttach takes a multipart upload in the "file" field. An optional
// "type" field overrides the declared type.
func (h *ConversationHandler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart form with a file field is required")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	declared := strings.TrimSpace(r.FormValue("type"))
	if declared == "" {
		declared = hdr.Header.Get("Content-Type")
	}
	c, err := h.svc.AttachUpload(r.Context(), r.PathValue("id"), hdr.Filename, declared, data)
	if err != nil {
		writeServiceError(w, "conversation attach", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(c))
}

func (h *ConversationHandler) HandleSelectStored(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FileID   string `json:"file_id"`
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.svc.SelectStored(r.Context(), r.PathValue("id"), in.FileID, in.FileName, in.FileType)
	if err != nil {
		writeServiceError(w, "conversation select file", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(c))
}

func (h *ConversationHandler) HandleClearFile(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.ClearFile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "conversation clear file", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(c))
}

func (h *ConversationHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	size, ok := queryInt(r, "page_size", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "page_size must be an integer")
		return
	}
	p, err := h.svc.Preview(r.Context(), r.PathValue("id"), page, size)
	if err != nil {
		writeServiceError(w, "conversation preview", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ConversationHandler) HandleMediaList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.MediaList(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "conversation media list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"media": entries})
}

func (h *ConversationHandler) HandleMedia(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	obj, err := h.svc.Media(r.Context(), r.PathValue("id"), ref)
	if err != nil {
		writeServiceError(w, "conversation media", err)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	if r.URL.Query().Get("download") != "" {
		name := ref
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(name, `"`, "")+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
