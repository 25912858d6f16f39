package server

import (
	"net/http"

	"agentui/internal/gateway/handler"
	"agentui/internal/gateway/middleware"
)

func NewMux(
	filesHandler *handler.FilesHandler,
	providerHandler *handler.ProviderHandler,
	conversationHandler *handler.ConversationHandler,
) http.Handler {
	mux := http.NewServeMux()

	// Files API proxy
	mux.HandleFunc("GET /api/files", filesHandler.HandleList)
	mux.HandleFunc("DELETE /api/files", filesHandler.HandleDelete)
	mux.HandleFunc("GET /api/files/version", filesHandler.HandleVersion)

	// Supervisor settings
	mux.HandleFunc("GET /api/provider", providerHandler.HandleGet)
	mux.HandleFunc("POST /api/provider", providerHandler.HandleSet)
	mux.HandleFunc("GET /api/supervisors", providerHandler.HandleSupervisors)

	// Conversations
	mux.HandleFunc("POST /api/conversations", conversationHandler.HandleCreate)
	mux.HandleFunc("GET /api/conversations", conversationHandler.HandleList)
	mux.HandleFunc("GET /api/conversations/{id}", conversationHandler.HandleGet)
	mux.HandleFunc("DELETE /api/conversations/{id}", conversationHandler.HandleDelete)
	mux.HandleFunc("POST /api/conversations/{id}/messages", conversationHandler.HandleSubmit)
	mux.HandleFunc("POST /api/conversations/{id}/cancel", conversationHandler.HandleCancel)
	mux.HandleFunc("POST /api/conversations/{id}/file", conversationHandler.HandleAttach)
	mux.HandleFunc("POST /api/conversations/{id}/file/stored", conversationHandler.HandleSelectStored)
	mux.HandleFunc("DELETE /api/conversations/{id}/file", conversationHandler.HandleClearFile)
	mux.HandleFunc("GET /api/conversations/{id}/file/preview", conversationHandler.HandlePreview)
	mux.HandleFunc("GET /api/conversations/{id}/media", conversationHandler.HandleMediaList)
	mux.HandleFunc("GET /api/conversations/{id}/media/{ref...}", conversationHandler.HandleMedia)
	mux.HandleFunc("GET /api/conversations/{id}/events", conversationHandler.HandleEvents)

	mux.HandleFunc("GET /healthz", handler.HandleHealth)

	// Middleware
	return middleware.CORS(mux)
}
