package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"agentui/internal/cache/memory"
	"agentui/internal/gateway/config"
	"agentui/internal/gateway/handler"
	"agentui/internal/gateway/server"
	"agentui/internal/gateway/service/chat"
	"agentui/internal/tabular"
	"agentui/internal/upstream"
)

type App struct {
	server *server.Server
	stores *gatewayStores
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg *config.Config) (*App, error) {
	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	// Dependencies
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	filesClient := upstream.NewFilesClient(cfg.FilesAPIURL, httpClient)
	supervisorClient := upstream.NewSupervisorClient(cfg.SupervisorAPIURL, httpClient)
	chatSvc := chat.New(stores.conversation, stores.media, supervisorClient, chat.Options{
		DefaultUserID: cfg.DefaultUserID,
		PageSize:      cfg.PreviewPageSize,
		DecodeCache:   memory.NewLRUTTL[string, tabular.Table](64, int(cfg.MaxUploadBytes)*4, 10*time.Minute),
	})
	log.Printf("upstream: files=%s supervisor=%s", cfg.FilesAPIURL, cfg.SupervisorAPIURL)

	filesHandler := handler.NewFilesHandler(filesClient)
	providerHandler := handler.NewProviderHandler(supervisorClient)
	conversationHandler := handler.NewConversationHandler(chatSvc, cfg.MaxUploadBytes)

	// Routing & Server
	mux := server.NewMux(filesHandler, providerHandler, conversationHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		stores: stores,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.stores != nil && a.stores.close != nil {
		if cerr := a.stores.close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
