package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agentui/internal/conversation"
	"agentui/internal/gateway/config"
	"agentui/internal/gateway/repository/media"
)

type gatewayStores struct {
	conversation conversation.Store
	media        media.Store
	close        func() error
}

func initStores(cfg *config.Config) (*gatewayStores, error) {
	mediaStore, err := chooseMediaStore(cfg)
	if err != nil {
		return nil, err
	}
	if dsn := strings.TrimSpace(cfg.ConversationStoreDSN); dsn != "" {
		return initPostgresStores(dsn, mediaStore)
	}
	return initInMemoryStores(mediaStore)
}

func initPostgresStores(dsn string, mediaStore media.Store) (*gatewayStores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pg, err := conversation.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation store: %w", err)
	}
	cached, err := conversation.NewCachedStore(pg, conversation.DefaultCacheEntries)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	log.Printf("conversation store: postgres (cached)")
	return &gatewayStores{
		conversation: cached,
		media:        mediaStore,
		close:        pg.Close,
	}, nil
}

func initInMemoryStores(mediaStore media.Store) (*gatewayStores, error) {
	log.Printf("conversation store: in-memory")
	return &gatewayStores{
		conversation: conversation.NewMemoryStore(),
		media:        mediaStore,
	}, nil
}

func chooseMediaStore(cfg *config.Config) (media.Store, error) {
	if !cfg.Media.CanUseS3() {
		if cfg.Media.Endpoint != "" {
			log.Printf("media store: using in-memory fallback (s3 config incomplete)")
		} else {
			log.Printf("media store: in-memory")
		}
		return media.NewMemoryStore(), nil
	}
	s3Cfg := media.S3Config{
		Endpoint:  cfg.Media.Endpoint,
		Region:    cfg.Media.Region,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
	}
	s3Store, err := media.NewS3Store(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media s3 store: %w", err)
	}
	log.Printf("media store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
	return s3Store, nil
}
