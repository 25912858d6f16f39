package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	FilesAPIURL      string
	SupervisorAPIURL string
	UpstreamTimeout  time.Duration

	DefaultUserID   string
	PreviewPageSize int
	MaxUploadBytes  int64

	ConversationStoreDSN string
	Media                MediaConfig
}

type MediaConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUseS3 reports whether enough is configured to reach an object store.
func (c MediaConfig) CanUseS3() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

const (
	defaultFilesAPIURL      = "http://localhost:20001/api"
	defaultSupervisorAPIURL = "http://localhost:8000/api/v1"
	defaultUserID           = "system_user"
	defaultPreviewPageSize  = 50
	defaultMaxUploadBytes   = 32 << 20
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	return fromEnv(*port)
}

func fromEnv(port string) (*Config, error) {
	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			port = envPort
		} else {
			port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	pageSize, err := intEnv("PREVIEW_PAGE_SIZE", defaultPreviewPageSize)
	if err != nil {
		return nil, err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	// Zero leaves the platform default: no client-side timeout.
	var timeout time.Duration
	if raw := strings.TrimSpace(os.Getenv("UPSTREAM_TIMEOUT")); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
		}
	}

	return &Config{
		Port:                 port,
		Env:                  env,
		FilesAPIURL:          firstNonEmpty(strings.TrimSpace(os.Getenv("FILES_API_URL")), defaultFilesAPIURL),
		SupervisorAPIURL:     firstNonEmpty(strings.TrimSpace(os.Getenv("SUPERVISOR_API_URL")), defaultSupervisorAPIURL),
		UpstreamTimeout:      timeout,
		DefaultUserID:        firstNonEmpty(strings.TrimSpace(os.Getenv("DEFAULT_USER_ID")), defaultUserID),
		PreviewPageSize:      pageSize,
		MaxUploadBytes:       int64(maxUpload),
		ConversationStoreDSN: strings.TrimSpace(os.Getenv("CONVERSATION_STORE_PG_DSN")),
		Media:                loadMediaConfig(env),
	}, nil
}

func loadMediaConfig(env string) MediaConfig {
	if isLocal(env) {
		return localMediaConfig()
	}
	return MediaConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("MEDIA_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("MEDIA_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("MEDIA_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_BUCKET")), "agentui-media"),
		UseSSL:    resolveMediaUseSSL(),
	}
}

func resolveMediaUseSSL() bool {
	raw := strings.TrimSpace(os.Getenv("MEDIA_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func isLocal(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "local")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
