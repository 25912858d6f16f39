package config

import (
	"os"
	"strings"
)

// localMediaConfig targets the MinIO container of the local compose setup.
// Without MEDIA_MINIO_ENDPOINT the endpoint stays empty and media is kept
// in memory.
func localMediaConfig() MediaConfig {
	return MediaConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("MEDIA_MINIO_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), "agentui"),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), "agentui123"),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_BUCKET")), "agentui-media"),
		UseSSL:    false,
	}
}
