package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting. It is built once in main and passed by
// value into the components that need it; nothing mutates it afterwards.
type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	// Blob store
	S3Bucket   string
	AWSRegion  string
	S3Endpoint string // optional, for MinIO/LocalStack

	// Notification
	NotificationEmail string // the single operator address
	SenderEmail       string
	ResendAPIKey      string
	LinkTTL           time.Duration

	// Submission limits
	MaxAttachments    int
	MaxAttachmentSize int64
}

const (
	defaultLinkTTL           = 5 * 24 * time.Hour
	defaultMaxAttachments    = 50
	defaultMaxAttachmentSize = 20 * 1024 * 1024 // 20 MiB
)

// Load reads the configuration from the environment. A missing required
// variable is an error — the caller is expected to treat it as fatal.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          os.Getenv("MONGODB_URI"),
		DBName:            getEnv("DB_NAME", "feedback"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		NotificationEmail: os.Getenv("NOTIFICATION_EMAIL"),
		SenderEmail:       os.Getenv("SENDER_EMAIL"),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		LinkTTL:           defaultLinkTTL,
		MaxAttachments:    defaultMaxAttachments,
		MaxAttachmentSize: defaultMaxAttachmentSize,
	}

	required := []struct {
		name  string
		value string
	}{
		{"MONGODB_URI", cfg.MongoURI},
		{"JWT_SECRET", cfg.JWTSecret},
		{"S3_BUCKET", cfg.S3Bucket},
		{"NOTIFICATION_EMAIL", cfg.NotificationEmail},
		{"SENDER_EMAIL", cfg.SenderEmail},
		{"RESEND_API_KEY", cfg.ResendAPIKey},
	}
	for _, v := range required {
		if v.value == "" {
			return Config{}, fmt.Errorf("%s is required", v.name)
		}
	}

	if raw := os.Getenv("LINK_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("LINK_TTL_HOURS must be a positive integer, got %q", raw)
		}
		cfg.LinkTTL = time.Duration(hours) * time.Hour
	}

	if raw := os.Getenv("MAX_ATTACHMENTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MAX_ATTACHMENTS must be a positive integer, got %q", raw)
		}
		cfg.MaxAttachments = n
	}

	if raw := os.Getenv("MAX_ATTACHMENT_SIZE"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MAX_ATTACHMENT_SIZE must be a positive byte count, got %q", raw)
		}
		cfg.MaxAttachmentSize = n
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
