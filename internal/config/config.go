package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Notification transports
const (
	NotifyNone  = "none"
	NotifyRedis = "redis"
	NotifyKafka = "kafka"
)

// Config holds all configuration for the dashboard and the marketplace stub.
type Config struct {
	// Environment
	RunMode  string // Set via flag, not env
	LogLevel string

	// Marketplace API
	MarketplaceURL string
	HTTPTimeout    time.Duration

	// Server
	ApiPort  string
	StubPort string

	// Redis
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	// Notifications
	NotifyTransport string
	KafkaBrokers    []string
	KafkaTopic      string
	InboxSize       int

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImageMaxDimension  int
	MinAuctionImages   int

	// Dashboard defaults
	DefaultPageSize int

	// Refresh rate limiting
	RefreshBucketSize int
	RefreshRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.StubPort = getEnv("STUB_PORT", "8081")
	cfg.MarketplaceURL = getEnv("MARKETPLACE_URL", "http://localhost:"+cfg.StubPort)
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "dashboard-notifications")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = getEnv("IMAGE_BASE_S3_URL", "")

	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	cfg.NotifyTransport = strings.ToLower(getEnv("NOTIFY_TRANSPORT", NotifyNone))
	switch cfg.NotifyTransport {
	case NotifyNone, NotifyRedis, NotifyKafka:
	default:
		return nil, fmt.Errorf("invalid NOTIFY_TRANSPORT: %q", cfg.NotifyTransport)
	}

	cfg.RedisEnabled, err = strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED: %w", err)
	}
	if cfg.NotifyTransport == NotifyRedis && !cfg.RedisEnabled {
		return nil, fmt.Errorf("NOTIFY_TRANSPORT=redis requires REDIS_ENABLED=true")
	}

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	httpTimeoutSeconds, err := strconv.ParseInt(getEnv("HTTP_TIMEOUT_SECONDS", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %w", err)
	}
	cfg.HTTPTimeout = time.Duration(httpTimeoutSeconds) * time.Second

	snapshotTTLMinutes, err := strconv.ParseInt(getEnv("SNAPSHOT_TTL_MINUTES", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TTL_MINUTES: %w", err)
	}
	cfg.SnapshotTTL = time.Duration(snapshotTTLMinutes) * time.Minute

	cfg.InboxSize, err = strconv.Atoi(getEnv("INBOX_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid INBOX_SIZE: %w", err)
	}

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.MinAuctionImages, err = strconv.Atoi(getEnv("MIN_AUCTION_IMAGES", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_AUCTION_IMAGES: %w", err)
	}

	cfg.DefaultPageSize, err = strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PAGE_SIZE: %w", err)
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > 100 {
		return nil, fmt.Errorf("invalid DEFAULT_PAGE_SIZE: must be between 1 and 100")
	}

	cfg.RefreshBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_REFRESH_BUCKET_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFRESH_BUCKET_SIZE: %w", err)
	}
	cfg.RefreshRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFRESH_REFILL_RATE", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFRESH_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

// ImagesEnabled reports whether an S3 bucket is configured for submissions
func (c *Config) ImagesEnabled() bool {
	return c.AwsS3Bucket != "" && c.AwsRegion != ""
}
