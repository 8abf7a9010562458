package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort string

	// Listings
	DefaultPageSize    int
	MaxPageSize        int
	UpcomingWindowDays int

	// Stats
	StatsCacheTTL         time.Duration
	StatsSnapshotInterval time.Duration

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	CdnBaseURL         string
	PresignTTL         time.Duration
	ThumbnailMaxDim    int

	// App Defaults
	AppName string

	// Rate Limiting
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

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

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "aadharhomes")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.CdnBaseURL = getEnv("CDN_BASE_URL", "")
	cfg.AppName = getEnv("APP_NAME", "AadharHomes")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "86400"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.DefaultPageSize, err = strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PAGE_SIZE: %w", err)
	}

	cfg.MaxPageSize, err = strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PAGE_SIZE: %w", err)
	}

	cfg.UpcomingWindowDays, err = strconv.Atoi(getEnv("UPCOMING_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPCOMING_WINDOW_DAYS: %w", err)
	}

	statsCacheTTLSeconds, err := strconv.ParseInt(getEnv("STATS_CACHE_TTL_SECONDS", "300"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.StatsCacheTTL = time.Duration(statsCacheTTLSeconds) * time.Second

	statsSnapshotMinutes, err := strconv.ParseInt(getEnv("STATS_SNAPSHOT_INTERVAL_MINUTES", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_SNAPSHOT_INTERVAL_MINUTES: %w", err)
	}
	cfg.StatsSnapshotInterval = time.Duration(statsSnapshotMinutes) * time.Minute

	presignTTLMinutes, err := strconv.ParseInt(getEnv("PRESIGN_TTL_MINUTES", "15"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PRESIGN_TTL_MINUTES: %w", err)
	}
	cfg.PresignTTL = time.Duration(presignTTLMinutes) * time.Minute

	cfg.ThumbnailMaxDim, err = strconv.Atoi(getEnv("THUMBNAIL_MAX_DIMENSION", "480"))
	if err != nil {
		return nil, fmt.Errorf("invalid THUMBNAIL_MAX_DIMENSION: %w", err)
	}

	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	return cfg, nil
}
