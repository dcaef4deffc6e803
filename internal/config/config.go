package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	// SNSPlatformAppARN is the deployment's push identity. When empty the
	// push feature runs with a no-op platform: registration is a silent
	// no-op and the rest of the service is unaffected.
	SNSPlatformAppARN string
	SNSRegion         string

	BadgePollInterval time.Duration
	FeedPageSize      int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	ChannelMemberships string
	GroupMemberships   string
	Messages           string
	Posts              string
	Events             string
	Notifications      string
	Preferences        string
	PushTokens         string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			ChannelMemberships: getEnv("DYNAMO_TABLE_CHANNEL_MEMBERSHIPS", "channel_memberships"),
			GroupMemberships:   getEnv("DYNAMO_TABLE_GROUP_MEMBERSHIPS", "group_memberships"),
			Messages:           getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			Posts:              getEnv("DYNAMO_TABLE_POSTS", "posts"),
			Events:             getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Notifications:      getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Preferences:        getEnv("DYNAMO_TABLE_NOTIFICATION_PREFERENCES", "notification_preferences"),
			PushTokens:         getEnv("DYNAMO_TABLE_PUSH_TOKENS", "push_tokens"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		SNSPlatformAppARN: getEnv("SNS_PLATFORM_APPLICATION_ARN", ""),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),

		BadgePollInterval: getEnvDuration("BADGE_POLL_INTERVAL", 30*time.Second),
		FeedPageSize:      getEnvInt("FEED_PAGE_SIZE", 20),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
