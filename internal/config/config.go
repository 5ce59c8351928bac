package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort    string
	AppEnv     string
	AppBaseURL string // public site URL, used in email/push action links

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPublicKeyPath string

	SESFrom   string
	SNSRegion string

	FirebaseCredentialsPath string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceTiers    string // ordered "price_id:tier" pairs, comma-separated

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Notifications     string
	Settings          string
	Schedules         string
	PushSubscriptions string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:    getEnv("APP_PORT", "3000"),
		AppEnv:     getEnv("APP_ENV", "development"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Settings:          getEnv("DYNAMO_TABLE_NOTIFICATION_SETTINGS", "notification_settings"),
			Schedules:         getEnv("DYNAMO_TABLE_NOTIFICATION_SCHEDULES", "notification_schedules"),
			PushSubscriptions: getEnv("DYNAMO_TABLE_PUSH_SUBSCRIPTIONS", "push_subscriptions"),
		},

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		SESFrom:   getEnv("SES_FROM", "chef@successfulchefbrigade.com"),
		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceTiers:    getEnv("STRIPE_PRICE_TIERS", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// PriceTierList parses STRIPE_PRICE_TIERS ("price_123:brigade,price_456:guild")
// preserving order. Malformed pairs are skipped.
func (c *Config) PriceTierList() []PriceTierEntry {
	if c.StripePriceTiers == "" {
		return nil
	}
	var out []PriceTierEntry
	for _, pair := range strings.Split(c.StripePriceTiers, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		out = append(out, PriceTierEntry{PriceID: parts[0], Tier: parts[1]})
	}
	return out
}

// PriceTierEntry is one parsed price→tier pair. Kept string-typed here so the
// config package stays free of domain imports; the billing service converts.
type PriceTierEntry struct {
	PriceID string
	Tier    string
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
