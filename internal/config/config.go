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

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Sessions          string
	Scopes            string
	DigitalKeys       string
	Posts             string
	Comments          string
	Events            string
	RSVPs             string
	Teachers          string
	TeacherReviews    string
	ScheduleSlots     string
	StudySources      string
	PeerRatings       string
	Notifications     string
	UserVerifications string
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
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:          getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Scopes:            getEnv("DYNAMO_TABLE_SCOPES", "scopes"),
			DigitalKeys:       getEnv("DYNAMO_TABLE_DIGITAL_KEYS", "digital_keys"),
			Posts:             getEnv("DYNAMO_TABLE_POSTS", "posts"),
			Comments:          getEnv("DYNAMO_TABLE_COMMENTS", "comments"),
			Events:            getEnv("DYNAMO_TABLE_EVENTS", "events"),
			RSVPs:             getEnv("DYNAMO_TABLE_RSVPS", "event_rsvps"),
			Teachers:          getEnv("DYNAMO_TABLE_TEACHERS", "teachers"),
			TeacherReviews:    getEnv("DYNAMO_TABLE_TEACHER_REVIEWS", "teacher_reviews"),
			ScheduleSlots:     getEnv("DYNAMO_TABLE_SCHEDULE_SLOTS", "schedule_slots"),
			StudySources:      getEnv("DYNAMO_TABLE_STUDY_SOURCES", "study_sources"),
			PeerRatings:       getEnv("DYNAMO_TABLE_PEER_RATINGS", "peer_ratings"),
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			UserVerifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
		},

		S3BucketName: getEnv("S3_BUCKET_NAME", "schoolyard-sources"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@schoolyard.local"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

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
