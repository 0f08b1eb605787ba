package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	Port        string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	DBSSLMode     string
	DBAutoMigrate bool

	RedisAddr string

	KafkaBroker        string
	KafkaEventsTopic   string
	KafkaConsumerGroup string
	OutboxPollInterval time.Duration

	JWTSecret        string
	WSAllowedOrigins []string

	AnnualLeaveEntitlement float64
	BalanceCacheTTL        time.Duration

	RateLimitPerSecond float64
	RateLimitBurst     int

	StorageEndpoint        string
	StorageBucket          string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StorageRegion          string
	SickNoteMaxBytes       int64

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// MailDriver selects "smtp" or "ses". Empty picks smtp when SMTP is
	// configured and disables mail otherwise.
	MailDriver string
	SESRegion  string
	AppBaseURL string
}

// Load reads the configuration from the environment. Callers are expected to
// have loaded .env (godotenv) beforehand.
func Load() Config {
	return Config{
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "3000"),

		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "hr_calendar"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		KafkaBroker:        getEnv("KAFKA_BROKER", ""),
		KafkaEventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "hr.calendar.events.v1"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "hr-calendar-notifications"),
		OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		WSAllowedOrigins: getEnvList("WS_ALLOWED_ORIGINS"),

		AnnualLeaveEntitlement: getEnvFloat("ANNUAL_LEAVE_ENTITLEMENT", 21),
		BalanceCacheTTL:        getEnvDuration("BALANCE_CACHE_TTL", 10*time.Minute),

		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),

		StorageEndpoint:        getEnv("R2_ENDPOINT", ""),
		StorageBucket:          getEnv("R2_BUCKET", ""),
		StorageAccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		StorageSecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		StorageRegion:          getEnv("R2_REGION", "auto"),
		SickNoteMaxBytes:       int64(getEnvInt("SICK_NOTE_MAX_BYTES", 10*1024*1024)),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM_EMAIL", ""),

		MailDriver: strings.ToLower(getEnv("MAIL_DRIVER", "")),
		SESRegion:  getEnv("SES_REGION", "ap-southeast-2"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:5173"),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c Config) StorageEnabled() bool {
	return c.StorageEndpoint != "" && c.StorageBucket != "" &&
		c.StorageAccessKeyID != "" && c.StorageSecretAccessKey != ""
}

func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
