// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama   = "ollama"
	ProviderGemini   = "gemini"
	ProviderMoonshot = "moonshot"

	defaultMoonshotURL = "https://api.moonshot.ai/v1"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// JWTConfig provides JWT validation settings for the admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetChatRateLimitPerMinute() int
}

// CompletionConfig provides settings for the text-completion collaborator.
type CompletionConfig interface {
	GetLLMProvider() string
	GetLLMAPIURL() string
	GetLLMAPIKey() string
	GetLLMModel() string
	GetLLMConnectTimeout() time.Duration
	GetLLMReadTimeout() time.Duration
}

// SessionConfig provides conversation memory settings.
type SessionConfig interface {
	GetHistoryLimit() int
	GetSessionTTL() time.Duration
	GetSessionSweepInterval() time.Duration
}

// MeetingConfig provides settings for meeting link generation.
type MeetingConfig interface {
	GetMeetingBaseURL() string
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// CRMConfig provides settings for the CRM lead sink.
type CRMConfig interface {
	GetCRMWebhookURL() string
	GetCRMAPIToken() string
	IsCRMEnabled() bool
}

// SMTPConfig provides settings for meeting confirmation e-mails.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromAddress() string
	GetSMTPFromName() string
	IsSMTPEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	ChatRateLimitPerMinute int
	JWTAccessSecret        string
	LLMProvider            string
	LLMAPIURL              string
	LLMAPIKey              string
	LLMModel               string
	LLMConnectTimeout      time.Duration
	LLMReadTimeout         time.Duration
	HistoryLimit           int
	SessionTTL             time.Duration
	SessionSweepInterval   time.Duration
	MeetingBaseURL         string
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	CRMWebhookURL          string
	CRMAPIToken            string
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	SMTPFromAddress        string
	SMTPFromName           string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool        { return c.CORSAllowCreds }
func (c *Config) GetChatRateLimitPerMinute() int { return c.ChatRateLimitPerMinute }

// CompletionConfig implementation
func (c *Config) GetLLMProvider() string               { return c.LLMProvider }
func (c *Config) GetLLMAPIURL() string                 { return c.LLMAPIURL }
func (c *Config) GetLLMAPIKey() string                 { return c.LLMAPIKey }
func (c *Config) GetLLMModel() string                  { return c.LLMModel }
func (c *Config) GetLLMConnectTimeout() time.Duration { return c.LLMConnectTimeout }
func (c *Config) GetLLMReadTimeout() time.Duration    { return c.LLMReadTimeout }

// SessionConfig implementation
func (c *Config) GetHistoryLimit() int                    { return c.HistoryLimit }
func (c *Config) GetSessionTTL() time.Duration            { return c.SessionTTL }
func (c *Config) GetSessionSweepInterval() time.Duration { return c.SessionSweepInterval }

// MeetingConfig implementation
func (c *Config) GetMeetingBaseURL() string { return c.MeetingBaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// CRMConfig implementation
func (c *Config) GetCRMWebhookURL() string { return c.CRMWebhookURL }
func (c *Config) GetCRMAPIToken() string   { return c.CRMAPIToken }
func (c *Config) IsCRMEnabled() bool       { return c.CRMWebhookURL != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFromAddress() string { return c.SMTPFromAddress }
func (c *Config) GetSMTPFromName() string    { return c.SMTPFromName }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFromAddress != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		ChatRateLimitPerMinute: mustInt(getEnv("CHAT_RATE_LIMIT_PER_MIN", "30"), 30),
		JWTAccessSecret:        getEnv("JWT_ACCESS_SECRET", ""),
		LLMProvider:            strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", ProviderOllama))),
		LLMAPIURL:              getEnv("LLM_API_URL", "http://localhost:11434/api/chat"),
		LLMAPIKey:              getEnv("LLM_API_KEY", ""),
		LLMModel:               getEnv("LLM_MODEL", "llama3.1"),
		LLMConnectTimeout:      mustDuration(getEnv("LLM_CONNECT_TIMEOUT", "5s"), 5*time.Second),
		LLMReadTimeout:         mustDuration(getEnv("LLM_READ_TIMEOUT", "25s"), 25*time.Second),
		HistoryLimit:           mustInt(getEnv("HISTORY_LIMIT", "20"), 20),
		SessionTTL:             mustDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
		SessionSweepInterval:   mustDuration(getEnv("SESSION_SWEEP_INTERVAL", "10m"), 10*time.Minute),
		MeetingBaseURL:         strings.TrimRight(getEnv("MEETING_BASE_URL", "https://meet.workmarket.ai"), "/"),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "5"), 5),
		CRMWebhookURL:          getEnv("CRM_WEBHOOK_URL", ""),
		CRMAPIToken:            getEnv("CRM_API_TOKEN", ""),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               mustInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPFromAddress:        getEnv("SMTP_FROM_ADDRESS", ""),
		SMTPFromName:           getEnv("SMTP_FROM_NAME", "WorkMarket"),
	}

	switch cfg.LLMProvider {
	case ProviderOllama:
		if cfg.LLMAPIURL == "" {
			return nil, fmt.Errorf("LLM_API_URL is required when LLM_PROVIDER is %s", ProviderOllama)
		}
	case ProviderGemini, ProviderMoonshot:
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required when LLM_PROVIDER is %s", cfg.LLMProvider)
		}
		if cfg.LLMProvider == ProviderMoonshot && os.Getenv("LLM_API_URL") == "" {
			cfg.LLMAPIURL = defaultMoonshotURL
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if cfg.LLMModel == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
