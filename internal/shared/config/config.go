package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port           string
	EspoCRMURL     string
	EspoCRMAPIKey  string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	LogLevel       string
	MaxFileSizeMB  int
	AllowedTypes   []string
	EnableCache    bool
	CacheTTLHours  int
	MaxAttachments int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of a local env file for dev convenience.
	_ = godotenv.Load(".env")

	return Config{
		Port:           getEnv("PORT", "5080"),
		EspoCRMURL:     strings.TrimRight(getEnv("ESPOCRM_URL", ""), "/"),
		EspoCRMAPIKey:  getEnv("ESPOCRM_API_KEY", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gemini-1.5-flash"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MaxFileSizeMB:  getEnvInt("MAX_FILE_SIZE_MB", 10),
		AllowedTypes:   splitAndTrim(getEnv("ALLOWED_FILE_TYPES", "pdf,doc,docx")),
		EnableCache:    getEnvBool("ENABLE_CACHE", true),
		CacheTTLHours:  getEnvInt("CACHE_TTL_HOURS", 24),
		MaxAttachments: getEnvInt("MAX_RESUME_ATTACHMENTS", 3),
	}
}

// AllowedExtensions returns the allowed file types as a lower-cased set.
func (c Config) AllowedExtensions() map[string]struct{} {
	out := make(map[string]struct{}, len(c.AllowedTypes))
	for _, t := range c.AllowedTypes {
		out[strings.ToLower(t)] = struct{}{}
	}
	return out
}

// MaxFileSizeBytes returns the configured size cap in bytes.
func (c Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
