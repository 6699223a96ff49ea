package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SslCertPath string
	Port        string

	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	LLMModel          string
	LLMTemperature    float64
	LLMMaxTokens      int
	LLMTimeout        time.Duration
	SiteURL           string
	SiteName          string
	AIAPIKey          string
	GenModel          string

	BrandName       string
	SupportPhone    string
	SupportEmail    string
	SupportWhatsApp string
	SupportHelpURL  string

	JWTSecret         string
	AdminPasswordHash string
	CorsOrigins       []string

	RegenerateWorkers int
	StatsCacheTTL     time.Duration

	LogFile  string
	LogLevel string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
}

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),
		Port:        getEnv("PORT", "8080"),

		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenRouter)),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:          getEnv("LLM_MODEL", "z-ai/glm-4.5-air:free"),
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 500),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		SiteURL:           getEnv("SITE_URL", "http://localhost:3000"),
		SiteName:          getEnv("SITE_NAME", "Reviewdesk AI Feedback"),
		AIAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GenModel:          getEnv("GEN_MODEL", "gemini-1.5-flash"),

		// empty brand fields fall back to prompts.DefaultBrand
		BrandName:       getEnv("BRAND_NAME", ""),
		SupportPhone:    getEnv("SUPPORT_PHONE", ""),
		SupportEmail:    getEnv("SUPPORT_EMAIL", ""),
		SupportWhatsApp: getEnv("SUPPORT_WHATSAPP", ""),
		SupportHelpURL:  getEnv("SUPPORT_HELP_URL", ""),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		CorsOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		RegenerateWorkers: getEnvInt("REGENERATE_WORKERS", 4),
		StatsCacheTTL:     getEnvDuration("STATS_CACHE_TTL", 30*time.Second),

		LogFile:  getEnv("LOG_FILE", "reviewdesk.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
	}

	return cfg
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}

	switch c.LLMProvider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			errs = append(errs, errors.New("OPENROUTER_API_KEY not set"))
		}
	case ProviderGemini:
		if c.AIAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}

	if c.RegenerateWorkers < 1 {
		errs = append(errs, fmt.Errorf("REGENERATE_WORKERS must be at least 1, got %d", c.RegenerateWorkers))
	}
	if c.JWTSecret != "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH must be set when JWT_SECRET is set"))
	}

	return errors.Join(errs...)
}

// ExportEnabled reports whether object storage is configured for exports.
func (c *Config) ExportEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a number, using default %v", key, v, def)
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
