package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultManimServiceURL = "https://visual-wizard-renders-docker123.onrender.com"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultBucket          = "animations"
)

type Config struct {
	Host     string
	Port     string
	LogLevel string

	DatabaseDriver string
	DatabaseURL    string
	AutoMigrate    bool

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string

	ManimServiceURL string

	StorageBackend  string
	StorageBucket   string
	SupabaseURL     string
	SupabaseKey     string
	GCSCDNDomain    string
	LocalStorageDir string
	PublicBaseURL   string

	CORSAllowedOrigins   []string
	PipelineDrainTimeout time.Duration
}

// LoadConfig reads the environment (and an optional .env file) and exits the
// process when the configuration is unusable.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warnf("No .env file loaded, using process environment: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		Host:     os.Getenv("HOST"),
		Port:     os.Getenv("PORT"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AutoMigrate:    parseBool(os.Getenv("AUTO_MIGRATE")),

		LLMProvider:   strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),

		ManimServiceURL: os.Getenv("MANIM_SERVICE_URL"),

		StorageBackend:  strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND"))),
		StorageBucket:   os.Getenv("STORAGE_BUCKET"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseKey:     os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		GCSCDNDomain:    os.Getenv("GCS_CDN_DOMAIN"),
		LocalStorageDir: os.Getenv("LOCAL_STORAGE_DIR"),
		PublicBaseURL:   os.Getenv("PUBLIC_BASE_URL"),
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "postgres"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "openai"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = DefaultOpenAIModel
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultGeminiModel
	}
	if cfg.ManimServiceURL == "" {
		cfg.ManimServiceURL = DefaultManimServiceURL
	}
	cfg.ManimServiceURL = strings.TrimRight(cfg.ManimServiceURL, "/")
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = "supabase"
	}
	if cfg.StorageBucket == "" {
		cfg.StorageBucket = DefaultBucket
	}
	if cfg.LocalStorageDir == "" {
		cfg.LocalStorageDir = "./data/videos"
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	cfg.PipelineDrainTimeout = 2 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("PIPELINE_DRAIN_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("PIPELINE_DRAIN_TIMEOUT: %w", err)
		}
		cfg.PipelineDrainTimeout = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is not set")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for supabase storage")
		}
	case "gcs", "local":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
