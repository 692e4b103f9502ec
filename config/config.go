package config

import (
	"errors"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	AllowedOrigin string
	StaticDir     string // Landing page assets; empty disables static serving
	TrustProxy    bool   // Read client IP from X-Forwarded-For / X-Real-IP
	// Order Endpoint (Google Apps Script web app)
	ScriptURL     string
	ProductName   string
	SubmitTimeout time.Duration // 0 = no timeout
	// Form Sessions
	SessionTTL     time.Duration
	SessionCleanup time.Duration
	// Rate Limiting
	RateLimitRPS        float64
	RateLimitBurst      int
	OrderRateLimitRPS   float64
	OrderRateLimitBurst int
	// Facebook Conversions API
	FBPixelID     string
	FBAccessToken string
	FBAPIVersion  string
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: Try loading .env (standard local dev)
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	return cfg
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		StaticDir:     getEnv("STATIC_DIR", ""),
		TrustProxy:    getBoolEnv("TRUST_PROXY", false),

		ScriptURL:     getEnv("SCRIPT_URL", ""),
		ProductName:   getEnv("PRODUCT_NAME", "YN Rice Cooker 1.8L"),
		SubmitTimeout: getDurationEnv("SUBMIT_TIMEOUT", 0),

		// Sessions default: 30m idle lifetime, cleanup every 10m
		SessionTTL:     getDurationEnv("SESSION_TTL", 30*time.Minute),
		SessionCleanup: getDurationEnv("SESSION_CLEANUP", 10*time.Minute),

		// 20 req/s burst 40 overall, 1 order/s burst 3 per IP
		RateLimitRPS:        getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst:      getIntEnv("RATE_LIMIT_BURST", 40),
		OrderRateLimitRPS:   getFloatEnv("ORDER_RATE_LIMIT_RPS", 1),
		OrderRateLimitBurst: getIntEnv("ORDER_RATE_LIMIT_BURST", 3),

		FBPixelID:     getEnv("FB_PIXEL_ID", ""),
		FBAccessToken: getEnv("FB_ACCESS_TOKEN", ""),
		FBAPIVersion:  getEnv("FB_API_VERSION", "v19.0"),
	}
}

func (c *Config) Validate() error {
	if c.ScriptURL == "" {
		return errors.New("SCRIPT_URL environment variable is required")
	}
	u, err := url.Parse(c.ScriptURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("SCRIPT_URL must be an absolute URL")
	}
	if c.SubmitTimeout < 0 {
		return errors.New("SUBMIT_TIMEOUT must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Env == "production" && c.AllowedOrigin == "*" {
		log.Println("WARNING: ALLOWED_ORIGIN is '*' in production.")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}
