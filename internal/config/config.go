package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port         string
	DatabasePath string

	// Autotrader feed
	DealerURL         string
	ChromeBin         string
	NavigationTimeout time.Duration
	SettleWait        time.Duration
	SyncMarkMissing   bool
	SyncCooldown      time.Duration

	// Image relocation
	ImageDir        string
	ImageBaseURL    string
	RelocateWorkers int

	// Admin bootstrap account
	AdminUsername string
	AdminPassword string

	// Enquiry relay
	EnquiryWebhookURL    string
	EnquiryWebhookSecret string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system env vars")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/platinum.db"),

		DealerURL: getEnv("AUTOTRADER_DEALER_URL",
			"https://www.autotrader.co.uk/dealers/greater-london/platinum-motors"),
		ChromeBin:         getEnv("CHROME_BIN", ""),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 60*time.Second),
		SettleWait:        getEnvDuration("SETTLE_WAIT", 3*time.Second),
		SyncMarkMissing:   getEnvBool("SYNC_MARK_MISSING", false),
		SyncCooldown:      getEnvDuration("SYNC_COOLDOWN", 10*time.Minute),

		ImageDir:        getEnv("IMAGE_DIR", "./data/images"),
		ImageBaseURL:    getEnv("IMAGE_BASE_URL", "/images"),
		RelocateWorkers: getEnvInt("RELOCATE_WORKERS", 4),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		EnquiryWebhookURL:    getEnv("ENQUIRY_WEBHOOK_URL", ""),
		EnquiryWebhookSecret: getEnv("ENQUIRY_WEBHOOK_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
