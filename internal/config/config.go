package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the offer pipeline and API
type Config struct {
	Port              string
	Version           string
	LogLevel          string
	MailboxFolder     string // Folder containing .eml source messages
	ImageFolder       string // Where extracted images are written
	OutputFolder      string // Where offer artifacts and knowledge exports are written
	LedgerFile        string // JSON file tracking processed message identities
	MinImageDimension int    // Images declared smaller than this (both axes) are treated as tracking pixels
	FetchRemoteImages bool   // Whether to download HTML-referenced images over HTTP
	FetchTimeout      int    // Remote image fetch timeout in seconds
	CacheTTL          int    // API artifact cache TTL in seconds
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Version:           getEnv("VERSION", "1.0.0"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MailboxFolder:     getEnv("MAILBOX_FOLDER", "mailbox"),
		ImageFolder:       getEnv("IMAGE_OUTPUT_FOLDER", "extracted_images"),
		OutputFolder:      getEnv("OUTPUT_FOLDER", "offers"),
		LedgerFile:        getEnv("PROCESSED_IDS_FILE", "processed_ids.json"),
		MinImageDimension: getEnvInt("MIN_IMAGE_DIMENSION", 50),
		FetchRemoteImages: getEnvBool("FETCH_REMOTE_IMAGES", false),
		FetchTimeout:      getEnvInt("FETCH_TIMEOUT", 15),
		CacheTTL:          getEnvInt("CACHE_TTL", 60),
	}
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a default fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "leadbringer").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
