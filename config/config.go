package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	ListenAddr string

	// Admin API token for the manual withdrawal endpoints
	AdminToken string

	// Payment gateway configuration
	GatewayBaseURL   string
	GatewaySecretKey string
	WebhookSecret    string

	// Base URL used to build callback/return URLs handed to the gateway
	PublicBaseURL string

	// Starting balance granted to newly registered users, in cents
	StartingBalance int64

	// Environment: "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from a .env file (if present) and the environment
func load() (*Config, error) {
	// Missing .env is fine; real deployments set environment variables directly.
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		GatewayBaseURL:   os.Getenv("GATEWAY_BASE_URL"),
		GatewaySecretKey: os.Getenv("GATEWAY_SECRET_KEY"),
		WebhookSecret:    os.Getenv("GATEWAY_WEBHOOK_SECRET"),
		PublicBaseURL:    os.Getenv("PUBLIC_BASE_URL"),
		StartingBalance:  0,
		Environment:      os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.GatewayBaseURL == "" {
		config.GatewayBaseURL = "https://api.chapa.co/v1"
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.GatewaySecretKey == "" {
			return nil, fmt.Errorf("GATEWAY_SECRET_KEY is required")
		}
	}

	return config, nil
}
