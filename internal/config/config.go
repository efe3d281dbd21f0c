package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	JWTSecret string

	// Streaming turn limits
	TurnTimeout time.Duration

	// Blob storage (image artifacts)
	UploadProvider      string // "cloudinary" or "local"
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	LocalUploadDir      string
	LocalUploadBaseURL  string

	// Billing webhook (plan grants arrive out-of-band)
	BillingSigningSecret string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		UploadProvider:       os.Getenv("UPLOAD_PROVIDER"),
		CloudinaryCloudName:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		LocalUploadDir:       os.Getenv("LOCAL_UPLOAD_DIR"),
		LocalUploadBaseURL:   os.Getenv("LOCAL_UPLOAD_BASE_URL"),
		BillingSigningSecret: os.Getenv("BILLING_SIGNING_SECRET"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.UploadProvider == "" {
		cfg.UploadProvider = "local"
	}
	if cfg.LocalUploadDir == "" {
		cfg.LocalUploadDir = "./uploads"
	}

	cfg.TurnTimeout = 60 * time.Second
	if raw := os.Getenv("TURN_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.TurnTimeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}
