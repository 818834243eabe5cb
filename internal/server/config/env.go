package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading a
// .env file first when one is present (docker-compose passes settings this
// way in development).
//
// Recognized variables: DATABASE_DSN, TOKEN_SECRET, PRIVILEGED_MARKER,
// CONFIRM_TTL_SECONDS, PURGE_COMMANDS, S3_ROOT_USER, S3_ROOT_PASSWORD,
// S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("TOKEN_SECRET"); v != "" {
		config.TokenSecret = v
	}
	if v := os.Getenv("PRIVILEGED_MARKER"); v != "" {
		config.PrivilegedMarker = v
	}
	if v := os.Getenv("CONFIRM_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.ConfirmTTL = time.Duration(n) * time.Second
		}
	}
	if os.Getenv("PURGE_COMMANDS") == "1" {
		config.EnablePurge = true
	}
	if v := os.Getenv("S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
