package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/clubops/pointsledger/internal/flagx"
)

// jsonConfig is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config. Durations are given in seconds.
type jsonConfig struct {
	DatabaseDSN       string `json:"database_dsn"`
	TokenSecret       string `json:"token_secret"`
	PrivilegedMarker  string `json:"privileged_marker"`
	ConfirmTTLSeconds int    `json:"confirm_ttl_seconds"`
	SuggestLimit      int    `json:"suggest_limit"`
	EnablePurge       bool   `json:"enable_purge"`
	S3RootUser        string `json:"s3_root_user"`
	S3RootPassword    string `json:"s3_root_password"`
	S3Bucket          string `json:"s3_bucket"`
	S3Region          string `json:"s3_region"`
	S3BaseEndpoint    string `json:"s3_base_endpoint"`
}

// parseJSON loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no file is named, the
// Config is left untouched. An unreadable or invalid file panics: a named
// config file that cannot be applied is a deployment error, not a
// condition to run through.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &jsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TokenSecret != "" {
		config.TokenSecret = c.TokenSecret
	}
	if c.PrivilegedMarker != "" {
		config.PrivilegedMarker = c.PrivilegedMarker
	}
	if c.ConfirmTTLSeconds > 0 {
		config.ConfirmTTL = time.Duration(c.ConfirmTTLSeconds) * time.Second
	}
	if c.SuggestLimit > 0 {
		config.SuggestLimit = c.SuggestLimit
	}
	if c.EnablePurge {
		config.EnablePurge = true
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
