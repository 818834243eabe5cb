package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "cabinet", cfg.PrivilegedMarker)
	assert.Equal(t, 30*time.Second, cfg.ConfirmTTL)
	assert.Equal(t, 25, cfg.SuggestLimit)
	assert.False(t, cfg.EnablePurge)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.S3Bucket)
}

func TestParseJSON_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{
		"database_dsn": "postgres://u:p@h:5432/db",
		"privileged_marker": "board",
		"confirm_ttl_seconds": 45,
		"enable_purge": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"server", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)

	assert.Equal(t, "postgres://u:p@h:5432/db", cfg.DatabaseDSN)
	assert.Equal(t, "board", cfg.PrivilegedMarker)
	assert.Equal(t, 45*time.Second, cfg.ConfirmTTL)
	assert.True(t, cfg.EnablePurge)
	// untouched fields keep their defaults
	assert.Equal(t, "secretKey", cfg.TokenSecret)
	assert.Equal(t, 25, cfg.SuggestLimit)
}

func TestParseJSON_NoFile(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"server"}

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg
	parseJSON(cfg)

	assert.Equal(t, want, *cfg)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("PURGE_COMMANDS", "1")
	t.Setenv("CONFIRM_TTL_SECONDS", "10")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.True(t, cfg.EnablePurge)
	assert.Equal(t, 10*time.Second, cfg.ConfirmTTL)
}

func TestParseFlags_Overlay(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"server", "-d", "postgres://flag", "-t", "60", "-m", "exec"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "postgres://flag", cfg.DatabaseDSN)
	assert.Equal(t, 60*time.Second, cfg.ConfirmTTL)
	assert.Equal(t, "exec", cfg.PrivilegedMarker)
}
