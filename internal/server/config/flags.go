package config

import (
	"flag"
	"os"
	"time"

	"github.com/clubops/pointsledger/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   caller-token HMAC secret
//	-m string   privileged-role marker substring
//	-t int      purge confirmation TTL, seconds
//	-P          enable the purge commands
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-m", "-t", "-P", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenSecret, "s", config.TokenSecret, "caller token secret key")
	fs.StringVar(&config.PrivilegedMarker, "m", config.PrivilegedMarker, "privileged role marker")

	confirmTTL := fs.Int("t", int(config.ConfirmTTL.Seconds()), "purge confirmation TTL (in seconds)")
	fs.BoolVar(&config.EnablePurge, "P", config.EnablePurge, "enable purge commands")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ConfirmTTL = time.Duration(*confirmTTL) * time.Second
}
