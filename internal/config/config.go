// Package config reads the application's environment configuration.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

const defaultAPIURL = "http://localhost:9000/api/v1"

// Config carries everything the app reads from the environment.
type Config struct {
	// APIURL is the REST API base, including the version prefix.
	APIURL string
	// AppURL is the public web app; payment callbacks land there.
	AppURL string
	// StoreID identifies the merchant at the payment provider. Passed
	// through for display; the gateway integration is server-side.
	StoreID string
	// Debug enables the file-backed request log.
	Debug bool
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	godotenv.Load() //nolint:errcheck // .env is optional

	cfg := Config{
		APIURL:  os.Getenv("TURFBOOK_API_URL"),
		AppURL:  os.Getenv("TURFBOOK_APP_URL"),
		StoreID: os.Getenv("TURFBOOK_STORE_ID"),
		Debug:   os.Getenv("TURFBOOK_DEBUG") == "1",
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	return cfg
}
