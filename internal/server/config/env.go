package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotenvFiles are loaded (if present) before the environment is read.
// Variables already set in the process environment win.
var dotenvFiles = []string{".env"}

// parseEnv overlays environment variables onto config. Unset variables leave
// fields untouched. PORT is honored as a shorthand for HTTP_ADDR=":$PORT".
func parseEnv(config *Config) error {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" {
		config.EndpointAddrHTTP = ":" + port
	}
	return nil
}
