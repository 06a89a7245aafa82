// Package config provides functionality for loading environment variables
// and the application configuration.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	envOnce   sync.Once
	envLoaded string
)

// LoadEnv loads environment variables from a .env file in the current or parent
// directory, once per process. Variables already set in the environment win.
// It returns the path of the loaded file, or "" when none was found.
func LoadEnv() string {
	envOnce.Do(func() {
		envLoaded = loadEnvFrom(".env", filepath.Join("..", ".env"))
	})
	return envLoaded
}

func loadEnvFrom(candidates ...string) string {
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			continue
		}
		return envFile
	}
	return ""
}
