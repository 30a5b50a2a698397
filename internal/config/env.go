// Package config provides centralized configuration management.
// All environment lookups live here instead of scattered os.Getenv calls.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Env holds all slidegen environment variables.
type Env struct {
	// APIBaseURL is the backend base URL (SLIDEGEN_API_URL)
	APIBaseURL string

	// HTTPTimeout is the per-request timeout (SLIDEGEN_TIMEOUT_SECONDS)
	HTTPTimeout time.Duration

	// NoColor disables colored output (SLIDEGEN_NO_COLOR)
	NoColor bool

	// Debug enables debug-level logging (SLIDEGEN_DEBUG)
	Debug bool

	// DataDir overrides the default data directory (SLIDEGEN_DATA_DIR)
	DataDir string
}

var (
	env     *Env
	envOnce sync.Once
)

// Get returns the singleton environment configuration.
// Thread-safe, loads once on first call. The ~/.slidegen/.env file is
// loaded first so it can supply any of the variables.
func Get() *Env {
	envOnce.Do(func() {
		godotenv.Load(GetPaths().EnvFile)

		env = &Env{
			APIBaseURL:  getEnvDefault("SLIDEGEN_API_URL", "http://localhost:8000"),
			HTTPTimeout: time.Duration(getEnvInt("SLIDEGEN_TIMEOUT_SECONDS", 30)) * time.Second,
			NoColor:     os.Getenv("SLIDEGEN_NO_COLOR") == "1",
			Debug:       os.Getenv("SLIDEGEN_DEBUG") == "1",
			DataDir:     os.Getenv("SLIDEGEN_DATA_DIR"),
		}
	})
	return env
}

// Reset clears the cached environment (for testing).
func Reset() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Paths holds standard slidegen directory paths.
type Paths struct {
	// Home is the slidegen home directory (~/.slidegen)
	Home string

	// DBFile is the local database path (~/.slidegen/slidegen.db)
	DBFile string

	// EnvFile is the .env file path (~/.slidegen/.env)
	EnvFile string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		root := os.Getenv("SLIDEGEN_DATA_DIR")
		if root == "" {
			root = filepath.Join(home, ".slidegen")
		}

		paths = &Paths{
			Home:    root,
			DBFile:  filepath.Join(root, "slidegen.db"),
			EnvFile: filepath.Join(root, ".env"),
		}
	})
	return paths
}

// ResetPaths clears the cached paths (for testing).
func ResetPaths() {
	pathsOnce = sync.Once{}
	paths = nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
