package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	LogLevel string
	LogFile  string
	Dev      bool

	// MaxSteps caps resolver recursion per movement phase.
	MaxSteps int
	// StrictAdjustments rejects adjustment orders that civil disorder
	// would otherwise repair.
	StrictAdjustments bool
	// Output is "text" or "json".
	Output string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is read first if present;
// variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	output := strings.ToLower(envOrDefault("DIPJUDGE_OUTPUT", "text"))
	if output != "json" {
		output = "text"
	}
	return &Config{
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
		Dev:               envBool("DEV", false) || envBool("DEV_MODE", false),
		MaxSteps:          envInt("DIPJUDGE_MAX_STEPS", 100000),
		StrictAdjustments: envBool("DIPJUDGE_STRICT_ADJUSTMENTS", false),
		Output:            output,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
