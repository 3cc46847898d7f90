package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string `env:"HUNT_HTTP_ADDR"       envDefault:":8080"`
	OutputDir      string `env:"HUNT_OUTPUT_DIR"      envDefault:".output"`
	StatusFile     string `env:"HUNT_STATUS_FILE"     envDefault:"draft_status.txt"`
	LogLevel       string `env:"HUNT_LOG_LEVEL"       envDefault:"info"`
	LogDevelopment bool   `env:"HUNT_LOG_DEVELOPMENT" envDefault:"false"`
	// ScriptPath overrides the autosplitter script path in split files.
	ScriptPath string `env:"HUNT_SCRIPT_PATH"`
	// RNGSeed fixes the coin flip and stage ordering stream; 0 means random.
	RNGSeed uint64 `env:"HUNT_RNG_SEED" envDefault:"0"`
}

// Load reads .env files (missing ones are skipped) and then the process
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
