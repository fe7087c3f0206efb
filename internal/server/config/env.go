package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// parseEnv overlays Config fields from environment variables using the
// struct's env tags. Variables that are not set leave the current values
// untouched, so defaults survive.
func parseEnv(config *Config) {
	if err := envconfig.Process(context.Background(), config); err != nil {
		panic(err)
	}
}
