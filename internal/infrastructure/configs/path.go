package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/quorum/internal/infrastructure/env"
)

// DeterminePath resolves the config file location: --config flag, then the
// QUORUM_CONFIG env var, then well-known locations. An empty result means no
// config file; defaults and env vars still apply.
func DeterminePath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("QUORUM_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/quorum/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
