// Package config holds botops settings loaded from an optional TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "botops.toml"

// Config holds paths and deployment settings for botops.
type Config struct {
	// RegistryPath is the users.cfg access-list file.
	RegistryPath string `toml:"registry_path"`

	// BackupDir receives timestamped registry backups.
	// Empty means "beside the registry".
	BackupDir string `toml:"backup_dir"`

	// SecretsPath is the env file holding the bot token. Its content is
	// never read by botops, only checked for existence.
	SecretsPath string `toml:"secrets_path"`

	// ComposeFile is the compose manifest passed to the orchestrator.
	ComposeFile string `toml:"compose_file"`

	// Service is the compose service name of the bot.
	Service string `toml:"service"`

	// LogDir is mounted into the running service and receives the
	// deploy step log.
	LogDir string `toml:"log_dir"`

	// DockerBin lets unusual hosts override the container engine binary
	// the orchestrator invokes.
	DockerBin string `toml:"docker_bin"`

	// StartupWaitSeconds is the fixed delay between starting the
	// service and reporting its status.
	StartupWaitSeconds int `toml:"startup_wait_seconds"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		RegistryPath:       "users.cfg",
		BackupDir:          "",
		SecretsPath:        ".env",
		ComposeFile:        "docker-compose.yml",
		Service:            "bot",
		LogDir:             "logs",
		DockerBin:          "docker",
		StartupWaitSeconds: 5,
	}
}

// Load reads settings from path. A missing file is not an error - the
// tool is usable with defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}
