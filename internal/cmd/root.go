// Package cmd implements the botops command-line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/avolkov/botops/internal/config"
	"github.com/avolkov/botops/internal/registry"
)

// Command group IDs for help organization.
const (
	GroupRegistry = "registry"
	GroupDeploy   = "deploy"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "botops",
	Short: "Deploy and administer the Telegram bot",
	Long: `botops deploys the containerized Telegram bot and edits its
users.cfg access list.

The registry file has two sections, [ADMINS] and [USERS], with one
numeric Telegram ID per line and an optional "# display name" comment.
The running bot re-reads the file on SIGHUP or on the /reload_users
command from an admin.

Examples:
  botops list                      # Show both access lists
  botops add-admin 123456789 Anna  # Grant admin access
  botops remove 123456789          # Revoke access
  botops reload                    # Tell the running bot to re-read users.cfg
  botops deploy                    # Preflight checks, then rebuild and restart`,
	SilenceUsage: true,
	// An unknown or absent subcommand shows usage and exits clean.
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the botops settings file")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRegistry, Title: "User registry:"},
		&cobra.Group{ID: GroupDeploy, Title: "Deployment:"},
	)
}

// Execute runs the CLI and returns the command error, if any.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the settings file named by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newManager builds the registry manager for the configured paths.
func newManager(cfg *config.Config) *registry.Manager {
	return registry.NewManager(cfg.RegistryPath, cfg.BackupDir)
}
