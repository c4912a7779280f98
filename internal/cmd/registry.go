package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avolkov/botops/internal/registry"
	"github.com/avolkov/botops/internal/style"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: GroupRegistry,
	Short:   "Show admins and users from the registry",
	Long: `List all entries from users.cfg, grouped by section.

A missing registry file is created empty rather than reported as an
error, so 'list' is always safe to run first.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var addAdminCmd = &cobra.Command{
	Use:     "add-admin <id> [name...]",
	GroupID: GroupRegistry,
	Short:   "Add an ID to the ADMINS section",
	Long: `Register a numeric Telegram ID as an administrator.

Everything after the ID becomes the display-name comment.

Examples:
  botops add-admin 123456789
  botops add-admin 123456789 Anna Petrova`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(registry.SectionAdmins, args)
	},
}

var addUserCmd = &cobra.Command{
	Use:     "add-user <id> [name...]",
	GroupID: GroupRegistry,
	Short:   "Add an ID to the USERS section",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdd(registry.SectionUsers, args)
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	GroupID: GroupRegistry,
	Short:   "Remove an ID from whichever section holds it",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var backupCmd = &cobra.Command{
	Use:     "backup",
	GroupID: GroupRegistry,
	Short:   "Save a timestamped copy of the registry",
	Args:    cobra.NoArgs,
	RunE:    runBackup,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addAdminCmd)
	rootCmd.AddCommand(addUserCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(backupCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	admins, users, err := newManager(cfg).List()
	if err != nil {
		return err
	}

	printSection(registry.SectionAdmins, admins)
	fmt.Println()
	printSection(registry.SectionUsers, users)

	if len(admins) == 0 {
		fmt.Printf("\n%s No admins registered. The bot refuses to start without at least one.\n", style.Warn())
	}
	return nil
}

func printSection(section registry.Section, entries []registry.Entry) {
	fmt.Println(style.Render(style.Section, section.Header()))
	if len(entries) == 0 {
		fmt.Println(style.Render(style.Dim, "  (empty)"))
		return
	}

	width := 0
	for _, e := range entries {
		if len(e.ID) > width {
			width = len(e.ID)
		}
	}
	for _, e := range entries {
		if e.Name == "" {
			fmt.Printf("  %s\n", e.ID)
			continue
		}
		fmt.Printf("  %-*s  %s\n", width, e.ID, style.Render(style.Dim, e.Name))
	}
}

func runAdd(section registry.Section, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	id := args[0]
	name := strings.Join(args[1:], " ")

	mgr := newManager(cfg)
	var addErr error
	if section == registry.SectionAdmins {
		addErr = mgr.AddAdmin(id, name)
	} else {
		addErr = mgr.AddUser(id, name)
	}
	if addErr != nil {
		return addErr
	}

	fmt.Printf("%s Added %s to %s\n", style.OK(), id, section)
	fmt.Println(style.Render(style.Dim, "Run 'botops reload' to apply the change to the running bot."))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := newManager(cfg).Remove(args[0]); err != nil {
		return err
	}

	fmt.Printf("%s Removed %s\n", style.OK(), args[0])
	fmt.Println(style.Render(style.Dim, "Run 'botops reload' to apply the change to the running bot."))
	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := newManager(cfg).Backup()
	if err != nil {
		return err
	}

	fmt.Printf("%s Backup written to %s\n", style.OK(), path)
	return nil
}
