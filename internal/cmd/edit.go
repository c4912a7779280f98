package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avolkov/botops/internal/tui"
)

var editUseEditor bool

var editCmd = &cobra.Command{
	Use:     "edit",
	GroupID: GroupRegistry,
	Short:   "Edit the registry interactively",
	Long: `Open an interactive editor over users.cfg.

By default a TUI lists all entries; 'a' adds, 'd' deletes, 'q' quits.
Every change is written through the same locked, atomic path as the
add/remove subcommands.

With --editor the file is opened in $EDITOR instead. Note that direct
edits bypass duplicate-ID validation.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editUseEditor, "editor", false, "Open users.cfg in $EDITOR instead of the TUI")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mgr := newManager(cfg)
	if err := mgr.EnsureInitialized(); err != nil {
		return err
	}

	if editUseEditor {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		ed := exec.Command(editor, mgr.Path())
		ed.Stdin = os.Stdin
		ed.Stdout = os.Stdout
		ed.Stderr = os.Stderr
		if err := ed.Run(); err != nil {
			return fmt.Errorf("running %s: %w", editor, err)
		}
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("edit needs a terminal; use --editor or the add/remove subcommands")
	}

	return tui.Run(mgr)
}
