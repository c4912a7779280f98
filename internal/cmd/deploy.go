package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/botops/internal/deploy"
	"github.com/avolkov/botops/internal/preflight"
	"github.com/avolkov/botops/internal/style"
)

const deployTimeout = 10 * time.Minute

var deployCmd = &cobra.Command{
	Use:     "deploy",
	GroupID: GroupDeploy,
	Short:   "Validate the environment, then rebuild and restart the bot",
	Long: `Run the preflight checks and, if they pass, redeploy the bot:
stop any previous instance, build a fresh image, start the service
detached, wait briefly, and report its status.

Preflight stops at the first missing tool or file. Use 'botops doctor'
to see every check at once.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDeploy,
	Short:   "Report the state of every preflight check",
	Args:    cobra.NoArgs,
	RunE:    runDoctor,
}

var reloadPrint bool

var reloadCmd = &cobra.Command{
	Use:     "reload",
	GroupID: GroupDeploy,
	Short:   "Tell the running bot to re-read the user registry",
	Long: `Send SIGHUP to the bot container via the orchestrator so it
reloads users.cfg, and report whether the signal was delivered.

With --print, only the manual reload instructions are shown.`,
	Args: cobra.NoArgs,
	RunE: runReload,
}

func init() {
	reloadCmd.Flags().BoolVar(&reloadPrint, "print", false, "Print manual reload instructions instead of signalling")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(reloadCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), deployTimeout)
	defer cancel()

	runner := deploy.NewRunner(cfg, deploy.NewCompose(cfg), os.Stdout)
	if err := runner.Deploy(ctx); err != nil {
		return err
	}

	fmt.Printf("%s %s deployed\n", style.OK(), cfg.Service)
	return nil
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	failures := 0
	for _, res := range preflight.All(preflight.NewContext(cfg)) {
		if res.Status == preflight.StatusOK {
			fmt.Printf("%s %-16s %s\n", style.OK(), res.Name, res.Message)
			continue
		}
		failures++
		fmt.Printf("%s %-16s %s\n", style.Fail(), res.Name, res.Message)
		if res.FixHint != "" {
			fmt.Printf("  %s\n", style.Render(style.Dim, res.FixHint))
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Printf("\n%s Environment is ready to deploy\n", style.OK())
	return nil
}

func runReload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner := deploy.NewRunner(cfg, deploy.NewCompose(cfg), os.Stdout)

	if reloadPrint {
		fmt.Print(runner.AdvisoryReload())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := runner.Reload(ctx); err != nil {
		return err
	}

	fmt.Printf("%s Sent SIGHUP to %s; registry will be re-read\n", style.OK(), cfg.Service)
	return nil
}
