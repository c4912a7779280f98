// Package deploy sequences the container lifecycle for the bot service.
package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/botops/internal/config"
	"github.com/avolkov/botops/internal/preflight"
	"github.com/avolkov/botops/internal/style"
)

// deployLogName is the step log appended inside the mounted log dir.
const deployLogName = "deploy.log"

// Runner validates the environment and drives the orchestrator through
// a full redeploy. It owns no lifecycle logic itself.
type Runner struct {
	cfg  *config.Config
	orch Orchestrator
	out  io.Writer

	// preflightFn and sleep are swappable for tests.
	preflightFn func() error
	sleep       func(time.Duration)
}

// NewRunner creates a Runner using the real host preflight.
func NewRunner(cfg *config.Config, orch Orchestrator, out io.Writer) *Runner {
	return &Runner{
		cfg:  cfg,
		orch: orch,
		out:  out,
		preflightFn: func() error {
			return preflight.First(preflight.NewContext(cfg))
		},
		sleep: time.Sleep,
	}
}

// Deploy runs preflight, then stop/build/start/status. A failing stop is
// tolerated - "no prior instance" is not an error. Build and start
// failures abort the sequence.
func (r *Runner) Deploy(ctx context.Context) error {
	if err := r.preflightFn(); err != nil {
		return err
	}

	if err := os.MkdirAll(r.cfg.LogDir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	log, closeLog, err := r.openLog()
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info().Str("service", r.cfg.Service).Msg("deploy started")

	r.step(log, "stopping previous instance")
	if err := r.orch.Down(ctx); err != nil {
		// No prior instance, or already stopped.
		log.Warn().Err(err).Msg("down failed, continuing")
		fmt.Fprintln(r.out, "  (no previous instance)")
	}

	r.step(log, "building image")
	if err := r.orch.Build(ctx); err != nil {
		log.Error().Err(err).Msg("build failed")
		return fmt.Errorf("building image: %w", err)
	}

	r.step(log, "starting service")
	if err := r.orch.Up(ctx); err != nil {
		log.Error().Err(err).Msg("start failed")
		return fmt.Errorf("starting service: %w", err)
	}

	wait := time.Duration(r.cfg.StartupWaitSeconds) * time.Second
	r.step(log, fmt.Sprintf("waiting %s before status check", wait))
	r.sleep(wait)

	status, err := r.orch.Status(ctx)
	if err != nil {
		log.Error().Err(err).Msg("status failed")
		return fmt.Errorf("checking status: %w", err)
	}
	fmt.Fprint(r.out, status)

	log.Info().Msg("deploy finished")
	return nil
}

// Reload delivers SIGHUP to the running service so it re-reads the user
// registry, and reports the orchestrator's real outcome.
func (r *Runner) Reload(ctx context.Context) error {
	if err := r.orch.Signal(ctx, r.cfg.Service, "SIGHUP"); err != nil {
		return fmt.Errorf("signalling %s: %w", r.cfg.Service, err)
	}
	return nil
}

// AdvisoryReload returns the manual instructions printed by
// 'botops reload --print' for hosts where signalling is unavailable.
func (r *Runner) AdvisoryReload() string {
	return fmt.Sprintf(
		"To apply registry changes, either:\n"+
			"  - send /reload_users to the bot from an admin account, or\n"+
			"  - restart the container: %s compose -f %s restart %s\n",
		r.cfg.DockerBin, r.cfg.ComposeFile, r.cfg.Service)
}

func (r *Runner) step(log zerolog.Logger, msg string) {
	log.Info().Msg(msg)
	fmt.Fprintf(r.out, "%s %s\n", style.Arrow(), msg)
}

func (r *Runner) openLog() (zerolog.Logger, func(), error) {
	path := filepath.Join(r.cfg.LogDir, deployLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening deploy log: %w", err)
	}
	log := zerolog.New(f).With().Timestamp().Logger()
	return log, func() { f.Close() }, nil
}
