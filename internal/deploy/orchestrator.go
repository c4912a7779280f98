package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/avolkov/botops/internal/config"
)

// Orchestrator is the external container-orchestration tool. The deploy
// runner adds no logic beyond sequencing; every verb is delegated here.
type Orchestrator interface {
	// Down stops and removes a previously running instance.
	Down(ctx context.Context) error

	// Build builds a fresh service image.
	Build(ctx context.Context) error

	// Up starts the service detached.
	Up(ctx context.Context) error

	// Status reports the current service state.
	Status(ctx context.Context) (string, error)

	// Signal delivers a signal to the running service container.
	Signal(ctx context.Context, service, signal string) error
}

// Compose shells out to the compose CLI: the engine's compose plugin
// when available, otherwise a standalone docker-compose binary.
type Compose struct {
	prefix []string
	file   string
}

// NewCompose builds a Compose orchestrator for cfg. Preflight has
// already verified one of the two CLI forms exists.
func NewCompose(cfg *config.Config) *Compose {
	prefix := []string{cfg.DockerBin, "compose"}
	if err := exec.Command(cfg.DockerBin, "compose", "version").Run(); err != nil {
		if _, lookErr := exec.LookPath("docker-compose"); lookErr == nil {
			prefix = []string{"docker-compose"}
		}
	}
	return &Compose{prefix: prefix, file: cfg.ComposeFile}
}

func (c *Compose) command(ctx context.Context, verb ...string) *exec.Cmd {
	args := append([]string{}, c.prefix[1:]...)
	args = append(args, "-f", c.file)
	args = append(args, verb...)
	return exec.CommandContext(ctx, c.prefix[0], args...)
}

func (c *Compose) run(ctx context.Context, verb ...string) error {
	cmd := c.command(ctx, verb...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return fmt.Errorf("%s: %w: %s", verb[0], err, msg)
		}
		return fmt.Errorf("%s: %w", verb[0], err)
	}
	return nil
}

func (c *Compose) Down(ctx context.Context) error {
	return c.run(ctx, "down")
}

func (c *Compose) Build(ctx context.Context) error {
	return c.run(ctx, "build")
}

func (c *Compose) Up(ctx context.Context) error {
	return c.run(ctx, "up", "-d")
}

func (c *Compose) Status(ctx context.Context) (string, error) {
	out, err := c.command(ctx, "ps").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ps: %w", err)
	}
	return string(out), nil
}

func (c *Compose) Signal(ctx context.Context, service, signal string) error {
	return c.run(ctx, "kill", "-s", signal, service)
}
