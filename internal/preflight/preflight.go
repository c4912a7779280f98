// Package preflight validates the deployment environment before botops
// touches the container orchestrator.
package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/avolkov/botops/internal/config"
)

var (
	// ErrMissingDependency indicates a required external tool is absent.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrMissingConfig indicates a required file is absent.
	ErrMissingConfig = errors.New("missing configuration")
)

// Status describes the outcome of a single check.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Result is the outcome of one preflight check.
type Result struct {
	// Name identifies the check.
	Name string

	// Status is ok or error.
	Status Status

	// Message is a one-line human summary.
	Message string

	// FixHint suggests how to resolve a failure.
	FixHint string

	// Err carries the failure for errors.Is matching; nil when ok.
	Err error
}

// Context supplies the environment a check inspects. The lookup and
// command hooks exist so tests can fake tool availability.
type Context struct {
	Cfg *config.Config

	// LookPath resolves a binary on PATH.
	LookPath func(name string) (string, error)

	// RunCommand runs a probe command and reports whether it succeeded.
	RunCommand func(name string, args ...string) error
}

// NewContext builds a Context backed by the real host environment.
func NewContext(cfg *config.Config) *Context {
	return &Context{
		Cfg:      cfg,
		LookPath: exec.LookPath,
		RunCommand: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Check is a single validation step.
type Check interface {
	Name() string
	Run(ctx *Context) Result
}

// Checks returns all preflight checks in their fail-fast order:
// tools first, then files.
func Checks() []Check {
	return []Check{
		&EngineCheck{},
		&ComposeCheck{},
		&SecretsCheck{},
		&RegistryCheck{},
	}
}

// First runs checks in order and returns the first failure, or nil when
// the environment is ready. Nothing is aggregated - the operator fixes
// one problem at a time.
func First(ctx *Context) error {
	for _, c := range Checks() {
		if res := c.Run(ctx); res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// All runs every check and returns all results, for the doctor command.
func All(ctx *Context) []Result {
	results := make([]Result, 0, len(Checks()))
	for _, c := range Checks() {
		results = append(results, c.Run(ctx))
	}
	return results
}

// EngineCheck verifies the container engine binary is on PATH.
type EngineCheck struct{}

func (c *EngineCheck) Name() string { return "container-engine" }

func (c *EngineCheck) Run(ctx *Context) Result {
	bin := ctx.Cfg.DockerBin
	if _, err := ctx.LookPath(bin); err != nil {
		return Result{
			Name:    c.Name(),
			Status:  StatusError,
			Message: fmt.Sprintf("%s not found on PATH", bin),
			FixHint: "Install Docker or set docker_bin in botops.toml",
			Err:     fmt.Errorf("%w: %s", ErrMissingDependency, bin),
		}
	}
	return Result{Name: c.Name(), Status: StatusOK, Message: bin + " is available"}
}

// ComposeCheck verifies an orchestration CLI is usable: the compose
// plugin of the engine, or a standalone docker-compose binary.
type ComposeCheck struct{}

func (c *ComposeCheck) Name() string { return "compose-cli" }

func (c *ComposeCheck) Run(ctx *Context) Result {
	if err := ctx.RunCommand(ctx.Cfg.DockerBin, "compose", "version"); err == nil {
		return Result{Name: c.Name(), Status: StatusOK, Message: "compose plugin is available"}
	}
	if _, err := ctx.LookPath("docker-compose"); err == nil {
		return Result{Name: c.Name(), Status: StatusOK, Message: "docker-compose is available"}
	}
	return Result{
		Name:    c.Name(),
		Status:  StatusError,
		Message: "no compose CLI found",
		FixHint: "Install the compose plugin or a standalone docker-compose",
		Err:     fmt.Errorf("%w: compose CLI", ErrMissingDependency),
	}
}

// SecretsCheck verifies the secrets file exists. Its content is the
// bot's concern, not ours, so only existence is checked.
type SecretsCheck struct{}

func (c *SecretsCheck) Name() string { return "secrets-file" }

func (c *SecretsCheck) Run(ctx *Context) Result {
	return fileCheck(c.Name(), ctx.Cfg.SecretsPath,
		"Create it with the bot token before deploying")
}

// RegistryCheck verifies the user registry exists so the container has
// an access list to mount.
type RegistryCheck struct{}

func (c *RegistryCheck) Name() string { return "user-registry" }

func (c *RegistryCheck) Run(ctx *Context) Result {
	return fileCheck(c.Name(), ctx.Cfg.RegistryPath,
		"Run 'botops list' or 'botops add-admin <id>' to create it")
}

func fileCheck(name, path, hint string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{
			Name:    name,
			Status:  StatusError,
			Message: path + " does not exist",
			FixHint: hint,
			Err:     fmt.Errorf("%w: %s", ErrMissingConfig, path),
		}
	}
	return Result{Name: name, Status: StatusOK, Message: path + " exists"}
}
