package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/avolkov/botops/internal/config"
)

// fakeContext simulates a host where every tool and file exists, then
// lets individual tests knock pieces out.
func fakeContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.SecretsPath = filepath.Join(dir, ".env")
	cfg.RegistryPath = filepath.Join(dir, "users.cfg")
	for _, p := range []string{cfg.SecretsPath, cfg.RegistryPath} {
		if err := os.WriteFile(p, []byte("x\n"), 0644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}

	return &Context{
		Cfg:        cfg,
		LookPath:   func(name string) (string, error) { return "/usr/bin/" + name, nil },
		RunCommand: func(name string, args ...string) error { return nil },
	}
}

func TestFirstAllOK(t *testing.T) {
	ctx := fakeContext(t)

	if err := First(ctx); err != nil {
		t.Fatalf("First: %v", err)
	}
}

func TestFirstMissingEngine(t *testing.T) {
	ctx := fakeContext(t)
	ctx.LookPath = func(name string) (string, error) {
		return "", fmt.Errorf("%s: not found", name)
	}

	err := First(ctx)
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got: %v", err)
	}
}

func TestFirstComposeFallsBackToStandalone(t *testing.T) {
	ctx := fakeContext(t)
	// Plugin probe fails, but docker-compose is on PATH.
	ctx.RunCommand = func(name string, args ...string) error {
		return errors.New("unknown command: compose")
	}

	if err := First(ctx); err != nil {
		t.Fatalf("First: %v", err)
	}
}

func TestFirstNoComposeAtAll(t *testing.T) {
	ctx := fakeContext(t)
	ctx.RunCommand = func(name string, args ...string) error {
		return errors.New("unknown command: compose")
	}
	ctx.LookPath = func(name string) (string, error) {
		if name == "docker-compose" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}

	if err := First(ctx); !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got: %v", err)
	}
}

func TestFirstMissingSecrets(t *testing.T) {
	ctx := fakeContext(t)
	os.Remove(ctx.Cfg.SecretsPath)

	err := First(ctx)
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got: %v", err)
	}
}

func TestFirstStopsAtFirstFailure(t *testing.T) {
	ctx := fakeContext(t)
	// Both the engine and the secrets file are broken; the engine comes
	// first in check order and must win.
	ctx.LookPath = func(name string) (string, error) { return "", errors.New("nope") }
	os.Remove(ctx.Cfg.SecretsPath)

	err := First(ctx)
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected the dependency failure first, got: %v", err)
	}
}

func TestAllReportsEveryCheck(t *testing.T) {
	ctx := fakeContext(t)
	os.Remove(ctx.Cfg.RegistryPath)

	results := All(ctx)
	if len(results) != len(Checks()) {
		t.Fatalf("results = %d, want %d", len(results), len(Checks()))
	}

	var failed []string
	for _, r := range results {
		if r.Status == StatusError {
			failed = append(failed, r.Name)
			if r.FixHint == "" {
				t.Errorf("check %s failed without a fix hint", r.Name)
			}
		}
	}
	if len(failed) != 1 || failed[0] != "user-registry" {
		t.Errorf("failed checks = %v, want [user-registry]", failed)
	}
}
