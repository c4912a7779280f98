package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	if args == nil {
		// A nil slice would make cobra fall back to os.Args.
		args = []string{}
	}
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestUnknownSubcommandShowsUsage(t *testing.T) {
	out, err := executeRoot(t, "bogus")
	if err != nil {
		t.Fatalf("unknown subcommand must not be an error, got: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage text, got:\n%s", out)
	}
}

func TestNoSubcommandShowsUsage(t *testing.T) {
	out, err := executeRoot(t)
	if err != nil {
		t.Fatalf("bare invocation must not be an error, got: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected usage text, got:\n%s", out)
	}
}
