package main

import (
	"fmt"
	"io"
	"os"

	"pogrn/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if cfg.TrustedProjectConfigPath != "" {
		fmt.Fprintf(stderr, "warning: using trusted project config from %s\n", cfg.TrustedProjectConfigPath)
	}

	cmd := newRootCmd(cfg)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		for _, line := range formatCLIError(err) {
			fmt.Fprintln(stderr, line)
		}
		return 1
	}
	return 0
}
