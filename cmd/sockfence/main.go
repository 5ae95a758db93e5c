// Package main implements the sockfence CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Use-Tusk/sockfence/internal/sandbox"
)

// Build-time variables (set via -ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var (
	debug        bool
	showVersion  bool
	showFeatures bool
)

// Exit codes. Setup and usage failures share 1; 127 is reserved for "the
// filter is active but the target could not be launched", matching shell
// command-not-found conventions.
const (
	exitFailure      = 1
	exitLaunchFailed = 127
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sockfence [flags] -- <command> [args...]",
		Short: "Run a command with local-domain socket creation disabled",
		Long: `sockfence launches a command under a seccomp filter that denies creation
of local-domain sockets: socket(2) and socketpair(2) with AF_UNIX fail
with EACCES inside the launched program. Every other syscall, including
internet-domain sockets, is unaffected.

The filter and a no-new-privileges lock are installed before the command
starts and cannot be removed for the lifetime of the process, including
across further exec calls. There is no configuration; the policy is fixed
at build time.

Examples:
  sockfence curl https://example.com    # network sockets still work
  sockfence -- ssh -a user@host         # agent/control sockets blocked
  sockfence --features                  # show kernel support and exit`,
		RunE:          runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
	}

	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().BoolVar(&showFeatures, "features", false, "Show kernel seccomp support and exit")

	// Flag parsing stops at the first positional argument so that the
	// target's own flags are forwarded to it verbatim.
	rootCmd.Flags().SetInterspersed(false)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var launchErr *sandbox.LaunchError
		if errors.As(err, &launchErr) {
			os.Exit(exitLaunchFailed)
		}
		os.Exit(exitFailure)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("sockfence - run a command with AF_UNIX socket creation disabled\n")
		fmt.Printf("  Version: %s\n", version)
		fmt.Printf("  Built:   %s\n", buildTime)
		fmt.Printf("  Commit:  %s\n", gitCommit)
		return nil
	}

	if showFeatures {
		fmt.Println(sandbox.DetectFeatures().Summary())
		return nil
	}

	// Rejected before any privilege or filter state is touched.
	if len(args) == 0 {
		_ = cmd.Usage()
		return fmt.Errorf("no command specified")
	}

	if debug {
		fmt.Fprintf(os.Stderr, "[sockfence] command: %v\n", args)
		if stripped := sandbox.StrippedEnvVars(os.Environ()); len(stripped) > 0 {
			fmt.Fprintf(os.Stderr, "[sockfence] stripping loader env vars: %v\n", stripped)
		}
	}

	// On success Run does not return; the process is args[0] now.
	return sandbox.Run(args, debug)
}
