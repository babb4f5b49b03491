package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/usb-relay/internal/config"
	domain "github.com/oshokin/usb-relay/internal/domain/relay"
	"github.com/oshokin/usb-relay/internal/logger"
	"github.com/oshokin/usb-relay/internal/service/parser"
	"github.com/oshokin/usb-relay/internal/service/relay"
	"github.com/oshokin/usb-relay/internal/version"
)

var (
	// configPath stores the path to the settings file.
	configPath string
	// driverName overrides the configured hardware driver.
	driverName string
	// storeBackend overrides the configured alias store backend.
	storeBackend string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd parses the relay command itself; only flags before the command word are cobra's.
	rootCmd = &cobra.Command{
		Use:   "relay [flags] command [arguments]",
		Short: "Switch and query USB relay modules.",
		Long: `Switch and query multi-channel relay modules addressed by serial number or alias.

Commands are case-insensitive: ENUMerate|List, Query, SET, ALIAS and Help|?.
Run without arguments to see the full grammar.`,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE:              run,
	}

	// helpCmd routes "help" through the relay grammar so extra arguments are a syntax error.
	helpCmd = &cobra.Command{
		Use:                "help",
		Hidden:             true,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, append([]string{"help"}, args...))
		},
	}
)

// run executes one relay command.
func run(cmd *cobra.Command, args []string) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	relayOptions := &relay.Options{
		ConfigPath:   configPath,
		Driver:       driverName,
		StoreBackend: storeBackend,
		LogLevel:     logLevel,
		Program:      cmd.Root().Name(),
		Args:         args,
		Stdout:       cmd.OutOrStdout(),
	}

	return relay.Run(ctx, relayOptions)
}

// Execute runs the relay CLI, printing a one-line diagnostic and exiting with
// the relay exit code on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	rootCmd.SetArgs(helpFlagAsCommand(os.Args[1:]))

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), domain.Diagnostic(err))
		os.Exit(domain.ExitCode(err))
	}
}

// helpFlagAsCommand rewrites a leading "-?", "-H" or "-help" into the help command,
// which flag parsing would otherwise reject.
func helpFlagAsCommand(args []string) []string {
	if len(args) == 0 || !strings.HasPrefix(args[0], "-") || !parser.IsHelpWord(args[0]) {
		return args
	}

	rewritten := make([]string, 0, len(args))
	rewritten = append(rewritten, "help")

	return append(rewritten, args[1:]...)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	// Stop at the command word so "alias -NAME" reaches the relay grammar.
	flags.SetInterspersed(false)

	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to settings file (.yaml or .toml)")
	flags.StringVar(&driverName, "driver", "", "hardware driver: hidraw, serial or sim")
	flags.StringVar(&storeBackend, "store", "", "alias store backend: file or bolt")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", domain.ErrSyntax, err)
	})

	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), relay.Usage(cmd.Root().Name()))
	})
}
