package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/usb-relay/internal/config"
	"github.com/oshokin/usb-relay/internal/logger"
	"github.com/oshokin/usb-relay/internal/service/alias"
	"github.com/oshokin/usb-relay/internal/service/common"
	"github.com/oshokin/usb-relay/internal/service/executor"
	"github.com/oshokin/usb-relay/internal/service/parser"
)

// DefaultProgram is the binary name used in the usage text.
const DefaultProgram = "relay"

// Options controls one relay invocation.
type Options struct {
	// ConfigPath specifies the path to the settings file.
	ConfigPath string
	// Driver overrides the configured driver when not empty.
	Driver string
	// StoreBackend overrides the configured alias store backend when not empty.
	StoreBackend string
	// LogLevel overrides the configured log level when not empty.
	LogLevel string
	// Program is the name shown in the usage text.
	Program string
	// Args are the command word and its arguments.
	Args []string
	// Stdout receives command output; os.Stdout when nil.
	Stdout io.Writer
}

// Run executes the command described by opts.Args. The returned error maps to an
// exit code through relay.ExitCode.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath,
		config.WithDriver(opts.Driver),
		config.WithStoreBackend(opts.StoreBackend),
		config.WithLogLevel(opts.LogLevel),
	)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	closeLog, ok := logger.Configure(&cfg.Log)
	defer func() {
		if closeErr := closeLog(); closeErr != nil {
			logger.DebugKV(ctx, "Unable to close the log file", "error", closeErr)
		}
	}()

	// The named logger must be derived from the configured one to reach the file sink.
	ctx = logger.WithName(ctx, "relay")

	if !ok {
		logger.WarnKV(ctx, "Unknown log level, keeping the default", "level", cfg.Log.Level)
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	program := opts.Program
	if program == "" {
		program = DefaultProgram
	}

	s := newSession(cfg)
	defer s.close(ctx)

	command, err := parser.New(s, s.modules).Parse(ctx, opts.Args)
	if err != nil {
		// Alias edits to the right of a bad token are still applied.
		if edits, isAlias := command.(parser.Alias); isAlias && len(edits.Edits) > 0 {
			if applyErr := applyAliases(ctx, s, edits); applyErr != nil {
				return applyErr
			}
		}

		return err
	}

	switch command := command.(type) {
	case parser.Help:
		_, err = fmt.Fprint(out, Usage(program))
	case parser.Enumerate:
		err = enumerate(ctx, s, out)
	case parser.Set:
		err = setChannels(ctx, s, command)
	case parser.Query:
		err = query(ctx, s, out, command)
	case parser.Alias:
		err = applyAliases(ctx, s, command)
		if err == nil {
			err = listAliases(ctx, s, out)
		}
	}

	return err
}

func enumerate(ctx context.Context, s *session, out io.Writer) error {
	catalog, err := s.modules(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, catalog.String())

	return err
}

func setChannels(ctx context.Context, s *session, command parser.Set) error {
	d, err := s.hardware(ctx)
	if err != nil {
		return err
	}

	return executor.New(d).Set(ctx, command.Plan)
}

func query(ctx context.Context, s *session, out io.Writer, command parser.Query) error {
	d, err := s.hardware(ctx)
	if err != nil {
		return err
	}

	result, err := executor.New(d).Query(ctx, command.Catalog, command.Queries)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, result)

	return err
}

// applyAliases applies the edits in order, stopping at the first failure.
func applyAliases(ctx context.Context, s *session, command parser.Alias) error {
	if len(command.Edits) == 0 {
		return nil
	}

	aliases, err := s.aliasService()
	if err != nil {
		return err
	}

	warnAboutPeers(ctx)

	if actor, err := common.DetectActor(); err == nil {
		ctx = logger.WithKV(ctx, "actor", actor.String())
	}

	return aliases.Apply(ctx, command.Edits)
}

// listAliases prints one NAME=SN line per alias.
func listAliases(ctx context.Context, s *session, out io.Writer) error {
	aliases, err := s.aliasService()
	if err != nil {
		return err
	}

	list, err := aliases.List(ctx)
	if errors.Is(err, alias.ErrNoAliases) {
		_, err = fmt.Fprintln(out, "No aliases defined")
		return err
	}

	if err != nil {
		return err
	}

	for _, a := range list {
		if _, err = fmt.Fprintln(out, a.String()); err != nil {
			return err
		}
	}

	return nil
}

// warnAboutPeers logs other running relay processes, whose alias edits may race with ours.
func warnAboutPeers(ctx context.Context) {
	peers, err := common.DetectPeers(common.ExecutableName())
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if len(peers) > 0 {
		logger.WarnKV(ctx, "Other relay processes are running, concurrent alias edits may be lost", "pids", peers)
	}
}
