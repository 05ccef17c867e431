package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/voyage"
	"github.com/aretw0/voyage/internal/config"
	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/observability"
	"github.com/aretw0/voyage/pkg/runner"
	"golang.org/x/term"
)

// Setup holds the flags shared by every command.
type Setup struct {
	ConfigPath string
	// Store overrides the configured store driver when set.
	Store string
	Debug bool
}

// NewPlanner loads configuration and builds a planner with the CLI conventions:
// --debug switches to debug logging with logging hooks, and the input size limit
// follows the configuration.
func NewPlanner(s Setup) (*voyage.Planner, *slog.Logger, error) {
	cfg, err := config.Load(s.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if s.Store != "" {
		cfg.Store.Driver = s.Store
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	if cfg.MaxInputSize > 0 {
		runner.DefaultMaxInputSize = cfg.MaxInputSize
	}

	logger, err := createLogger(cfg.LogLevel, s.Debug)
	if err != nil {
		return nil, nil, err
	}

	opts := []voyage.Option{voyage.WithConfig(cfg), voyage.WithLogger(logger)}
	if s.Debug {
		opts = append(opts, voyage.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}
	planner, err := voyage.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing planner: %w", err)
	}
	return planner, logger, nil
}

// createLogger configures the application logger.
// Logs go to stderr so they never mix with the conversation on stdout.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func logSessionStatus(w io.Writer, logger *slog.Logger, state *domain.SessionState, created, quiet bool) {
	if created {
		logger.Info("session created", "session_id", state.SessionID)
		if !quiet {
			printSystemMessage(w, "Session '%s' active.", state.SessionID)
		}
		return
	}
	logger.Info("session resumed", "session_id", state.SessionID, "stage", state.Stage)
	if !quiet {
		printSystemMessage(w, "Resuming session '%s' at '%s'...", state.SessionID, state.Stage)
	}
}

func logCompletion(w io.Writer, state *domain.SessionState, err error, quiet bool) {
	if quiet || state == nil {
		return
	}
	switch {
	case isInterrupted(err):
		fmt.Fprintln(w)
		printSystemMessage(w, "Interrupted at '%s'. Resume with --session %s.", state.Stage, state.SessionID)
	case state.Terminated():
		printSystemMessage(w, "Session '%s' finished.", state.SessionID)
	case err == nil:
		printSystemMessage(w, "Paused at '%s'. Resume with --session %s.", state.Stage, state.SessionID)
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrInterrupted) || errors.Is(err, context.Canceled)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		// Exit 0 for interruptions.
		return nil
	}
	return err
}
