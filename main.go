package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"dialogcast/core"
	"dialogcast/factories"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

// Exit codes for different failure modes
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1 // a provider, synthesis or assembly failure
	ExitConfigError  = 2 // bad settings, flags or missing credentials
)

// app carries what the root command sets up for its subcommands.
type app struct {
	configPath string
	debug      bool
	logDir     string

	stdout   io.Writer
	stderr   io.Writer
	settings *factories.Settings
	logger   *core.Logger
	runLog   *core.RunLogWriter
}

func main() {
	if err := godotenv.Load(); err != nil {
		core.GetLogger().With(map[string]any{"error": err}).Debug("No .env file found or failed to load")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr *core.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitRuntimeError
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialogcast",
		Short: "Two-agent LLM podcast generator",
		Long: `dialogcast runs a scripted conversation between two language models
backed by different providers, saves the transcript, and narrates a saved
transcript into a single audio file with one voice per speaker.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Settings file (default dialogcast.yaml when present)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.logDir, "log-dir", "", "Write a JSONL run log into this directory")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return core.NewConfigError("flags", "%v", err)
	})

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	cmd.AddCommand(newConverseCommand(a))
	cmd.AddCommand(newNarrateCommand(a))
	return cmd
}

// setup configures logging and loads settings before any subcommand runs.
func (a *app) setup(cmd *cobra.Command) error {
	level := core.LevelInfo
	if a.debug {
		level = core.LevelDebug
	}
	a.logger = core.NewConsoleLogger(a.stderr, level)

	if a.logDir != "" {
		runID := uuid.NewString()
		w, err := core.NewRunLogWriter(a.logDir, runID, cmd.Name())
		if err != nil {
			return core.NewConfigError("log-dir", "%v", err)
		}
		a.runLog = w
		a.logger = core.NewRunLogger(a.logger, w).With(map[string]any{"run_id": runID})
	}
	core.SetLogger(a.logger)
	cmd.SetContext(core.ContextWithRunLogger(cmd.Context(), a.logger))

	settings, err := factories.LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger.Debug("settings loaded", "config", a.configPath)
	return nil
}

func (a *app) close() {
	if a.runLog != nil {
		if err := a.runLog.Close(); err != nil {
			fmt.Fprintln(a.stderr, "closing run log:", err)
		}
	}
}

// loggerFor returns the run logger stored on the command context.
func loggerFor(cmd *cobra.Command) *core.Logger {
	if l := core.RunLoggerFromContext(cmd.Context()); l != nil {
		return l
	}
	return core.GetLogger()
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return core.NewConfigError("args", "%v", err)
		}
		return nil
	}
}
