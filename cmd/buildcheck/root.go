package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/deixis/buildcheck"
	"github.com/deixis/buildcheck/internal/config"
	"github.com/deixis/buildcheck/internal/report"
	"github.com/deixis/buildcheck/internal/runner"
	"github.com/deixis/buildcheck/internal/workflow"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	clearCache bool
	configPath string
	strict     bool
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "buildcheck [flags] [command ...]",
		Short: "Run build commands and summarise their warnings and errors",
		Long: `Run each build command in order, print its info, warning, error and debug
lines in color, then print a table of which commands passed.

A command passes when its output contains no "warning:" and no "error:"
lines; the exit code is shown but does not decide the verdict.

Each argument is one command. Quote compound commands so that both steps
reach buildcheck as a single argument. Without arguments, the commands
from .buildcheck are used, or a built-in list of bazel targets.

Examples:
  buildcheck
  buildcheck --clear-cache
  buildcheck "bazel build //docs:docs" "bazel build //docs:docs && bazel run //docs:incremental"
  buildcheck --strict "bazel build //..."`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().BoolVarP(&opts.clearCache, "clear-cache", "c", false, "Clear the build cache before every command")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to the .buildcheck file (default: discovered from the workspace root)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit 1 when any command fails or reports warnings or errors")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(stdout, buildcheck.Version)
		},
	}
}

func runRoot(ctx context.Context, opts *rootOptions, args []string, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}

	var loaded *config.LoadResult
	if opts.configPath != "" {
		loaded, err = config.LoadFile(opts.configPath, workspace)
	} else {
		loaded, err = config.Load(workspace)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config
	if opts.clearCache {
		cfg.ClearCache = true
	}

	commands := args
	if len(commands) == 0 {
		commands = cfg.CommandList()
	}

	logger.WithFields(log.Fields{
		"workspace":   loaded.RepoRoot,
		"dir":         workspace,
		"commands":    len(commands),
		"clear_cache": cfg.ClearCache,
	}).Debugf("buildcheck %s", buildcheck.Version)

	printer := report.NewPrinter(stdout, cfg.Width())
	eng := &workflow.Engine{
		Config: cfg,
		Runner: &runner.Runner{
			Workspace: loaded.RepoRoot,
			Timeout:   cfg.Timeout(),
			MaxOutput: cfg.MaxOutputBytes(),
			Log:       logger,
		},
		Printer:   printer,
		Workspace: loaded.RepoRoot,
		Dir:       workspace,
		Log:       logger,
	}

	results, runErr := eng.Run(ctx, commands)
	if runErr != nil && len(results) == 0 {
		return runErr
	}

	printer.Table(results)
	summary := report.Summarize(results)
	printer.Summary(summary)

	if runErr != nil {
		return runErr
	}
	if opts.strict && summary.Failing > 0 {
		return fmt.Errorf("%d of %d commands failed", summary.Failing, summary.Total)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
